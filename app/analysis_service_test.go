package app

import (
	"context"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domain "statcore/domain/stats"
	"statcore/internal"
	"statcore/internal/config"
	"statcore/internal/errors"
)

type MockSampleReader struct {
	mock.Mock
}

func (m *MockSampleReader) ReadColumns(ctx context.Context, path string, columns ...string) (map[string][]float64, error) {
	args := m.Called(ctx, path, columns)
	cols, _ := args.Get(0).(map[string][]float64)
	return cols, args.Error(1)
}

func newService(t *testing.T, mutate func(*config.Config), reader *MockSampleReader) *AnalysisService {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	logger := internal.NewLoggerTo(io.Discard, internal.LogLevelTrace)
	if reader == nil {
		return NewAnalysisService(cfg, logger, nil)
	}
	return NewAnalysisService(cfg, logger, reader)
}

var (
	groupA = []float64{2, 1, 3, 4}
	groupB = []float64{6, 5, 7, 9}
)

func TestServiceAppliesConfiguredDefaults(t *testing.T) {
	svc := newService(t, func(c *config.Config) {
		c.Analysis.Alpha = 0.01
		c.Analysis.TwoSampleMode = "pooled"
	}, nil)

	r, err := svc.TwoSample(groupA, groupB, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 0.01, r.Alpha)
	assert.True(t, r.IsSignificant)
	detail, ok := r.TwoSample()
	require.True(t, ok)
	assert.Equal(t, domain.ModePooled, detail.Mode)

	r, err = svc.TwoSample(groupA, groupB, 0.05, "welch")
	require.NoError(t, err)
	assert.Equal(t, 0.05, r.Alpha)
	assert.Equal(t, 5.0, *r.DegreesOfFreedom)
}

func TestServiceAutoMode(t *testing.T) {
	svc := newService(t, nil, nil)

	r, err := svc.TwoSample([]float64{1, 2, 3, 4, 5}, []float64{10, 20, 30, 40, 50}, 0.05, "auto")
	require.NoError(t, err)
	detail, _ := r.TwoSample()
	assert.Equal(t, domain.ModeWelch, detail.Mode)

	_, err = svc.TwoSample(groupA, groupB, 0.05, "student")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestServiceSingleOperations(t *testing.T) {
	svc := newService(t, nil, nil)

	d, err := svc.Describe([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 0)
	require.NoError(t, err)
	assert.Equal(t, 5.0, d.Mean)
	assert.Equal(t, 0.95, d.ConfidenceLevel)

	one, err := svc.OneSample([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, one.Statistic)

	paired, err := svc.Paired(groupA, groupB, 0)
	require.NoError(t, err)
	assert.InDelta(t, -17.0, paired.Statistic, 1e-10)

	corr, err := svc.Correlate([]float64{1, 2, 3, 4}, []float64{2, 4, 6, 8}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, corr.Correlation)

	c, err := svc.Correct(0.01, "bonferroni", 5, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, c.AdjustedPValue, 1e-15)

	fam, err := svc.CorrectFamily([]float64{0.01, 0.04}, "holm", 0)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.02, 0.04}, []float64{fam[0].AdjustedPValue, fam[1].AdjustedPValue}, 1e-15)

	_, err = svc.Correct(0.01, "sidak", 5, 0)
	assert.Error(t, err)
}

func TestLoadColumnsDelegatesToReader(t *testing.T) {
	reader := &MockSampleReader{}
	ctx := context.Background()
	reader.On("ReadColumns", ctx, "data.csv", []string{"x"}).
		Return(map[string][]float64{"x": {1, 2, math.NaN()}}, nil).Once()
	reader.On("ReadColumns", ctx, "missing.csv", []string{"x"}).
		Return(nil, errors.InvalidInput("data file not found: missing.csv")).Once()

	svc := newService(t, nil, reader)

	cols, err := svc.LoadColumns(ctx, "data.csv", "x")
	require.NoError(t, err)
	assert.Len(t, cols["x"], 3)

	_, err = svc.LoadColumns(ctx, "missing.csv", "x")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Contains(t, err.Error(), "reading missing.csv")

	reader.AssertExpectations(t)

	_, err = newService(t, nil, nil).LoadColumns(ctx, "data.csv", "x")
	assert.Equal(t, errors.CodeInternalError, errors.GetCode(err))
}

func TestRunBatchCorrectsSuccessfulItems(t *testing.T) {
	svc := newService(t, func(c *config.Config) { c.Batch.MaxConcurrency = 2 }, nil)

	reqs := []Request{
		{Label: "pooled", Kind: RequestTwoSample, Sample: groupA, Other: groupB, Mode: "pooled"},
		{Label: "constant", Kind: RequestOneSample, Sample: []float64{3, 3, 3}},
		{Label: "paired", Kind: RequestPaired, Sample: groupA, Other: groupB},
		{Label: "line", Kind: RequestPearson, Sample: []float64{1, 2, 3, 4, 5}, Other: []float64{2, 4, 5, 4, 5}},
		{Label: "bogus", Kind: RequestKind("anova")},
	}

	batch, err := svc.RunBatch(context.Background(), reqs, "bonferroni", 0.05)
	require.NoError(t, err)
	require.Len(t, batch.Items, 5)
	assert.False(t, batch.BatchID.String() == "")
	assert.Equal(t, 3, batch.Succeeded)
	assert.Equal(t, 2, batch.Failed)
	assert.Equal(t, domain.CorrectionBonferroni, batch.Correction)

	for i, item := range batch.Items {
		assert.Equal(t, reqs[i].Label, item.Label)
		assert.NotEmpty(t, item.ID)
	}

	pooled := batch.Items[0]
	require.NotNil(t, pooled.Test)
	require.NotNil(t, pooled.Test.Correction)
	assert.Equal(t, 3, pooled.Test.Correction.NumberOfComparisons)
	assert.InDelta(t, 3*0.0073640592242113214, pooled.Test.Correction.AdjustedPValue, 1e-10)
	assert.True(t, pooled.Test.Correction.IsSignificantAfterCorrection)

	constant := batch.Items[1]
	assert.False(t, constant.Succeeded())
	assert.Equal(t, errors.CodeDegenerateData, constant.ErrorCode)
	assert.Nil(t, constant.Test)

	line := batch.Items[3]
	require.NotNil(t, line.Correlation)
	require.NotNil(t, line.Correlation.Correction)
	assert.Equal(t, math.Min(1, 3*line.Correlation.PValue), line.Correlation.Correction.AdjustedPValue)

	assert.Equal(t, errors.CodeInvalidInput, batch.Items[4].ErrorCode)
}

func TestRunBatchUsesConfiguredCorrection(t *testing.T) {
	svc := newService(t, func(c *config.Config) { c.Analysis.Correction = "fdr" }, nil)

	batch, err := svc.RunBatch(context.Background(), []Request{
		{Kind: RequestTwoSample, Sample: groupA, Other: groupB},
		{Kind: RequestPaired, Sample: groupA, Other: groupB},
	}, "", 0)
	require.NoError(t, err)
	assert.Equal(t, domain.CorrectionFDR, batch.Correction)
	assert.Equal(t, 0.05, batch.Alpha)
	for _, item := range batch.Items {
		require.NotNil(t, item.Test.Correction)
		assert.Equal(t, domain.CorrectionFDR, item.Test.Correction.Method)
	}
}

func TestRunBatchStopsOnCancel(t *testing.T) {
	svc := newService(t, func(c *config.Config) { c.Batch.MaxConcurrency = 1 }, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.RunBatch(ctx, []Request{
		{Kind: RequestPaired, Sample: groupA, Other: groupB},
		{Kind: RequestPaired, Sample: groupA, Other: groupB},
	}, "none", 0.05)
	require.Error(t, err)
	assert.Equal(t, errors.CodeCanceled, errors.GetCode(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunBatchRejectsBadArguments(t *testing.T) {
	svc := newService(t, nil, nil)

	_, err := svc.RunBatch(context.Background(), nil, "sidak", 0.05)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = svc.RunBatch(context.Background(), nil, "none", 1.5)
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)

	batch, err := svc.RunBatch(context.Background(), nil, "holm", 0.05)
	require.NoError(t, err)
	assert.Empty(t, batch.Items)
}

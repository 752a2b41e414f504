package ttest

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
	"pgregory.net/rapid"

	domain "statcore/domain/stats"
	"statcore/internal/errors"
)

var (
	reference = []float64{2, 4, 4, 4, 5, 5, 7, 9}
	smallA    = []float64{2, 1, 3, 4}
	smallB    = []float64{6, 5, 7, 9}
)

func gonumTwoSided(t, df float64) float64 {
	return 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Survival(math.Abs(t))
}

func assumption(t *testing.T, r domain.TestResult, name string) domain.AssumptionCheck {
	t.Helper()
	for _, a := range r.Assumptions {
		if a.Name == name {
			return a
		}
	}
	require.Failf(t, "missing assumption", "%s not attached", name)
	return domain.AssumptionCheck{}
}

func TestOneSampleAtSampleMean(t *testing.T) {
	r, err := OneSample(reference, 5, 0.05)
	require.NoError(t, err)

	assert.Equal(t, domain.KindOneSampleT, r.Kind)
	assert.Equal(t, 0.0, r.Statistic)
	assert.InDelta(t, 1.0, r.PValue, 1e-12)
	require.NotNil(t, r.DegreesOfFreedom)
	assert.Equal(t, 7.0, *r.DegreesOfFreedom)
	assert.False(t, r.IsSignificant)
	assert.Equal(t, 0.0, r.EffectSize.Value)
	assert.Equal(t, "negligible", r.EffectSize.Magnitude)

	detail, ok := r.OneSample()
	require.True(t, ok)
	assert.Equal(t, 8, detail.N)
	assert.InDelta(t, 2.138089935/math.Sqrt(8), detail.StandardError, 1e-9)
	assert.True(t, r.ConfidenceInterval.Contains(5))
	margin := 2.364624252 * detail.StandardError
	assert.InDelta(t, 5-margin, r.ConfidenceInterval.Lower(), 1e-8)
}

func TestOneSampleAgainstGonum(t *testing.T) {
	r, err := OneSample(reference, 3, 0.05)
	require.NoError(t, err)

	se := 2.138089935 / math.Sqrt(8)
	expectedT := 2 / se
	assert.InDelta(t, expectedT, r.Statistic, 1e-8)
	assert.InDelta(t, gonumTwoSided(expectedT, 7), r.PValue, 1e-10)
	assert.True(t, r.IsSignificant)
	assert.InDelta(t, 2/2.138089935, r.EffectSize.Value, 1e-8)
	assert.Equal(t, "large", r.EffectSize.Magnitude)
	assert.Contains(t, r.Interpretation, "statistically significant difference")
}

func TestOneSampleValidation(t *testing.T) {
	_, err := OneSample([]float64{1}, 0, 0.05)
	assert.ErrorIs(t, err, errors.ErrInsufficientData)

	_, err = OneSample([]float64{1, math.NaN()}, 0, 0.05)
	assert.ErrorIs(t, err, errors.ErrInsufficientData)

	_, err = OneSample(reference, math.Inf(1), 0.05)
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)

	_, err = OneSample(reference, 0, 0)
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)

	_, err = OneSample([]float64{3, 3, 3}, 0, 0.05)
	assert.ErrorIs(t, err, errors.ErrZeroVariance)
	assert.Equal(t, errors.CodeDegenerateData, errors.GetCode(err))
}

func TestTwoSamplePooledMatchesReference(t *testing.T) {
	r, err := TwoSample(smallA, smallB, 0.05, domain.ModePooled)
	require.NoError(t, err)

	assert.InDelta(t, -3.9703446152237674, r.Statistic, 1e-12)
	assert.InDelta(t, 0.0073640592242113214, r.PValue, 1e-10)
	assert.Equal(t, 6.0, *r.DegreesOfFreedom)
	assert.True(t, r.IsSignificant)

	detail, ok := r.TwoSample()
	require.True(t, ok)
	assert.Equal(t, domain.ModePooled, detail.Mode)
	assert.Equal(t, -4.25, detail.MeanDifference)
	assert.True(t, r.ConfidenceInterval.Contains(detail.MeanDifference))
	assert.Less(t, r.ConfidenceInterval.Upper(), 0.0)

	_, ok = r.Paired()
	assert.False(t, ok)
}

func TestTwoSampleWelchFloorsDegreesOfFreedom(t *testing.T) {
	r, err := TwoSample(smallA, smallB, 0.05, domain.ModeWelch)
	require.NoError(t, err)

	// unfloored Welch-Satterthwaite df is 5.5846
	assert.Equal(t, 5.0, *r.DegreesOfFreedom)
	assert.InDelta(t, -3.9703446152237674, r.Statistic, 1e-12)
	assert.InDelta(t, gonumTwoSided(r.Statistic, 5), r.PValue, 1e-10)
	assert.Greater(t, r.PValue, 0.0085128631313781695)
	assert.Equal(t, "Welch's t-test", r.TestName)
}

func TestTwoSampleKnownGroups(t *testing.T) {
	a := []float64{23, 25, 28, 30, 32}
	b := []float64{20, 22, 24, 26, 28}

	r, err := TwoSample(a, b, 0.05, domain.ModePooled)
	require.NoError(t, err)

	pooledSD := math.Sqrt(11.65)
	expectedT := 3.6 / (pooledSD * math.Sqrt(0.4))
	assert.InDelta(t, expectedT, r.Statistic, 1e-10)
	assert.InDelta(t, gonumTwoSided(expectedT, 8), r.PValue, 1e-10)
	assert.InDelta(t, 3.6/pooledSD, r.EffectSize.Value, 1e-10)
	assert.Equal(t, "large", r.EffectSize.Magnitude)
	assert.False(t, r.IsSignificant)
	assert.Len(t, r.Assumptions, 4)
	assert.True(t, assumption(t, r, domain.AssumptionEqualVariance).Met)
	assert.False(t, assumption(t, r, domain.AssumptionSampleSize).Met)
}

func TestTwoSampleEqualSizesAgreeAcrossModes(t *testing.T) {
	a := []float64{5.1, 4.9, 5.3, 5.0, 5.2, 4.8}
	b := []float64{5.6, 5.4, 5.8, 5.5, 5.7, 5.3}

	pooled, err := TwoSample(a, b, 0.05, domain.ModePooled)
	require.NoError(t, err)
	welch, err := TwoSample(a, b, 0.05, domain.ModeWelch)
	require.NoError(t, err)

	assert.InDelta(t, pooled.Statistic, welch.Statistic, 1e-12)
	assert.InDelta(t, pooled.PValue, welch.PValue, 1e-3)
	assert.Equal(t, pooled.EffectSize.Value, welch.EffectSize.Value)
}

func TestTwoSampleValidation(t *testing.T) {
	_, err := TwoSample([]float64{1}, smallB, 0.05, domain.ModeWelch)
	assert.ErrorIs(t, err, errors.ErrInsufficientData)
	assert.Contains(t, err.Error(), "first sample")

	_, err = TwoSample(smallA, []float64{1, math.Inf(-1)}, 0.05, domain.ModeWelch)
	assert.ErrorIs(t, err, errors.ErrInsufficientData)

	_, err = TwoSample([]float64{2, 2, 2}, []float64{5, 5}, 0.05, domain.ModePooled)
	assert.ErrorIs(t, err, errors.ErrZeroVariance)

	_, err = TwoSample(smallA, smallB, 0.05, domain.TwoSampleMode("student"))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestTwoSampleOneConstantGroup(t *testing.T) {
	r, err := TwoSample([]float64{3, 3, 3, 3}, []float64{1, 2, 3, 4}, 0.05, domain.ModeWelch)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, *r.DegreesOfFreedom, 1.0)
	assert.False(t, math.IsNaN(r.PValue))
}

func TestPairedMatchesReference(t *testing.T) {
	r, err := Paired(smallA, smallB, 0.05)
	require.NoError(t, err)

	assert.InDelta(t, -17.0, r.Statistic, 1e-10)
	assert.Equal(t, 3.0, *r.DegreesOfFreedom)
	assert.InDelta(t, 0.00044334353831207749, r.PValue, 1e-12)
	assert.Equal(t, "cohens_dz", r.EffectSize.Name)
	assert.InDelta(t, 8.5, r.EffectSize.Value, 1e-10)

	detail, ok := r.Paired()
	require.True(t, ok)
	assert.Equal(t, -4.25, detail.MeanDifference)
	assert.InDelta(t, 0.5, detail.StdDevDifference, 1e-12)
}

func TestPairedBeforeAfter(t *testing.T) {
	before := []float64{120, 125, 130, 135, 140}
	after := []float64{118, 124, 131, 133, 139}

	r, err := Paired(before, after, 0.05)
	require.NoError(t, err)

	expectedT := 1 / math.Sqrt(1.5/5)
	assert.InDelta(t, expectedT, r.Statistic, 1e-10)
	assert.InDelta(t, gonumTwoSided(expectedT, 4), r.PValue, 1e-10)
	assert.False(t, r.IsSignificant)
	assert.Contains(t, r.Interpretation, "no statistically significant difference")
}

func TestPairedValidation(t *testing.T) {
	_, err := Paired([]float64{1, 2, 3}, []float64{1, 2}, 0.05)
	assert.ErrorIs(t, err, errors.ErrLengthMismatch)

	_, err = Paired([]float64{1, 2, math.NaN()}, []float64{2, math.NaN(), 4}, 0.05)
	assert.ErrorIs(t, err, errors.ErrInsufficientData)

	_, err = Paired([]float64{2, 3, 4}, []float64{1, 2, 3}, 0.05)
	assert.ErrorIs(t, err, errors.ErrZeroVariance)
}

func TestLevene(t *testing.T) {
	w, p := Levene([]float64{1, 2, 3, 4, 5}, []float64{2, 3, 4, 5, 6})
	assert.InDelta(t, 0.0, w, 1e-12)
	assert.InDelta(t, 1.0, p, 1e-9)

	w, p = Levene([]float64{1, 2, 3, 4, 5}, []float64{10, 20, 30, 40, 50})
	assert.InDelta(t, 8*291.6/282.8, w, 1e-10)
	assert.InDelta(t, 1-distuv.F{D1: 1, D2: 8}.CDF(w), p, 1e-12)
	assert.Less(t, p, 0.05)
}

func TestRecommendTwoSampleMode(t *testing.T) {
	assert.Equal(t, domain.ModePooled, RecommendTwoSampleMode([]float64{1, 2, 3, 4, 5}, []float64{2, 3, 4, 5, 6}, 0.05))
	assert.Equal(t, domain.ModeWelch, RecommendTwoSampleMode([]float64{1, 2, 3, 4, 5}, []float64{10, 20, 30, 40, 50}, 0.05))
	assert.Equal(t, domain.ModeWelch, RecommendTwoSampleMode([]float64{1}, []float64{2, 3}, 0.05))
}

func TestAssumptionsOnSkewedSample(t *testing.T) {
	skewed := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 100}
	r, err := OneSample(skewed, 0, 0.05)
	require.NoError(t, err)

	normality := assumption(t, r, domain.AssumptionNormality)
	assert.False(t, normality.Met)
	assert.True(t, strings.Contains(normality.Description, "outside"))
	assert.True(t, assumption(t, r, domain.AssumptionIndependence).Met)
}

func TestMagnitude(t *testing.T) {
	tests := []struct {
		d    float64
		want string
	}{
		{0, "negligible"},
		{-0.19, "negligible"},
		{0.2, "small"},
		{-0.49, "small"},
		{0.5, "medium"},
		{0.8, "large"},
		{-3, "large"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Magnitude(tt.d), "d=%v", tt.d)
	}
}

func TestWelchDF(t *testing.T) {
	assert.Equal(t, 1.0, WelchDF(1e6, 1e-6, 2, 50))
	assert.Equal(t, 4.0, WelchDF(0, 0, 3, 3))
}

func TestTwoSampleSwapNegatesStatistic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		gen := rapid.SliceOfN(rapid.Float64Range(-100, 100), 3, 20)
		a, b := gen.Draw(t, "a"), gen.Draw(t, "b")
		mode := rapid.SampledFrom([]domain.TwoSampleMode{domain.ModePooled, domain.ModeWelch}).Draw(t, "mode")

		ab, err := TwoSample(a, b, 0.05, mode)
		if err != nil {
			return
		}
		ba, err := TwoSample(b, a, 0.05, mode)
		if err != nil {
			t.Fatalf("swap failed: %v", err)
		}
		if math.Abs(ab.Statistic+ba.Statistic) > 1e-9*math.Max(1, math.Abs(ab.Statistic)) {
			t.Fatalf("t(a,b)=%v t(b,a)=%v", ab.Statistic, ba.Statistic)
		}
		if math.Abs(ab.PValue-ba.PValue) > 1e-12 {
			t.Fatalf("p(a,b)=%v p(b,a)=%v", ab.PValue, ba.PValue)
		}
		if ab.PValue < 0 || ab.PValue > 1 {
			t.Fatalf("p out of range: %v", ab.PValue)
		}
	})
}

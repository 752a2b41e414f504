package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"statcore/domain/core"
	domain "statcore/domain/stats"
	"statcore/internal"
	"statcore/internal/config"
	"statcore/internal/engine/correction"
	"statcore/internal/engine/correlation"
	"statcore/internal/engine/descriptive"
	"statcore/internal/engine/ttest"
	"statcore/internal/errors"
	"statcore/ports"
)

// AnalysisService runs engine computations with configured defaults
type AnalysisService struct {
	cfg    *config.Config
	log    *internal.Logger
	reader ports.SampleReader
}

// NewAnalysisService creates an analysis service. reader may be nil when no
// file input is needed.
func NewAnalysisService(cfg *config.Config, logger *internal.Logger, reader ports.SampleReader) *AnalysisService {
	if cfg == nil {
		cfg = config.Default()
	}
	return &AnalysisService{
		cfg:    cfg,
		log:    logger.With("AnalysisService"),
		reader: reader,
	}
}

// Config returns the configuration the service was built with
func (s *AnalysisService) Config() *config.Config {
	return s.cfg
}

func (s *AnalysisService) alpha(alpha float64) float64 {
	if alpha == 0 {
		return s.cfg.Analysis.Alpha
	}
	return alpha
}

// Describe summarises values.
func (s *AnalysisService) Describe(values []float64, alpha float64) (domain.DescriptiveStatistics, error) {
	return descriptive.Describe(values, s.alpha(alpha))
}

// OneSample runs a one-sample t-test against mu0.
func (s *AnalysisService) OneSample(values []float64, mu0, alpha float64) (domain.TestResult, error) {
	return ttest.OneSample(values, mu0, s.alpha(alpha))
}

// TwoSample runs an independent two-sample t-test. mode is pooled, welch or
// auto; empty uses the configured default. Auto picks the variance model from
// Levene's test at alpha.
func (s *AnalysisService) TwoSample(a, b []float64, alpha float64, mode string) (domain.TestResult, error) {
	alpha = s.alpha(alpha)
	resolved, err := s.resolveMode(a, b, alpha, mode)
	if err != nil {
		return domain.TestResult{}, err
	}
	return ttest.TwoSample(a, b, alpha, resolved)
}

func (s *AnalysisService) resolveMode(a, b []float64, alpha float64, mode string) (domain.TwoSampleMode, error) {
	if mode == "" {
		mode = s.cfg.Analysis.TwoSampleMode
	}
	switch mode {
	case string(domain.ModePooled):
		return domain.ModePooled, nil
	case string(domain.ModeWelch):
		return domain.ModeWelch, nil
	case "auto":
		picked := ttest.RecommendTwoSampleMode(a, b, alpha)
		s.log.Debug("auto mode selected %s", picked)
		return picked, nil
	default:
		return "", errors.InvalidInput(fmt.Sprintf("two-sample mode must be pooled, welch or auto, got %q", mode))
	}
}

// Paired runs a paired t-test on before-after differences.
func (s *AnalysisService) Paired(before, after []float64, alpha float64) (domain.TestResult, error) {
	return ttest.Paired(before, after, s.alpha(alpha))
}

// Correlate computes the Pearson correlation of x and y.
func (s *AnalysisService) Correlate(x, y []float64, alpha float64) (domain.CorrelationResult, error) {
	return correlation.Pearson(x, y, s.alpha(alpha))
}

// Correct adjusts one p-value from a family of m. An empty method uses the
// configured default.
func (s *AnalysisService) Correct(p float64, method string, m int, alpha float64) (domain.MultipleComparisonsResult, error) {
	parsed, err := s.method(method)
	if err != nil {
		return domain.MultipleComparisonsResult{}, err
	}
	return correction.Correct(p, parsed, m, s.alpha(alpha))
}

// CorrectFamily adjusts a whole family of p-values jointly.
func (s *AnalysisService) CorrectFamily(ps []float64, method string, alpha float64) ([]domain.MultipleComparisonsResult, error) {
	parsed, err := s.method(method)
	if err != nil {
		return nil, err
	}
	return correction.CorrectFamily(ps, parsed, s.alpha(alpha))
}

func (s *AnalysisService) method(name string) (domain.CorrectionMethod, error) {
	if name == "" {
		name = s.cfg.Analysis.Correction
	}
	return correction.ParseMethod(name)
}

// LoadColumns reads named numeric columns through the configured reader.
func (s *AnalysisService) LoadColumns(ctx context.Context, path string, columns ...string) (map[string][]float64, error) {
	if s.reader == nil {
		return nil, errors.InternalError("no sample reader configured")
	}
	cols, err := s.reader.ReadColumns(ctx, path, columns...)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return cols, nil
}

// RequestKind names the test a batch request runs
type RequestKind string

const (
	RequestOneSample RequestKind = "one_sample_t"
	RequestTwoSample RequestKind = "two_sample_t"
	RequestPaired    RequestKind = "paired_t"
	RequestPearson   RequestKind = "pearson"
)

// Request is one test in a batch. Sample holds the first (or only) sample,
// before-values or x; Other holds the second sample, after-values or y.
type Request struct {
	Label  string      `json:"label,omitempty"`
	Kind   RequestKind `json:"kind"`
	Sample []float64   `json:"sample"`
	Other  []float64   `json:"other,omitempty"`
	Mu0    float64     `json:"mu0,omitempty"`
	Mode   string      `json:"mode,omitempty"`
	Alpha  float64     `json:"alpha,omitempty"`
}

// ItemResult is the outcome of one batch request. Exactly one of Test,
// Correlation or Error is set.
type ItemResult struct {
	ID          core.RunID                `json:"id"`
	Label       string                    `json:"label,omitempty"`
	Kind        RequestKind               `json:"kind"`
	Test        *domain.TestResult        `json:"test,omitempty"`
	Correlation *domain.CorrelationResult `json:"correlation,omitempty"`
	Error       string                    `json:"error,omitempty"`
	ErrorCode   string                    `json:"error_code,omitempty"`
}

// Succeeded reports whether the item produced a result.
func (r ItemResult) Succeeded() bool {
	return r.Error == ""
}

// PValue returns the item's uncorrected p-value.
func (r ItemResult) PValue() (float64, bool) {
	switch {
	case r.Test != nil:
		return r.Test.PValue, true
	case r.Correlation != nil:
		return r.Correlation.PValue, true
	}
	return 0, false
}

// BatchResult holds every item of a batch in request order
type BatchResult struct {
	BatchID    core.BatchID            `json:"batch_id"`
	Correction domain.CorrectionMethod `json:"correction"`
	Alpha      float64                 `json:"alpha"`
	Items      []ItemResult            `json:"items"`
	Succeeded  int                     `json:"succeeded"`
	Failed     int                     `json:"failed"`
	StartedAt  core.Timestamp          `json:"started_at"`
	RuntimeMs  int64                   `json:"runtime_ms"`
}

// RunBatch runs reqs concurrently, bounded by Batch.MaxConcurrency. A failing
// request is reported on its item and does not stop the others; cancelling
// ctx stops the batch. The p-values of the successful items are then
// corrected jointly with method (empty uses the configured default) at alpha.
func (s *AnalysisService) RunBatch(ctx context.Context, reqs []Request, method string, alpha float64) (*BatchResult, error) {
	parsed, err := s.method(method)
	if err != nil {
		return nil, err
	}
	alpha = s.alpha(alpha)
	if !(alpha > 0 && alpha < 1) {
		return nil, errors.InvalidParameter("alpha", alpha, "in (0, 1)")
	}

	start := time.Now()
	batch := &BatchResult{
		BatchID:    core.NewBatchID(),
		Correction: parsed,
		Alpha:      alpha,
		Items:      make([]ItemResult, len(reqs)),
		StartedAt:  core.Now(),
	}
	s.log.Info("batch %s: running %d tests (max %d concurrent, correction %s)",
		batch.BatchID, len(reqs), s.cfg.Batch.MaxConcurrency, parsed)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Batch.MaxConcurrency)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			batch.Items[i] = s.runItem(req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Warn("batch %s canceled: %v", batch.BatchID, err)
		return nil, errors.WithCode(errors.CodeCanceled, err)
	}

	if err := s.correctBatch(batch, parsed, alpha); err != nil {
		return nil, err
	}

	batch.RuntimeMs = time.Since(start).Milliseconds()
	s.log.Info("batch %s: %d succeeded, %d failed in %dms",
		batch.BatchID, batch.Succeeded, batch.Failed, batch.RuntimeMs)
	return batch, nil
}

func (s *AnalysisService) runItem(req Request) ItemResult {
	item := ItemResult{ID: core.NewRunID(), Label: req.Label, Kind: req.Kind}

	var err error
	switch req.Kind {
	case RequestOneSample:
		var r domain.TestResult
		if r, err = s.OneSample(req.Sample, req.Mu0, req.Alpha); err == nil {
			item.Test = &r
		}
	case RequestTwoSample:
		var r domain.TestResult
		if r, err = s.TwoSample(req.Sample, req.Other, req.Alpha, req.Mode); err == nil {
			item.Test = &r
		}
	case RequestPaired:
		var r domain.TestResult
		if r, err = s.Paired(req.Sample, req.Other, req.Alpha); err == nil {
			item.Test = &r
		}
	case RequestPearson:
		var r domain.CorrelationResult
		if r, err = s.Correlate(req.Sample, req.Other, req.Alpha); err == nil {
			item.Correlation = &r
		}
	default:
		err = errors.InvalidInput(fmt.Sprintf("unknown request kind %q", req.Kind))
	}

	if err != nil {
		s.log.Debug("item %s (%s) failed: %v", item.ID, req.Kind, err)
		item.Error = err.Error()
		item.ErrorCode = errors.GetCode(err)
	}
	return item
}

func (s *AnalysisService) correctBatch(batch *BatchResult, method domain.CorrectionMethod, alpha float64) error {
	var (
		ps      []float64
		indices []int
	)
	for i, item := range batch.Items {
		if p, ok := item.PValue(); ok {
			ps = append(ps, p)
			indices = append(indices, i)
			batch.Succeeded++
		} else {
			batch.Failed++
		}
	}

	adjusted, err := correction.CorrectFamily(ps, method, alpha)
	if err != nil {
		return errors.Wrap(err, "correcting batch p-values")
	}
	for k, i := range indices {
		item := &batch.Items[i]
		switch {
		case item.Test != nil:
			r := item.Test.WithCorrection(adjusted[k])
			item.Test = &r
		case item.Correlation != nil:
			r := item.Correlation.WithCorrection(adjusted[k])
			item.Correlation = &r
		}
	}
	return nil
}

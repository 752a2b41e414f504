// Package stats holds the value objects produced and consumed by the engine.
// Every type here is a plain value: no identity, no back-references, safe to
// copy and to share across goroutines once built.
package stats

import (
	"math"
)

// Sample is an ordered sequence of finite observations.
type Sample []float64

// Clean drops NaN and ±Inf, returning a fresh Sample. raw is not modified.
func Clean(raw []float64) Sample {
	out := make(Sample, 0, len(raw))
	for _, v := range raw {
		if IsFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// AllFinite reports whether every value in s is finite.
func (s Sample) AllFinite() bool {
	for _, v := range s {
		if !IsFinite(v) {
			return false
		}
	}
	return true
}

// Clone returns a copy that can be reordered without touching s.
func (s Sample) Clone() Sample {
	out := make(Sample, len(s))
	copy(out, s)
	return out
}

// Interval is a closed [lower, upper] range; it encodes as a two-element JSON array.
type Interval [2]float64

func (i Interval) Lower() float64 { return i[0] }
func (i Interval) Upper() float64 { return i[1] }

// Contains reports whether v lies within the interval.
func (i Interval) Contains(v float64) bool {
	return v >= i[0] && v <= i[1]
}

// Width is upper minus lower.
func (i Interval) Width() float64 {
	return i[1] - i[0]
}

// DescriptiveStatistics summarises a single sample. Mode is nil when no value
// repeats; CV is nil when the mean is zero.
type DescriptiveStatistics struct {
	Count              int      `json:"count"`
	Mean               float64  `json:"mean"`
	Median             float64  `json:"median"`
	Mode               *float64 `json:"mode"`
	StdDev             float64  `json:"std_dev"`
	Variance           float64  `json:"variance"`
	Range              float64  `json:"range"`
	Min                float64  `json:"min"`
	Max                float64  `json:"max"`
	Q1                 float64  `json:"q1"`
	Q3                 float64  `json:"q3"`
	IQR                float64  `json:"iqr"`
	Skewness           float64  `json:"skewness"`
	Kurtosis           float64  `json:"kurtosis"` // excess
	CV                 *float64 `json:"cv"`       // percent
	StandardError      float64  `json:"standard_error"`
	ConfidenceInterval Interval `json:"confidence_interval"` // of the mean
	ConfidenceLevel    float64  `json:"confidence_level"`
}

// Assumption names attached to test results
const (
	AssumptionNormality     = "normality"
	AssumptionIndependence  = "independence"
	AssumptionSampleSize    = "sample_size"
	AssumptionEqualVariance = "equal_variance"
)

// AssumptionCheck is a lightweight heuristic verdict on a test precondition.
type AssumptionCheck struct {
	Name        string   `json:"name"`
	Met         bool     `json:"met"`
	Description string   `json:"description"`
	Statistic   *float64 `json:"statistic,omitempty"`
	PValue      *float64 `json:"p_value,omitempty"`
}

// TestKind discriminates the Detail carried by a TestResult.
type TestKind string

const (
	KindOneSampleT TestKind = "one_sample_t"
	KindTwoSampleT TestKind = "two_sample_t"
	KindPairedT    TestKind = "paired_t"
)

// TwoSampleMode selects the variance model of the two-sample t-test.
type TwoSampleMode string

const (
	ModePooled TwoSampleMode = "pooled"
	ModeWelch  TwoSampleMode = "welch"
)

// EffectSize is a standardized effect with its magnitude bucket.
type EffectSize struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Magnitude string  `json:"magnitude"`
}

// TestDetail is implemented only by the per-kind detail records below.
type TestDetail interface {
	Kind() TestKind
}

// OneSampleDetail carries the intermediate quantities of a one-sample t-test.
type OneSampleDetail struct {
	N                int     `json:"n"`
	Mean             float64 `json:"mean"`
	StdDev           float64 `json:"std_dev"`
	StandardError    float64 `json:"standard_error"`
	HypothesizedMean float64 `json:"hypothesized_mean"`
}

func (OneSampleDetail) Kind() TestKind { return KindOneSampleT }

// TwoSampleDetail carries the intermediate quantities of a two-sample t-test.
type TwoSampleDetail struct {
	Mode           TwoSampleMode `json:"mode"`
	N1             int           `json:"n1"`
	N2             int           `json:"n2"`
	Mean1          float64       `json:"mean1"`
	Mean2          float64       `json:"mean2"`
	StdDev1        float64       `json:"std_dev1"`
	StdDev2        float64       `json:"std_dev2"`
	MeanDifference float64       `json:"mean_difference"`
	StandardError  float64       `json:"standard_error"`
	PooledStdDev   float64       `json:"pooled_std_dev"`
}

func (TwoSampleDetail) Kind() TestKind { return KindTwoSampleT }

// PairedDetail carries the intermediate quantities of a paired t-test.
type PairedDetail struct {
	N                int     `json:"n"`
	MeanDifference   float64 `json:"mean_difference"`
	StdDevDifference float64 `json:"std_dev_difference"`
	StandardError    float64 `json:"standard_error"`
}

func (PairedDetail) Kind() TestKind { return KindPairedT }

// TestResult is the immutable outcome of one hypothesis test call.
type TestResult struct {
	Kind               TestKind                   `json:"kind"`
	TestName           string                     `json:"test_name"`
	Statistic          float64                    `json:"test_statistic"`
	PValue             float64                    `json:"p_value"`
	DegreesOfFreedom   *float64                   `json:"degrees_of_freedom,omitempty"`
	EffectSize         *EffectSize                `json:"effect_size,omitempty"`
	ConfidenceInterval Interval                   `json:"confidence_interval"`
	Interpretation     string                     `json:"interpretation"`
	IsSignificant      bool                       `json:"is_significant"`
	Alpha              float64                    `json:"alpha"`
	Assumptions        []AssumptionCheck          `json:"assumptions"`
	Correction         *MultipleComparisonsResult `json:"multiple_comparisons,omitempty"`
	Detail             TestDetail                 `json:"detail"`
}

// WithCorrection returns a copy of r with c attached. r is left untouched.
func (r TestResult) WithCorrection(c MultipleComparisonsResult) TestResult {
	out := r
	out.Assumptions = append([]AssumptionCheck(nil), r.Assumptions...)
	out.Correction = &c
	return out
}

// OneSample returns the detail when r came from a one-sample test.
func (r TestResult) OneSample() (OneSampleDetail, bool) {
	d, ok := r.Detail.(OneSampleDetail)
	return d, ok
}

// TwoSample returns the detail when r came from a two-sample test.
func (r TestResult) TwoSample() (TwoSampleDetail, bool) {
	d, ok := r.Detail.(TwoSampleDetail)
	return d, ok
}

// Paired returns the detail when r came from a paired test.
func (r TestResult) Paired() (PairedDetail, bool) {
	d, ok := r.Detail.(PairedDetail)
	return d, ok
}

// CorrectionMethod names a multiple-comparison policy.
type CorrectionMethod string

const (
	CorrectionNone       CorrectionMethod = "none"
	CorrectionBonferroni CorrectionMethod = "bonferroni"
	CorrectionHolm       CorrectionMethod = "holm"
	CorrectionFDR        CorrectionMethod = "fdr"
)

// MultipleComparisonsResult records how one p-value was adjusted within a family.
type MultipleComparisonsResult struct {
	Method                       CorrectionMethod `json:"method"`
	OriginalPValue               float64          `json:"original_p_value"`
	AdjustedPValue               float64          `json:"adjusted_p_value"`
	IsSignificantAfterCorrection bool             `json:"is_significant_after_correction"`
	Alpha                        float64          `json:"alpha"`
	NumberOfComparisons          int              `json:"number_of_comparisons"`
	CorrectionApplied            string           `json:"correction_applied"`
}

// CorrelationResult is the immutable outcome of a correlation test.
type CorrelationResult struct {
	Correlation        float64                    `json:"correlation"`
	PValue             float64                    `json:"p_value"`
	ConfidenceInterval Interval                   `json:"confidence_interval"`
	Interpretation     string                     `json:"interpretation"`
	Strength           string                     `json:"strength"`
	SampleSize         int                        `json:"sample_size"`
	IsSignificant      bool                       `json:"is_significant"`
	Alpha              float64                    `json:"alpha"`
	Correction         *MultipleComparisonsResult `json:"multiple_comparisons,omitempty"`
}

// WithCorrection returns a copy of r with c attached.
func (r CorrelationResult) WithCorrection(c MultipleComparisonsResult) CorrelationResult {
	out := r
	out.Correction = &c
	return out
}

// Package ttest implements Student's t-tests: one-sample, two-sample (pooled
// and Welch) and paired. Every function validates its input, filters
// non-finite observations and returns an immutable TestResult.
package ttest

import (
	"math"

	domain "statcore/domain/stats"
	"statcore/internal/engine/moments"
	"statcore/internal/engine/tdist"
	"statcore/internal/errors"
)

const minObservations = 2

type location struct {
	n     int
	mean  float64
	sd    float64
	se    float64
	t     float64
	df    float64
	p     float64
	d     float64
	lower float64
	upper float64
}

// locate runs the one-sample machinery shared by OneSample and Paired.
func locate(what string, sample domain.Sample, mu0, alpha float64) (location, error) {
	if len(sample) < minObservations {
		return location{}, errors.InsufficientData(what, len(sample), minObservations)
	}
	m := moments.Compute(sample)
	if m.StdDev == 0 {
		return location{}, errors.ZeroVariance(what)
	}

	n := float64(m.Count)
	se := m.StdDev / math.Sqrt(n)
	t := (m.Mean - mu0) / se
	df := n - 1
	margin := tdist.Critical(alpha, df) * se

	return location{
		n:     m.Count,
		mean:  m.Mean,
		sd:    m.StdDev,
		se:    se,
		t:     t,
		df:    df,
		p:     tdist.TwoSidedPValue(t, df),
		d:     math.Abs(m.Mean-mu0) / m.StdDev,
		lower: m.Mean - margin,
		upper: m.Mean + margin,
	}, nil
}

func validateAlpha(alpha float64) error {
	if !(alpha > 0 && alpha < 1) {
		return errors.InvalidParameter("alpha", alpha, "in (0, 1)")
	}
	return nil
}

// OneSample tests whether the mean of raw differs from mu0.
func OneSample(raw []float64, mu0, alpha float64) (domain.TestResult, error) {
	const name = "One-sample t-test"
	if err := validateAlpha(alpha); err != nil {
		return domain.TestResult{}, err
	}
	if !domain.IsFinite(mu0) {
		return domain.TestResult{}, errors.InvalidParameter("hypothesized mean", mu0, "finite")
	}

	sample := domain.Clean(raw)
	loc, err := locate("one-sample t-test", sample, mu0, alpha)
	if err != nil {
		return domain.TestResult{}, err
	}

	effect := cohensD(loc.d)
	df := loc.df
	return domain.TestResult{
		Kind:               domain.KindOneSampleT,
		TestName:           name,
		Statistic:          loc.t,
		PValue:             loc.p,
		DegreesOfFreedom:   &df,
		EffectSize:         effect,
		ConfidenceInterval: domain.Interval{loc.lower, loc.upper},
		Interpretation:     interpret(name, loc.t, df, loc.p, alpha, effect),
		IsSignificant:      loc.p < alpha,
		Alpha:              alpha,
		Assumptions: []domain.AssumptionCheck{
			normalityCheck(group{"sample", sample}),
			independenceCheck(),
			sampleSizeCheck(loc.n),
		},
		Detail: domain.OneSampleDetail{
			N:                loc.n,
			Mean:             loc.mean,
			StdDev:           loc.sd,
			StandardError:    loc.se,
			HypothesizedMean: mu0,
		},
	}, nil
}

// TwoSample compares the means of two independent samples. Pooled assumes a
// common variance; Welch does not and uses the Welch-Satterthwaite degrees of
// freedom floored to an integer.
func TwoSample(rawA, rawB []float64, alpha float64, mode domain.TwoSampleMode) (domain.TestResult, error) {
	const what = "two-sample t-test"
	if err := validateAlpha(alpha); err != nil {
		return domain.TestResult{}, err
	}
	if mode != domain.ModePooled && mode != domain.ModeWelch {
		return domain.TestResult{}, errors.InvalidInput("two-sample mode must be pooled or welch, got " + string(mode))
	}

	a, b := domain.Clean(rawA), domain.Clean(rawB)
	if len(a) < minObservations {
		return domain.TestResult{}, errors.Wrap(errors.InsufficientData(what, len(a), minObservations), "first sample")
	}
	if len(b) < minObservations {
		return domain.TestResult{}, errors.Wrap(errors.InsufficientData(what, len(b), minObservations), "second sample")
	}

	ma, mb := moments.Compute(a), moments.Compute(b)
	n1, n2 := float64(ma.Count), float64(mb.Count)
	pooledVar := ((n1-1)*ma.Variance + (n2-1)*mb.Variance) / (n1 + n2 - 2)
	if pooledVar == 0 {
		return domain.TestResult{}, errors.ZeroVariance(what)
	}
	pooledSD := math.Sqrt(pooledVar)

	var se, df float64
	name := "Independent samples t-test (pooled variance)"
	switch mode {
	case domain.ModePooled:
		se = pooledSD * math.Sqrt(1/n1+1/n2)
		df = n1 + n2 - 2
	case domain.ModeWelch:
		name = "Welch's t-test"
		va, vb := ma.Variance/n1, mb.Variance/n2
		se = math.Sqrt(va + vb)
		df = WelchDF(va, vb, n1, n2)
	}

	diff := ma.Mean - mb.Mean
	t := diff / se
	p := tdist.TwoSidedPValue(t, df)
	margin := tdist.Critical(alpha, df) * se
	effect := cohensD(diff / pooledSD)

	return domain.TestResult{
		Kind:               domain.KindTwoSampleT,
		TestName:           name,
		Statistic:          t,
		PValue:             p,
		DegreesOfFreedom:   &df,
		EffectSize:         effect,
		ConfidenceInterval: domain.Interval{diff - margin, diff + margin},
		Interpretation:     interpret(name, t, df, p, alpha, effect),
		IsSignificant:      p < alpha,
		Alpha:              alpha,
		Assumptions: []domain.AssumptionCheck{
			normalityCheck(group{"group 1", a}, group{"group 2", b}),
			independenceCheck(),
			sampleSizeCheck(ma.Count, mb.Count),
			equalVarianceCheck(alpha, a, b),
		},
		Detail: domain.TwoSampleDetail{
			Mode:           mode,
			N1:             ma.Count,
			N2:             mb.Count,
			Mean1:          ma.Mean,
			Mean2:          mb.Mean,
			StdDev1:        ma.StdDev,
			StdDev2:        mb.StdDev,
			MeanDifference: diff,
			StandardError:  se,
			PooledStdDev:   pooledSD,
		},
	}, nil
}

// WelchDF returns the Welch-Satterthwaite degrees of freedom for squared
// standard errors va and vb, floored to an integer and never below 1.
func WelchDF(va, vb, n1, n2 float64) float64 {
	num := (va + vb) * (va + vb)
	den := va*va/(n1-1) + vb*vb/(n2-1)
	if den == 0 {
		return n1 + n2 - 2
	}
	return math.Max(1, math.Floor(num/den))
}

// Paired tests whether the mean of before-after differs from zero. Pairs with
// a non-finite side are dropped.
func Paired(before, after []float64, alpha float64) (domain.TestResult, error) {
	const (
		what = "paired t-test"
		name = "Paired t-test"
	)
	if err := validateAlpha(alpha); err != nil {
		return domain.TestResult{}, err
	}
	if len(before) != len(after) {
		return domain.TestResult{}, errors.LengthMismatch(what, len(before), len(after))
	}

	diffs := make(domain.Sample, 0, len(before))
	for i := range before {
		if domain.IsFinite(before[i]) && domain.IsFinite(after[i]) {
			diffs = append(diffs, before[i]-after[i])
		}
	}

	loc, err := locate(what, diffs, 0, alpha)
	if err != nil {
		return domain.TestResult{}, err
	}

	effect := cohensD(loc.d)
	effect.Name = "cohens_dz"
	df := loc.df
	return domain.TestResult{
		Kind:               domain.KindPairedT,
		TestName:           name,
		Statistic:          loc.t,
		PValue:             loc.p,
		DegreesOfFreedom:   &df,
		EffectSize:         effect,
		ConfidenceInterval: domain.Interval{loc.lower, loc.upper},
		Interpretation:     interpret(name, loc.t, df, loc.p, alpha, effect),
		IsSignificant:      loc.p < alpha,
		Alpha:              alpha,
		Assumptions: []domain.AssumptionCheck{
			normalityCheck(group{"differences", diffs}),
			independenceCheck(),
			sampleSizeCheck(loc.n),
		},
		Detail: domain.PairedDetail{
			N:                loc.n,
			MeanDifference:   loc.mean,
			StdDevDifference: loc.sd,
			StandardError:    loc.se,
		},
	}, nil
}

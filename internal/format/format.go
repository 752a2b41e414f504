// Package format rounds engine output to significant digits at the process
// boundary. The engine itself never rounds.
package format

import (
	"math"
	"strconv"

	domain "statcore/domain/stats"
)

// Default significant digits for test statistics and effect sizes
const (
	StatDigits   = 6
	EffectDigits = 4
)

// Significant rounds x to the given number of significant digits. NaN, ±Inf
// and zero are returned unchanged; digits below 1 is treated as 1.
func Significant(x float64, digits int) float64 {
	if x == 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	if digits < 1 {
		digits = 1
	}
	out, err := strconv.ParseFloat(strconv.FormatFloat(x, 'g', digits, 64), 64)
	if err != nil {
		return x
	}
	return out
}

// Stat rounds to StatDigits significant digits.
func Stat(x float64) float64 { return Significant(x, StatDigits) }

// Effect rounds to EffectDigits significant digits.
func Effect(x float64) float64 { return Significant(x, EffectDigits) }

// Precision carries configured digit counts and rounds whole results with them.
type Precision struct {
	Stat   int
	Effect int
}

// DefaultPrecision uses StatDigits and EffectDigits.
func DefaultPrecision() Precision {
	return Precision{Stat: StatDigits, Effect: EffectDigits}
}

func (p Precision) s(x float64) float64 { return Significant(x, p.Stat) }
func (p Precision) e(x float64) float64 { return Significant(x, p.Effect) }

func (p Precision) interval(iv domain.Interval) domain.Interval {
	return domain.Interval{p.s(iv[0]), p.s(iv[1])}
}

func (p Precision) ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := p.s(*v)
	return &out
}

// Descriptive returns a rounded copy of d.
func (p Precision) Descriptive(d domain.DescriptiveStatistics) domain.DescriptiveStatistics {
	d.Mean = p.s(d.Mean)
	d.Median = p.s(d.Median)
	d.Mode = p.ptr(d.Mode)
	d.StdDev = p.s(d.StdDev)
	d.Variance = p.s(d.Variance)
	d.Range = p.s(d.Range)
	d.Min = p.s(d.Min)
	d.Max = p.s(d.Max)
	d.Q1 = p.s(d.Q1)
	d.Q3 = p.s(d.Q3)
	d.IQR = p.s(d.IQR)
	d.Skewness = p.e(d.Skewness)
	d.Kurtosis = p.e(d.Kurtosis)
	if d.CV != nil {
		cv := p.e(*d.CV)
		d.CV = &cv
	}
	d.StandardError = p.s(d.StandardError)
	d.ConfidenceInterval = p.interval(d.ConfidenceInterval)
	return d
}

// Correction returns a rounded copy of c.
func (p Precision) Correction(c domain.MultipleComparisonsResult) domain.MultipleComparisonsResult {
	c.OriginalPValue = p.s(c.OriginalPValue)
	c.AdjustedPValue = p.s(c.AdjustedPValue)
	return c
}

// Test returns a rounded copy of r. Slices and pointers are not shared with r.
func (p Precision) Test(r domain.TestResult) domain.TestResult {
	r.Statistic = p.s(r.Statistic)
	r.PValue = p.s(r.PValue)
	r.ConfidenceInterval = p.interval(r.ConfidenceInterval)
	if r.EffectSize != nil {
		es := *r.EffectSize
		es.Value = p.e(es.Value)
		r.EffectSize = &es
	}
	if r.DegreesOfFreedom != nil {
		df := *r.DegreesOfFreedom
		r.DegreesOfFreedom = &df
	}
	if r.Correction != nil {
		c := p.Correction(*r.Correction)
		r.Correction = &c
	}

	checks := make([]domain.AssumptionCheck, len(r.Assumptions))
	for i, a := range r.Assumptions {
		a.Statistic = p.ptr(a.Statistic)
		a.PValue = p.ptr(a.PValue)
		checks[i] = a
	}
	r.Assumptions = checks

	switch d := r.Detail.(type) {
	case domain.OneSampleDetail:
		d.Mean, d.StdDev, d.StandardError = p.s(d.Mean), p.s(d.StdDev), p.s(d.StandardError)
		r.Detail = d
	case domain.TwoSampleDetail:
		d.Mean1, d.Mean2 = p.s(d.Mean1), p.s(d.Mean2)
		d.StdDev1, d.StdDev2 = p.s(d.StdDev1), p.s(d.StdDev2)
		d.MeanDifference = p.s(d.MeanDifference)
		d.StandardError = p.s(d.StandardError)
		d.PooledStdDev = p.s(d.PooledStdDev)
		r.Detail = d
	case domain.PairedDetail:
		d.MeanDifference = p.s(d.MeanDifference)
		d.StdDevDifference = p.s(d.StdDevDifference)
		d.StandardError = p.s(d.StandardError)
		r.Detail = d
	}
	return r
}

// Correlation returns a rounded copy of c.
func (p Precision) Correlation(c domain.CorrelationResult) domain.CorrelationResult {
	c.Correlation = p.e(c.Correlation)
	c.PValue = p.s(c.PValue)
	c.ConfidenceInterval = domain.Interval{p.e(c.ConfidenceInterval[0]), p.e(c.ConfidenceInterval[1])}
	if c.Correction != nil {
		corr := p.Correction(*c.Correction)
		c.Correction = &corr
	}
	return c
}

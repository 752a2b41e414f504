// Package moments computes running moments of a sample in a single pass.
package moments

import (
	"math"
)

// Accumulator maintains running statistics for mean and variance using
// Welford's algorithm.
type Accumulator struct {
	count int
	mean  float64
	m2    float64
}

// Add incorporates a new data point x into the running statistics.
func (a *Accumulator) Add(x float64) {
	a.count++
	delta := x - a.mean
	a.mean += delta / float64(a.count)
	delta2 := x - a.mean
	a.m2 += delta * delta2
}

// Count returns the number of values that have been added.
func (a *Accumulator) Count() int {
	return a.count
}

// Mean returns the running mean, 0 before any value is added.
func (a *Accumulator) Mean() float64 {
	return a.mean
}

// SampleVariance returns m2/(n-1), or 0 with fewer than 2 values.
func (a *Accumulator) SampleVariance() float64 {
	if a.count < 2 {
		return 0
	}
	return a.m2 / float64(a.count-1)
}

// SumSquares returns the running sum of squared deviations from the mean.
func (a *Accumulator) SumSquares() float64 {
	return a.m2
}

// Moments is the first two moments of a sample.
type Moments struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"std_dev"`
}

// Compute runs the accumulator over xs. Variance uses the n-1 divisor and is 0
// when len(xs) <= 1.
func Compute(xs []float64) Moments {
	var acc Accumulator
	for _, x := range xs {
		acc.Add(x)
	}
	v := acc.SampleVariance()
	return Moments{
		Count:    acc.Count(),
		Mean:     acc.Mean(),
		Variance: v,
		StdDev:   math.Sqrt(v),
	}
}

// Shape returns the population skewness and excess kurtosis of xs around mean
// (third and fourth standardized moments, divisor n). Both are 0 when the
// sample has no spread.
func Shape(xs []float64, mean float64) (skewness, excessKurtosis float64) {
	n := float64(len(xs))
	if n == 0 {
		return 0, 0
	}
	var m2, m3, m4 float64
	for _, x := range xs {
		d := x - mean
		d2 := d * d
		m2 += d2
		m3 += d2 * d
		m4 += d2 * d2
	}
	m2 /= n
	m3 /= n
	m4 /= n
	if m2 == 0 {
		return 0, 0
	}
	skewness = m3 / math.Pow(m2, 1.5)
	excessKurtosis = m4/(m2*m2) - 3
	return skewness, excessKurtosis
}

// CoAccumulator tracks the running co-moment of paired observations alongside
// the marginal moments, giving covariance without a second pass.
type CoAccumulator struct {
	x, y Accumulator
	cxy  float64
}

// Add incorporates the pair (x, y).
func (c *CoAccumulator) Add(x, y float64) {
	dx := x - c.x.Mean()
	c.x.Add(x)
	c.y.Add(y)
	c.cxy += dx * (y - c.y.Mean())
}

// Count returns the number of pairs added.
func (c *CoAccumulator) Count() int {
	return c.x.Count()
}

// X and Y expose the marginal accumulators.
func (c *CoAccumulator) X() *Accumulator { return &c.x }
func (c *CoAccumulator) Y() *Accumulator { return &c.y }

// Covariance returns the sample covariance, 0 with fewer than 2 pairs.
func (c *CoAccumulator) Covariance() float64 {
	if c.Count() < 2 {
		return 0
	}
	return c.cxy / float64(c.Count()-1)
}

// Correlation returns cov/(sx*sy) computed from the co-moment sums. ok is
// false when either side has zero spread.
func (c *CoAccumulator) Correlation() (r float64, ok bool) {
	sxx, syy := c.x.SumSquares(), c.y.SumSquares()
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	r = c.cxy / math.Sqrt(sxx*syy)
	// rounding can push |r| a hair past 1
	return math.Max(-1, math.Min(1, r)), true
}

// Package tdist evaluates Student's t distribution on top of the regularized
// incomplete beta function.
package tdist

import (
	"math"

	"statcore/internal/engine/special"
)

const (
	// MaxIterations bounds the bisection solver.
	MaxIterations = 100
	// Tolerance is the CDF residual at which bisection stops early.
	Tolerance = 1e-15
	// InitialBracket is the half-width of the starting search interval.
	InitialBracket = 10.0
	// maxWidenings bounds how often the bracket may double for heavy tails.
	maxWidenings = 64
)

// tail returns P(T > |t|) for t finite.
func tail(t, df float64) float64 {
	x := df / (df + t*t)
	return 0.5 * special.IncompleteBetaRegularized(x, df/2, 0.5)
}

// CDF returns P(T <= t) for T ~ t(df). Infinite t maps to 0 or 1 by sign;
// NaN t or df <= 0 yields NaN.
func CDF(t, df float64) float64 {
	switch {
	case math.IsNaN(t) || math.IsNaN(df) || df <= 0:
		return math.NaN()
	case math.IsInf(t, 1):
		return 1
	case math.IsInf(t, -1):
		return 0
	}
	prob := tail(t, df)
	if t >= 0 {
		return 1 - prob
	}
	return prob
}

// TwoSidedPValue returns 2·(1 - CDF(|t|, df)), evaluated from the upper tail
// directly so small p-values keep their precision.
func TwoSidedPValue(t, df float64) float64 {
	switch {
	case math.IsNaN(t) || math.IsNaN(df) || df <= 0:
		return math.NaN()
	case math.IsInf(t, 0):
		return 0
	}
	p := 2 * tail(t, df)
	return math.Max(0, math.Min(1, p))
}

// Quantile returns t such that CDF(t, df) = p, solved by bisection. The search
// starts on [-InitialBracket, InitialBracket] and doubles a bound only while p
// lies outside it, so the iteration count stays bounded for every input.
func Quantile(p, df float64) float64 {
	switch {
	case math.IsNaN(p) || math.IsNaN(df) || df <= 0 || p < 0 || p > 1:
		return math.NaN()
	case p == 0:
		return math.Inf(-1)
	case p == 1:
		return math.Inf(1)
	case p == 0.5:
		return 0
	}

	lo, hi := -InitialBracket, InitialBracket
	for i := 0; i < maxWidenings && CDF(lo, df) > p; i++ {
		lo *= 2
	}
	for i := 0; i < maxWidenings && CDF(hi, df) < p; i++ {
		hi *= 2
	}

	for i := 0; i < MaxIterations; i++ {
		mid := lo + (hi-lo)/2
		c := CDF(mid, df)
		if math.Abs(c-p) < Tolerance {
			return mid
		}
		if c < p {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo + (hi-lo)/2
}

// Critical returns the two-sided critical value t_{1-alpha/2, df}.
func Critical(alpha, df float64) float64 {
	return Quantile(1-alpha/2, df)
}

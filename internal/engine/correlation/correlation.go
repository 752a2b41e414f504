// Package correlation measures linear association between paired samples.
package correlation

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	domain "statcore/domain/stats"
	"statcore/internal/engine/moments"
	"statcore/internal/engine/tdist"
	"statcore/internal/errors"
)

const what = "pearson correlation"

// Strength buckets |r| into negligible, weak, moderate, strong or very strong.
func Strength(r float64) string {
	abs := math.Abs(r)
	switch {
	case abs < 0.1:
		return "negligible"
	case abs < 0.3:
		return "weak"
	case abs < 0.5:
		return "moderate"
	case abs < 0.7:
		return "strong"
	default:
		return "very strong"
	}
}

// Pearson computes the product-moment correlation of x and y with a two-sided
// t-test of r = 0 and a Fisher-Z confidence interval at level 1-alpha. Pairs
// with a non-finite side are dropped before anything else.
func Pearson(x, y []float64, alpha float64) (domain.CorrelationResult, error) {
	if !(alpha > 0 && alpha < 1) {
		return domain.CorrelationResult{}, errors.InvalidParameter("alpha", alpha, "in (0, 1)")
	}
	if len(x) != len(y) {
		return domain.CorrelationResult{}, errors.LengthMismatch(what, len(x), len(y))
	}

	var acc moments.CoAccumulator
	for i := range x {
		if domain.IsFinite(x[i]) && domain.IsFinite(y[i]) {
			acc.Add(x[i], y[i])
		}
	}
	n := acc.Count()
	if n < 2 {
		return domain.CorrelationResult{}, errors.InsufficientData(what, n, 2)
	}
	r, ok := acc.Correlation()
	if !ok {
		return domain.CorrelationResult{}, errors.ZeroVariance(what)
	}

	p := pValue(r, n)
	result := domain.CorrelationResult{
		Correlation:        r,
		PValue:             p,
		ConfidenceInterval: FisherInterval(r, n, alpha),
		Strength:           Strength(r),
		SampleSize:         n,
		IsSignificant:      p < alpha,
		Alpha:              alpha,
	}
	result.Interpretation = interpret(result)
	return result, nil
}

func pValue(r float64, n int) float64 {
	switch {
	case n < 3:
		// no residual degrees of freedom
		return 1
	case math.Abs(r) == 1:
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	return tdist.TwoSidedPValue(t, df)
}

// FisherInterval returns the confidence interval for r via the Fisher Z
// transform. It is [-1, 1] when n <= 3 and collapses to [r, r] when |r| == 1.
func FisherInterval(r float64, n int, alpha float64) domain.Interval {
	if math.Abs(r) == 1 && n >= 3 {
		return domain.Interval{r, r}
	}
	if n <= 3 {
		return domain.Interval{-1, 1}
	}
	z := math.Atanh(r)
	se := 1 / math.Sqrt(float64(n-3))
	crit := distuv.UnitNormal.Quantile(1 - alpha/2)
	return domain.Interval{math.Tanh(z - crit*se), math.Tanh(z + crit*se)}
}

func interpret(r domain.CorrelationResult) string {
	direction := "positive"
	switch {
	case r.Correlation < 0:
		direction = "negative"
	case r.Correlation == 0:
		direction = "no"
	}
	verdict := "not statistically significant"
	if r.IsSignificant {
		verdict = "statistically significant"
	}
	return fmt.Sprintf("%s %s correlation (r = %.3f, n = %d) that is %s at alpha = %g (p = %.4g).",
		capitalize(r.Strength), direction, r.Correlation, r.SampleSize, verdict, r.Alpha, r.PValue)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

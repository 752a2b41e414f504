package ttest

import (
	"fmt"
	"math"

	domain "statcore/domain/stats"
)

// Cohen's d magnitude thresholds
const (
	smallEffect  = 0.2
	mediumEffect = 0.5
	largeEffect  = 0.8
)

// Magnitude buckets |d| into negligible, small, medium or large.
func Magnitude(d float64) string {
	abs := math.Abs(d)
	switch {
	case abs < smallEffect:
		return "negligible"
	case abs < mediumEffect:
		return "small"
	case abs < largeEffect:
		return "medium"
	default:
		return "large"
	}
}

func cohensD(d float64) *domain.EffectSize {
	return &domain.EffectSize{
		Name:      "cohens_d",
		Value:     d,
		Magnitude: Magnitude(d),
	}
}

func interpret(testName string, t, df, p, alpha float64, effect *domain.EffectSize) string {
	verdict := "no statistically significant difference"
	relation := ">="
	if p < alpha {
		verdict = "a statistically significant difference"
		relation = "<"
	}
	return fmt.Sprintf("%s found %s (t(%g) = %.4g, p = %.4g %s %g); the effect is %s (Cohen's d = %.3f).",
		testName, verdict, df, t, p, relation, alpha, effect.Magnitude, effect.Value)
}

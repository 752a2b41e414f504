package ttest

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	domain "statcore/domain/stats"
	"statcore/internal/engine/moments"
)

// Normality heuristic thresholds on population skewness and excess kurtosis.
const (
	MaxAbsSkewness = 2.0
	MaxAbsKurtosis = 7.0
	// AdequateSampleSize is the per-group size at which the CLT is taken to hold.
	AdequateSampleSize = 30
)

type group struct {
	label  string
	values []float64
}

func normalityCheck(groups ...group) domain.AssumptionCheck {
	met := true
	desc := ""
	for i, g := range groups {
		skew, kurt := moments.Shape(g.values, moments.Compute(g.values).Mean)
		ok := math.Abs(skew) <= MaxAbsSkewness && math.Abs(kurt) <= MaxAbsKurtosis
		met = met && ok
		if i > 0 {
			desc += "; "
		}
		desc += fmt.Sprintf("%s skewness %.3f, excess kurtosis %.3f", g.label, skew, kurt)
	}
	verdict := "within"
	if !met {
		verdict = "outside"
	}
	return domain.AssumptionCheck{
		Name: domain.AssumptionNormality,
		Met:  met,
		Description: fmt.Sprintf("Shape heuristic (|skewness| <= %g, |excess kurtosis| <= %g), not a formal normality test: %s; %s limits",
			MaxAbsSkewness, MaxAbsKurtosis, desc, verdict),
	}
}

func independenceCheck() domain.AssumptionCheck {
	return domain.AssumptionCheck{
		Name:        domain.AssumptionIndependence,
		Met:         true,
		Description: "Assumed: independence of observations follows from the study design and cannot be tested from the data",
	}
}

func sampleSizeCheck(sizes ...int) domain.AssumptionCheck {
	smallest := sizes[0]
	for _, n := range sizes[1:] {
		if n < smallest {
			smallest = n
		}
	}
	met := smallest >= AdequateSampleSize
	desc := fmt.Sprintf("Smallest group has %d observations; %d or more is considered adequate", smallest, AdequateSampleSize)
	if !met {
		desc += ", so results lean on the normality assumption"
	}
	return domain.AssumptionCheck{
		Name:        domain.AssumptionSampleSize,
		Met:         met,
		Description: desc,
	}
}

// Levene computes the mean-centred Levene statistic for homogeneity of
// variance across groups and its p-value from F(k-1, N-k).
func Levene(groups ...[]float64) (w, p float64) {
	k := len(groups)
	if k < 2 {
		return 0, 1
	}

	deviations := make([][]float64, k)
	groupMeans := make([]float64, k)
	total := 0
	var grand float64
	for i, g := range groups {
		if len(g) == 0 {
			return math.NaN(), math.NaN()
		}
		center := moments.Compute(g).Mean
		z := make([]float64, len(g))
		for j, x := range g {
			z[j] = math.Abs(x - center)
		}
		deviations[i] = z
		groupMeans[i] = moments.Compute(z).Mean
		grand += groupMeans[i] * float64(len(g))
		total += len(g)
	}
	if total <= k {
		return math.NaN(), math.NaN()
	}
	grand /= float64(total)

	var between, within float64
	for i, z := range deviations {
		d := groupMeans[i] - grand
		between += float64(len(z)) * d * d
		for _, v := range z {
			e := v - groupMeans[i]
			within += e * e
		}
	}

	df1, df2 := float64(k-1), float64(total-k)
	switch {
	case within == 0 && between == 0:
		return 0, 1
	case within == 0:
		return math.Inf(1), 0
	}
	w = (df2 / df1) * between / within
	p = 1 - distuv.F{D1: df1, D2: df2}.CDF(w)
	return w, p
}

func equalVarianceCheck(alpha float64, a, b []float64) domain.AssumptionCheck {
	w, p := Levene(a, b)
	met := p > alpha
	desc := fmt.Sprintf("Levene W = %.4g, p = %.4g: ", w, p)
	if met {
		desc += "no evidence of unequal variances"
	} else {
		desc += "variances differ; prefer Welch's t-test"
	}
	return domain.AssumptionCheck{
		Name:        domain.AssumptionEqualVariance,
		Met:         met,
		Description: desc,
		Statistic:   &w,
		PValue:      &p,
	}
}

// RecommendTwoSampleMode picks the pooled test when Levene finds no evidence of
// unequal variances at alpha, and Welch otherwise.
func RecommendTwoSampleMode(a, b []float64, alpha float64) domain.TwoSampleMode {
	a, b = domain.Clean(a), domain.Clean(b)
	if len(a) < 2 || len(b) < 2 {
		return domain.ModeWelch
	}
	if _, p := Levene(a, b); p > alpha {
		return domain.ModePooled
	}
	return domain.ModeWelch
}

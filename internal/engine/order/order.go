// Package order computes order statistics on sorted copies of a sample.
package order

import (
	"math"
	"sort"

	"statcore/internal/errors"
)

// Sorted returns an ascending copy of xs; xs itself is left in caller order.
func Sorted(xs []float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)
	sort.Float64s(out)
	return out
}

// Quantile interpolates linearly between the order statistics at floor and
// ceil of p*(n-1). sorted must be ascending and non-empty; p must lie in [0,1].
func Quantile(sorted []float64, p float64) (float64, error) {
	if len(sorted) == 0 {
		return 0, errors.InsufficientData("quantile", 0, 1)
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, errors.InvalidParameter("quantile probability", p, "in [0, 1]")
	}
	if len(sorted) == 1 {
		return sorted[0], nil
	}

	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo], nil
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo]), nil
}

// Median is Quantile(sorted, 0.5).
func Median(sorted []float64) (float64, error) {
	return Quantile(sorted, 0.5)
}

// Quartiles returns Q1, Q3 and their difference.
func Quartiles(sorted []float64) (q1, q3, iqr float64, err error) {
	if q1, err = Quantile(sorted, 0.25); err != nil {
		return 0, 0, 0, err
	}
	if q3, err = Quantile(sorted, 0.75); err != nil {
		return 0, 0, 0, err
	}
	return q1, q3, q3 - q1, nil
}

// Range returns max-min of an ascending slice, 0 when empty.
func Range(sorted []float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[len(sorted)-1] - sorted[0]
}

// Mode returns the most frequent value, or nil when nothing repeats. Ties go
// to the smallest value so the result does not depend on input order.
func Mode(xs []float64) *float64 {
	if len(xs) < 2 {
		return nil
	}
	sorted := Sorted(xs)

	best, bestCount := sorted[0], 1
	run := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			run++
		} else {
			run = 1
		}
		if run > bestCount {
			best, bestCount = sorted[i], run
		}
	}
	if bestCount == 1 {
		return nil
	}
	return &best
}

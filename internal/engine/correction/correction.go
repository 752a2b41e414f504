// Package correction adjusts p-values for multiple comparisons.
package correction

import (
	"fmt"
	"math"
	"sort"
	"strings"

	domain "statcore/domain/stats"
	"statcore/internal/errors"
)

// ParseMethod maps a user-supplied name onto a CorrectionMethod. The empty
// string means none.
func ParseMethod(name string) (domain.CorrectionMethod, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return domain.CorrectionNone, nil
	case "bonferroni":
		return domain.CorrectionBonferroni, nil
	case "holm", "holm-bonferroni":
		return domain.CorrectionHolm, nil
	case "fdr", "bh", "benjamini-hochberg":
		return domain.CorrectionFDR, nil
	default:
		return "", errors.InvalidInput(fmt.Sprintf("unknown correction method %q (want none, bonferroni, holm or fdr)", name))
	}
}

func validate(p, alpha float64) error {
	if !(p >= 0 && p <= 1) {
		return errors.InvalidParameter("p-value", p, "in [0, 1]")
	}
	if !(alpha > 0 && alpha < 1) {
		return errors.InvalidParameter("alpha", alpha, "in (0, 1)")
	}
	return nil
}

// Correct adjusts a single p-value taken from a family of m comparisons.
// Holm and FDR need the whole family; given one value they report the
// Bonferroni bound, which equals Holm's adjustment of the smallest p-value,
// and say so in CorrectionApplied. Use CorrectFamily for exact adjustments.
func Correct(p float64, method domain.CorrectionMethod, m int, alpha float64) (domain.MultipleComparisonsResult, error) {
	if err := validate(p, alpha); err != nil {
		return domain.MultipleComparisonsResult{}, err
	}
	if m < 1 {
		return domain.MultipleComparisonsResult{}, errors.InvalidParameter("number of comparisons", float64(m), "at least 1")
	}

	adjusted := p
	var applied string
	switch method {
	case domain.CorrectionNone:
		applied = "No correction applied"
	case domain.CorrectionBonferroni:
		adjusted = bonferroni(p, m)
		applied = fmt.Sprintf("Bonferroni correction: p multiplied by %d comparisons", m)
	case domain.CorrectionHolm, domain.CorrectionFDR:
		adjusted = bonferroni(p, m)
		applied = fmt.Sprintf("%s requires the full family of p-values; reporting the Bonferroni bound for %d comparisons", label(method), m)
	default:
		return domain.MultipleComparisonsResult{}, errors.InvalidInput(fmt.Sprintf("unknown correction method %q", method))
	}

	return domain.MultipleComparisonsResult{
		Method:                       method,
		OriginalPValue:               p,
		AdjustedPValue:               adjusted,
		IsSignificantAfterCorrection: adjusted < alpha,
		Alpha:                        alpha,
		NumberOfComparisons:          m,
		CorrectionApplied:            applied,
	}, nil
}

// CorrectFamily adjusts every p-value in ps jointly. Holm is the step-down
// procedure and FDR the Benjamini-Hochberg step-up procedure. Results are
// returned in the order of ps.
func CorrectFamily(ps []float64, method domain.CorrectionMethod, alpha float64) ([]domain.MultipleComparisonsResult, error) {
	for _, p := range ps {
		if err := validate(p, alpha); err != nil {
			return nil, err
		}
	}
	m := len(ps)
	if m == 0 {
		return []domain.MultipleComparisonsResult{}, nil
	}

	adjusted := make([]float64, m)
	var applied string
	switch method {
	case domain.CorrectionNone:
		copy(adjusted, ps)
		applied = "No correction applied"
	case domain.CorrectionBonferroni:
		for i, p := range ps {
			adjusted[i] = bonferroni(p, m)
		}
		applied = fmt.Sprintf("Bonferroni correction: p multiplied by %d comparisons", m)
	case domain.CorrectionHolm:
		holm(ps, adjusted)
		applied = fmt.Sprintf("Holm step-down correction across %d comparisons", m)
	case domain.CorrectionFDR:
		benjaminiHochberg(ps, adjusted)
		applied = fmt.Sprintf("Benjamini-Hochberg FDR correction across %d comparisons", m)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unknown correction method %q", method))
	}

	results := make([]domain.MultipleComparisonsResult, m)
	for i, p := range ps {
		results[i] = domain.MultipleComparisonsResult{
			Method:                       method,
			OriginalPValue:               p,
			AdjustedPValue:               adjusted[i],
			IsSignificantAfterCorrection: adjusted[i] < alpha,
			Alpha:                        alpha,
			NumberOfComparisons:          m,
			CorrectionApplied:            applied,
		}
	}
	return results, nil
}

func bonferroni(p float64, m int) float64 {
	return math.Min(1, p*float64(m))
}

// rank returns the indices of ps ordered by ascending p-value, ties in input order.
func rank(ps []float64) []int {
	idx := make([]int, len(ps))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return ps[idx[a]] < ps[idx[b]] })
	return idx
}

func holm(ps, out []float64) {
	m := len(ps)
	running := 0.0
	for i, j := range rank(ps) {
		running = math.Max(running, float64(m-i)*ps[j])
		out[j] = math.Min(1, running)
	}
}

func benjaminiHochberg(ps, out []float64) {
	m := len(ps)
	order := rank(ps)
	running := 1.0
	for i := m - 1; i >= 0; i-- {
		j := order[i]
		running = math.Min(running, ps[j]*float64(m)/float64(i+1))
		out[j] = running
	}
}

func label(method domain.CorrectionMethod) string {
	switch method {
	case domain.CorrectionHolm:
		return "Holm correction"
	case domain.CorrectionFDR:
		return "Benjamini-Hochberg FDR correction"
	}
	return string(method)
}

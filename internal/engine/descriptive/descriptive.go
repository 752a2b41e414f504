// Package descriptive summarises a single sample.
package descriptive

import (
	"math"

	"github.com/montanaflynn/stats"

	domain "statcore/domain/stats"
	"statcore/internal/engine/moments"
	"statcore/internal/engine/order"
	"statcore/internal/engine/tdist"
	"statcore/internal/errors"
)

// Describe computes DescriptiveStatistics for the finite values of raw. The
// confidence interval of the mean is taken at level 1-alpha and collapses to
// the mean itself for a single observation.
func Describe(raw []float64, alpha float64) (domain.DescriptiveStatistics, error) {
	if !(alpha > 0 && alpha < 1) {
		return domain.DescriptiveStatistics{}, errors.InvalidParameter("alpha", alpha, "in (0, 1)")
	}
	sample := domain.Clean(raw)
	if len(sample) == 0 {
		return domain.DescriptiveStatistics{}, errors.InsufficientData("descriptive statistics", 0, 1)
	}

	m := moments.Compute(sample)
	sorted := order.Sorted(sample)

	median, err := order.Median(sorted)
	if err != nil {
		return domain.DescriptiveStatistics{}, err
	}
	q1, q3, iqr, err := order.Quartiles(sorted)
	if err != nil {
		return domain.DescriptiveStatistics{}, err
	}
	min, err := stats.Min(sorted)
	if err != nil {
		return domain.DescriptiveStatistics{}, errors.Wrap(err, "minimum")
	}
	max, err := stats.Max(sorted)
	if err != nil {
		return domain.DescriptiveStatistics{}, errors.Wrap(err, "maximum")
	}
	skewness, kurtosis := moments.Shape(sample, m.Mean)

	se := 0.0
	ci := domain.Interval{m.Mean, m.Mean}
	if m.Count >= 2 {
		se = m.StdDev / math.Sqrt(float64(m.Count))
		margin := tdist.Critical(alpha, float64(m.Count-1)) * se
		ci = domain.Interval{m.Mean - margin, m.Mean + margin}
	}

	var cv *float64
	if m.Mean != 0 {
		v := m.StdDev / m.Mean * 100
		cv = &v
	}

	return domain.DescriptiveStatistics{
		Count:              m.Count,
		Mean:               m.Mean,
		Median:             median,
		Mode:               order.Mode(sample),
		StdDev:             m.StdDev,
		Variance:           m.Variance,
		Range:              max - min,
		Min:                min,
		Max:                max,
		Q1:                 q1,
		Q3:                 q3,
		IQR:                iqr,
		Skewness:           skewness,
		Kurtosis:           kurtosis,
		CV:                 cv,
		StandardError:      se,
		ConfidenceInterval: ci,
		ConfidenceLevel:    1 - alpha,
	}, nil
}

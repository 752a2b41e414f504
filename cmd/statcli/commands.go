package main

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	domain "statcore/domain/stats"
)

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func printTest(cmd *cobra.Command, e *env, r domain.TestResult) error {
	out := e.precision.Test(r)
	for i, a := range out.Assumptions {
		// an infinite Levene statistic has no JSON form
		if a.Statistic != nil && math.IsInf(*a.Statistic, 0) {
			out.Assumptions[i].Statistic = nil
		}
	}
	return printJSON(cmd, out)
}

func newDescribeCmd(e *env) *cobra.Command {
	var (
		file   string
		sample sampleFlags
	)

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Summarise one sample",
		Long: `Compute count, mean, median, mode, spread, quartiles, shape and a
confidence interval of the mean.

Example: statcli describe --values 2,4,4,4,5,5,7,9`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := sample.load(cmd, e, file, "sample")
			if err != nil {
				return err
			}
			res, err := e.service.Describe(values, e.alpha)
			if err != nil {
				return err
			}
			return printJSON(cmd, e.precision.Descriptive(res))
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "CSV or XLSX file with a header row")
	sample.bind(cmd, "", "observations")
	return cmd
}

func newTTestCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ttest",
		Short: "Student's t-tests",
	}
	cmd.AddCommand(newOneSampleCmd(e), newTwoSampleCmd(e), newPairedCmd(e))
	return cmd
}

func newOneSampleCmd(e *env) *cobra.Command {
	var (
		file   string
		mu0    float64
		sample sampleFlags
	)

	cmd := &cobra.Command{
		Use:   "one",
		Short: "One-sample t-test against a hypothesized mean",
		Long: `Test whether the sample mean differs from --mu.

Example: statcli ttest one --values 2,4,4,4,5,5,7,9 --mu 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := sample.load(cmd, e, file, "sample")
			if err != nil {
				return err
			}
			res, err := e.service.OneSample(values, mu0, e.alpha)
			if err != nil {
				return err
			}
			return printTest(cmd, e, res)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "CSV or XLSX file with a header row")
	cmd.Flags().Float64Var(&mu0, "mu", 0, "Hypothesized population mean")
	sample.bind(cmd, "", "observations")
	return cmd
}

func newTwoSampleCmd(e *env) *cobra.Command {
	var (
		file   string
		mode   string
		first  sampleFlags
		second sampleFlags
	)

	cmd := &cobra.Command{
		Use:   "two",
		Short: "Independent two-sample t-test",
		Long: `Compare the means of two independent samples.

--mode pooled assumes equal variances, welch does not, and auto chooses from
Levene's test. The default comes from STATCORE_TWO_SAMPLE_MODE (welch).

Example: statcli ttest two --values 2,1,3,4 --values2 6,5,7,9 --mode pooled`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := first.load(cmd, e, file, "first sample")
			if err != nil {
				return err
			}
			b, err := second.load(cmd, e, file, "second sample")
			if err != nil {
				return err
			}
			res, err := e.service.TwoSample(a, b, e.alpha, mode)
			if err != nil {
				return err
			}
			return printTest(cmd, e, res)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "CSV or XLSX file with a header row")
	cmd.Flags().StringVar(&mode, "mode", "", "pooled|welch|auto")
	first.bind(cmd, "", "the first sample")
	second.bind(cmd, "2", "the second sample")
	return cmd
}

func newPairedCmd(e *env) *cobra.Command {
	var (
		file   string
		before sampleFlags
		after  sampleFlags
	)

	cmd := &cobra.Command{
		Use:   "paired",
		Short: "Paired t-test on before-after differences",
		Long: `Test whether the mean of before-after differs from zero. Pairs with a
missing side are dropped.

Example: statcli ttest paired --file trial.csv --column before --column2 after`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := before.load(cmd, e, file, "before")
			if err != nil {
				return err
			}
			a, err := after.load(cmd, e, file, "after")
			if err != nil {
				return err
			}
			res, err := e.service.Paired(b, a, e.alpha)
			if err != nil {
				return err
			}
			return printTest(cmd, e, res)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "CSV or XLSX file with a header row")
	before.bind(cmd, "", "before values")
	after.bind(cmd, "2", "after values")
	return cmd
}

func newPearsonCmd(e *env) *cobra.Command {
	var (
		file string
		x, y sampleFlags
	)

	cmd := &cobra.Command{
		Use:   "pearson",
		Short: "Pearson correlation with Fisher-Z interval",
		Long: `Correlate two paired variables. Pairs with a missing side are dropped.

Example: statcli pearson --values 1,2,3,4,5 --values2 2,4,5,4,5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			xs, err := x.load(cmd, e, file, "x")
			if err != nil {
				return err
			}
			ys, err := y.load(cmd, e, file, "y")
			if err != nil {
				return err
			}
			res, err := e.service.Correlate(xs, ys, e.alpha)
			if err != nil {
				return err
			}
			return printJSON(cmd, e.precision.Correlation(res))
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "CSV or XLSX file with a header row")
	x.bind(cmd, "", "x")
	y.bind(cmd, "2", "y")
	return cmd
}

func newCorrectCmd(e *env) *cobra.Command {
	var (
		method      string
		pValues     string
		comparisons int
	)

	cmd := &cobra.Command{
		Use:   "correct",
		Short: "Adjust p-values for multiple comparisons",
		Long: `Adjust a family of p-values jointly with bonferroni, holm or fdr
(Benjamini-Hochberg). With --m, a single p-value is adjusted as one of m
comparisons.

Examples:
  statcli correct --method holm --p 0.01,0.04,0.03,0.005
  statcli correct --method bonferroni --p 0.01 --m 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := parseProbabilities(pValues)
			if err != nil {
				return err
			}
			if comparisons > 0 {
				if len(ps) != 1 {
					return fmt.Errorf("--m adjusts exactly one p-value, got %d", len(ps))
				}
				res, err := e.service.Correct(ps[0], method, comparisons, e.alpha)
				if err != nil {
					return err
				}
				return printJSON(cmd, e.precision.Correction(res))
			}

			results, err := e.service.CorrectFamily(ps, method, e.alpha)
			if err != nil {
				return err
			}
			for i := range results {
				results[i] = e.precision.Correction(results[i])
			}
			return printJSON(cmd, results)
		},
	}

	cmd.Flags().StringVar(&method, "method", "", "none|bonferroni|holm|fdr (default from STATCORE_CORRECTION)")
	cmd.Flags().StringVar(&pValues, "p", "", "Comma-separated p-values")
	cmd.Flags().IntVar(&comparisons, "m", 0, "Number of comparisons for a single p-value")
	_ = cmd.MarkFlagRequired("p")
	return cmd
}

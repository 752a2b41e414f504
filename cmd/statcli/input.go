package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// sampleFlags selects one sample from an inline list or a file column
type sampleFlags struct {
	values string
	column string
}

func (f *sampleFlags) bind(cmd *cobra.Command, suffix, what string) {
	cmd.Flags().StringVar(&f.values, "values"+suffix, "", "Comma-separated "+what+" (NA or blank for missing)")
	cmd.Flags().StringVar(&f.column, "column"+suffix, "", "Column of --file holding "+what)
}

// load resolves the sample from its flags. file is shared by every sample of a command.
func (f *sampleFlags) load(cmd *cobra.Command, e *env, file, name string) ([]float64, error) {
	switch {
	case f.values != "" && f.column != "":
		return nil, fmt.Errorf("%s: use either values or a column, not both", name)
	case f.values != "":
		return parseValues(f.values)
	case f.column != "":
		if file == "" {
			return nil, fmt.Errorf("%s: --file is required with a column", name)
		}
		cols, err := e.service.LoadColumns(cmd.Context(), file, f.column)
		if err != nil {
			return nil, err
		}
		return cols[f.column], nil
	default:
		return nil, fmt.Errorf("%s: values or a column is required", name)
	}
}

// parseValues splits on commas, or on whitespace when there are none. NA,
// NaN and empty fields are kept as missing so paired inputs stay aligned.
func parseValues(s string) ([]float64, error) {
	fields := strings.Fields(s)
	if strings.Contains(s, ",") {
		fields = strings.Split(s, ",")
	}
	out := make([]float64, 0, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		switch strings.ToLower(field) {
		case "", "na", "nan", "null":
			out = append(out, math.NaN())
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", field)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseProbabilities(s string) ([]float64, error) {
	vals, err := parseValues(s)
	if err != nil {
		return nil, err
	}
	for _, v := range vals {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("p-values cannot be missing")
		}
	}
	return vals, nil
}

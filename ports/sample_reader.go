package ports

import "context"

// SampleReader loads numeric columns from a tabular file. Cells that do not
// parse as numbers come back as NaN; the engine drops them.
type SampleReader interface {
	ReadColumns(ctx context.Context, path string, columns ...string) (map[string][]float64, error)
}

package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"statcore/internal"
	"statcore/internal/errors"
)

// Reader loads numeric columns from .xlsx (first sheet) and .csv files.
type Reader struct {
	log *internal.Logger
}

// NewReader creates a reader that logs through logger.
func NewReader(logger *internal.Logger) *Reader {
	return &Reader{log: logger.With("DataReader")}
}

// ReadColumns returns the named columns of the file at path. With no columns
// every header is returned. Cells that are empty or not numeric become NaN.
func (r *Reader) ReadColumns(ctx context.Context, path string, columns ...string) (map[string][]float64, error) {
	table, err := r.ReadTable(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WithCode(errors.CodeCanceled, err)
	}

	if len(columns) == 0 {
		columns = table.Headers
	}

	out := make(map[string][]float64, len(columns))
	for _, name := range columns {
		idx := table.index(name)
		if idx < 0 {
			return nil, errors.InvalidInput(fmt.Sprintf("column %q not found in %s (have %s)",
				name, filepath.Base(path), strings.Join(table.Headers, ", ")))
		}
		values := make([]float64, len(table.Rows))
		unparsed := 0
		for i, row := range table.Rows {
			values[i] = math.NaN()
			if idx >= len(row) {
				unparsed++
				continue
			}
			if v, ok := parseCell(row[idx]); ok {
				values[i] = v
			} else {
				unparsed++
			}
		}
		if unparsed > 0 {
			r.log.Debug("column %q: %d of %d cells not numeric", name, unparsed, len(values))
		}
		out[name] = values
	}
	return out, nil
}

// ReadTable reads the header row and raw cells of path.
func (r *Reader) ReadTable(ctx context.Context, path string) (*Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.InvalidInput(fmt.Sprintf("data file not found: %s", path))
	}

	var (
		rows [][]string
		err  error
	)
	start := time.Now()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(path)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported file type %q (want .csv or .xlsx)", ext))
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WithCode(errors.CodeCanceled, err)
	}
	r.log.Debug("%s read in %.2fms (%d rows)", filepath.Base(path), float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, errors.InvalidInput("data file must have at least a header row and one data row")
	}
	return processRows(rows), nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "failed to open Excel file")
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.InvalidInput("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(errors.InvalidInput(err.Error()), "failed to read sheet %s", sheet)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "failed to open CSV file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "failed to read CSV file")
	}
	return rows, nil
}

// processRows trims headers and cells; blank trailing rows are dropped.
func processRows(rows [][]string) *Table {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := make([]string, len(row))
		blank := true
		for j, c := range row {
			cells[j] = strings.TrimSpace(c)
			if cells[j] != "" {
				blank = false
			}
		}
		if !blank {
			data = append(data, cells)
		}
	}
	return &Table{Headers: headers, Rows: data}
}

func parseCell(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

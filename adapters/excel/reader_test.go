package excel

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"statcore/internal"
	"statcore/internal/errors"
	"statcore/ports"
)

var _ ports.SampleReader = (*Reader)(nil)

func newTestReader() *Reader {
	return NewReader(internal.NewLoggerTo(os.Stderr, internal.LogLevelError))
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadColumnsCSV(t *testing.T) {
	path := writeCSV(t, "before, after ,label\n120,118,a\n125,124,b\n130,n/a,c\n,133,d\n140,139\n")

	cols, err := newTestReader().ReadColumns(context.Background(), path, "before", "after")
	require.NoError(t, err)
	require.Len(t, cols, 2)

	before, after := cols["before"], cols["after"]
	require.Len(t, before, 5)
	assert.Equal(t, []float64{120, 125, 130}, before[:3])
	assert.True(t, math.IsNaN(before[3]))
	assert.Equal(t, 140.0, before[4])
	assert.True(t, math.IsNaN(after[2]))
	assert.Equal(t, 139.0, after[4])
}

func TestReadColumnsDefaultsToAllHeaders(t *testing.T) {
	path := writeCSV(t, "x,y\n1,2\n3,4\n")

	cols, err := newTestReader().ReadColumns(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, map[string][]float64{"x": {1, 3}, "y": {2, 4}}, cols)
}

func TestReadColumnsXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"score", "group"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{2.5, "a"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{4, "b"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]interface{}{"missing", "c"}))

	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, f.SaveAs(path))

	cols, err := newTestReader().ReadColumns(context.Background(), path, "score")
	require.NoError(t, err)
	score := cols["score"]
	require.Len(t, score, 3)
	assert.Equal(t, 2.5, score[0])
	assert.Equal(t, 4.0, score[1])
	assert.True(t, math.IsNaN(score[2]))
}

func TestReadColumnsErrors(t *testing.T) {
	reader := newTestReader()
	ctx := context.Background()

	_, err := reader.ReadColumns(ctx, filepath.Join(t.TempDir(), "absent.csv"), "x")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = reader.ReadColumns(ctx, writeCSV(t, "x\n1\n"), "y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "y" not found`)

	_, err = reader.ReadColumns(ctx, writeCSV(t, "x\n"), "x")
	assert.Contains(t, err.Error(), "header row and one data row")

	txt := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x\n1\n"), 0o644))
	_, err = reader.ReadColumns(ctx, txt, "x")
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestReadColumnsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestReader().ReadColumns(ctx, writeCSV(t, "x\n1\n2\n"), "x")
	require.Error(t, err)
	assert.Equal(t, errors.CodeCanceled, errors.GetCode(err))
	assert.ErrorIs(t, err, context.Canceled)
}

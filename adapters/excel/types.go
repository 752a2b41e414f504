package excel

// Table is a header row plus raw string cells, one slice per data row
type Table struct {
	Headers []string
	Rows    [][]string
}

// index returns the position of header, or -1.
func (t *Table) index(header string) int {
	for i, h := range t.Headers {
		if h == header {
			return i
		}
	}
	return -1
}

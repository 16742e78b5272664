package core

import "fmt"

// rowStart is the spreadsheet row number of the first data row. Row 1 holds
// the column headers.
const rowStart = 2

// Row maps a column header to its cell value.
type Row map[string]string

// Lookup returns the value of column in the row. A row without the column
// breaks the input contract and yields a *ContractError.
func (r Row) Lookup(table string, rowNum int, column string) (string, error) {
	v, ok := r[column]
	if !ok {
		return "", &ContractError{Table: table, Row: rowNum, Column: column}
	}
	return v, nil
}

// Spreadsheet maps a table name to its ordered rows.
// It is never modified by validation.
type Spreadsheet map[string][]Row

// Table returns the rows of the named table, or ErrMissingTable.
func (s Spreadsheet) Table(name string) ([]Row, error) {
	rows, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingTable, name)
	}
	return rows, nil
}

// Phase identifies how far validation progressed.
type Phase string

const (
	PhaseStructural Phase = "structural"
	PhaseContent    Phase = "content"
)

// observedHeaders returns the union of keys across all rows.
func observedHeaders(rows []Row) map[string]struct{} {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for k := range row {
			seen[k] = struct{}{}
		}
	}
	return seen
}

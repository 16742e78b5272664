// Package loader turns workbook files into the spreadsheet mapping consumed
// by the validator.
//
// Every loaded row exposes every header of its sheet, so row lookups never
// miss a column that the sheet declares. Cell values are trimmed and
// normalized to NFC. Interior blank rows are kept so that row numbers match
// what the user sees in their spreadsheet program; trailing blank rows are
// dropped.
package loader

import (
	"context"
	"errors"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/JonMunkholm/sheetcheck/internal/core"
	"github.com/JonMunkholm/sheetcheck/internal/schema"
)

var (
	// ErrNotWorkbook is returned when the input cannot be opened as XLSX.
	ErrNotWorkbook = errors.New("not a workbook")

	// ErrInvalidCSV is returned when a table file fails CSV parsing.
	ErrInvalidCSV = errors.New("invalid csv")
)

// Read loads path as a CSV directory when it is one and as an XLSX workbook
// otherwise.
func Read(ctx context.Context, path string, s schema.Schema) (core.Spreadsheet, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return ReadCSVDir(ctx, path, s)
	}
	return ReadWorkbookFile(path, s)
}

// clean trims surrounding whitespace and normalizes to NFC so that visually
// identical codes compare equal.
func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// toRows converts a header record plus data records into rows. Columns with
// an empty header are ignored; a repeated header keeps its first column.
func toRows(records [][]string) []core.Row {
	if len(records) == 0 {
		return []core.Row{}
	}

	type column struct {
		name  string
		index int
	}
	var (
		columns []column
		seen    = make(map[string]struct{})
	)
	for i, h := range records[0] {
		name := clean(h)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		columns = append(columns, column{name: name, index: i})
	}

	data := records[1:]
	for len(data) > 0 && isBlank(data[len(data)-1]) {
		data = data[:len(data)-1]
	}

	rows := make([]core.Row, 0, len(data))
	for _, rec := range data {
		row := make(core.Row, len(columns))
		for _, c := range columns {
			if c.index < len(rec) {
				row[c.name] = clean(rec[c.index])
			} else {
				row[c.name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func isBlank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

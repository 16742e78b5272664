package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/sheetcheck/internal/core"
	"github.com/JonMunkholm/sheetcheck/internal/schema"
)

// ReadWorkbook loads every table of s from an XLSX stream. Sheets are matched
// to tables by name, ignoring case and surrounding whitespace. Tables without
// a sheet are omitted from the result.
func ReadWorkbook(r io.Reader, s schema.Schema) (core.Spreadsheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotWorkbook, err)
	}
	defer f.Close()

	return readSheets(f, s)
}

// ReadWorkbookFile is ReadWorkbook for a file on disk.
func ReadWorkbookFile(path string, s schema.Schema) (core.Spreadsheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrNotWorkbook, path, err)
	}
	defer f.Close()

	return readSheets(f, s)
}

func readSheets(f *excelize.File, s schema.Schema) (core.Spreadsheet, error) {
	sheets := make(map[string]string)
	for _, name := range f.GetSheetList() {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := sheets[key]; !ok {
			sheets[key] = name
		}
	}

	ss := make(core.Spreadsheet, len(s.Names()))
	for _, table := range s.Names() {
		sheet, ok := sheets[strings.ToLower(table)]
		if !ok {
			continue
		}
		records, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		ss[table] = toRows(records)
	}
	return ss, nil
}

// SheetNames lists the sheets of an XLSX stream in workbook order.
func SheetNames(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotWorkbook, err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/JonMunkholm/sheetcheck/internal/core"
	"github.com/JonMunkholm/sheetcheck/internal/schema"
)

// maxParallelFiles bounds concurrent file reads in ReadCSVDir.
const maxParallelFiles = 4

// ReadCSV parses one table from CSV. A leading byte order mark is honored and
// stripped, and invalid UTF-8 is replaced before parsing. Records may have
// differing lengths; short ones are padded with empty cells.
func ReadCSV(r io.Reader) ([]core.Row, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	return toRows(records), nil
}

// ReadCSVDir loads one "<Table>.csv" file per table of s from dir. Files are
// read concurrently. Tables without a file are omitted from the result.
func ReadCSVDir(ctx context.Context, dir string, s schema.Schema) (core.Spreadsheet, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	names := s.Names()
	results := make([][]core.Row, len(names))
	found := make([]bool, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)

	for i, table := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			path := filepath.Join(dir, table+".csv")
			f, err := os.Open(path)
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			if err != nil {
				return err
			}
			defer f.Close()

			rows, err := ReadCSV(f)
			if err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
			results[i] = rows
			found[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ss := make(core.Spreadsheet, len(names))
	for i, table := range names {
		if found[i] {
			ss[table] = results[i]
		}
	}
	return ss, nil
}

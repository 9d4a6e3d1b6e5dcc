// Package dataframe writes batch scores as a tab-delimited table that loads
// directly as an R or pandas dataframe.
package dataframe

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/okian/dscore/internal/domain/types"
)

// Column is an extra constant-valued column appended to every row.
type Column struct {
	Name  string
	Value string
}

// ParseAdditionalColumns parses "CNAME=VAL;CNAME=VAL" into columns.
// The empty string yields no columns.
func ParseAdditionalColumns(s string) ([]Column, error) {
	if s == "" {
		return nil, nil
	}
	pairs := strings.Split(s, ";")
	cols := make([]Column, 0, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q is not CNAME=VAL", ErrInvalidColumns, pair)
		}
		cols = append(cols, Column{Name: name, Value: value})
	}
	return cols, nil
}

// Header returns the column names of the table.
func Header(extra []Column) []string {
	header := append([]string{"FID"}, types.Columns()...)
	for _, c := range extra {
		header = append(header, c.Name)
	}
	return header
}

// Write writes the header and one line per row to w.
func Write(w io.Writer, rows []types.Row, extra []Column) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(Header(extra)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		rec := make([]string, 0, 1+len(types.Columns())+len(extra))
		rec = append(rec, r.FileID)
		for _, v := range r.Values() {
			rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
		}
		for _, c := range extra {
			rec = append(rec, c.Value)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %s: %w", r.FileID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile creates path and writes the table to it.
func WriteFile(path string, rows []types.Row, extra []Column) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataframe: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Write(f, rows, extra)
}

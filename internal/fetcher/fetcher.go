// Package fetcher reads waitlist export files (CSV, TSV, XLSX) into
// header-plus-rows tables for the entry builder.
package fetcher

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Table is one parsed waitlist sheet: the header row plus data rows,
// fully materialized. Fully empty rows are dropped during parsing.
type Table struct {
	Header []string
	Rows   [][]string
	Source string
}

// ReadFile parses path based on its extension.
func ReadFile(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readDelimited(path, ',')
	case ".tsv":
		return readDelimited(path, '\t')
	case ".xlsx":
		return ReadXLSX(path, "")
	default:
		return nil, eris.Errorf("fetcher: unsupported file type %q", filepath.Ext(path))
	}
}

func readDelimited(path string, delimiter rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: open file")
	}
	defer f.Close()

	table, err := ReadCSV(f, delimiter)
	if err != nil {
		return nil, err
	}
	table.Source = filepath.Base(path)
	return table, nil
}

func emptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func trimRow(cells []string) []string {
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

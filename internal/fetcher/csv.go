package fetcher

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
)

// ReadCSV parses delimited text. The first non-empty row becomes the
// header; ragged rows are tolerated because waitlist exports routinely
// drop trailing cells.
func ReadCSV(r io.Reader, delimiter rune) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	table := &Table{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "fetcher: read csv row")
		}
		record = trimRow(record)
		if emptyRow(record) {
			continue
		}
		if table.Header == nil {
			table.Header = record
			continue
		}
		table.Rows = append(table.Rows, record)
	}

	if table.Header == nil {
		return nil, eris.New("fetcher: csv file has no header row")
	}
	return table, nil
}

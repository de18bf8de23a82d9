package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVParser parses UTF-8 delimited text with quoted fields.
type CSVParser struct {
	Delimiter DelimiterStrategy
}

func (p CSVParser) Parse(path string) (*Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, unreadable(err)
	}
	return p.ParseBytes(content)
}

func (p CSVParser) ParseBytes(content []byte) (*Table, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if !utf8.Valid(content) {
		return nil, unreadable(errors.New("content is not valid UTF-8"))
	}
	strategy := p.Delimiter
	if strategy == nil {
		strategy = CountHeuristic{}
	}
	delim := strategy.Detect(content)

	r := csv.NewReader(bytes.NewReader(content))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, unreadable(err)
	}

	table := &Table{Delimiter: delim, Rows: []Row{}}
	// whitespace-only lines survive the reader as records; skip them
	for len(records) > 0 && blankRecord(records[0]) {
		records = records[1:]
	}
	if len(records) == 0 {
		return table, nil
	}

	table.Headers = make([]string, 0, len(records[0]))
	for _, h := range records[0] {
		table.Headers = append(table.Headers, cleanHeader(h))
	}
	table.Rows = buildRows(table.Headers, records[1:])
	return table, nil
}

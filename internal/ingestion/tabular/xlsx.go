package tabular

import (
	"errors"
	"io"

	"github.com/xuri/excelize/v2"
)

// XLSXParser reads the first sheet of an Office Open XML workbook. The first
// non-blank row is the header row.
type XLSXParser struct{}

func (p XLSXParser) Parse(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, unreadable(err)
	}
	defer f.Close()
	return p.fromWorkbook(f)
}

func (p XLSXParser) ParseReader(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, unreadable(err)
	}
	defer f.Close()
	return p.fromWorkbook(f)
}

func (XLSXParser) fromWorkbook(f *excelize.File) (*Table, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, unreadable(errors.New("workbook has no sheets"))
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, unreadable(err)
	}

	table := &Table{Rows: []Row{}}
	start := -1
	for i, rec := range records {
		if !blankRecord(rec) {
			start = i
			break
		}
	}
	if start < 0 {
		return table, nil
	}
	table.Headers = make([]string, 0, len(records[start]))
	for _, h := range records[start] {
		table.Headers = append(table.Headers, cleanHeader(h))
	}
	table.Rows = buildRows(table.Headers, records[start+1:])
	return table, nil
}

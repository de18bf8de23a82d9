package tabular

import (
	"encoding/csv"
	"io"
)

// WriteTemplate writes a single CSV header row of columns with no data rows.
func WriteTemplate(w io.Writer, columns []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

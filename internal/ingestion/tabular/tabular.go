package tabular

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for file extensions without a parser.
	ErrUnsupportedFormat = errors.New("unsupported tabular format")
	// ErrUnreadableFile is returned when file contents cannot be decoded or parsed.
	ErrUnreadableFile = errors.New("unreadable file")
)

// Row is one data row keyed by header. Every header of the table is present.
type Row map[string]string

// Table is the parsed form of an uploaded file.
type Table struct {
	Headers []string
	Rows    []Row
	// Delimiter is the detected field separator; zero for spreadsheets.
	Delimiter rune
}

// Parser reads one file format.
type Parser interface {
	Parse(path string) (*Table, error)
}

// Extension returns the lower-cased extension of name including the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimSpace(filepath.Ext(strings.TrimSpace(name))))
}

// ForExtension returns the parser registered for ext (".csv", ".xlsx"; case-insensitive).
func ForExtension(ext string) (Parser, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	switch ext {
	case ".csv":
		return CSVParser{Delimiter: CountHeuristic{}}, nil
	case ".xlsx":
		return XLSXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func unreadable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnreadableFile, err)
}

// buildRows maps raw records onto headers. Missing cells become "", surplus
// cells are dropped, records with only blank cells are skipped and the first
// of duplicate headers wins.
func buildRows(headers []string, records [][]string) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		if blankRecord(rec) {
			continue
		}
		row := make(Row, len(headers))
		for i, h := range headers {
			if _, seen := row[h]; seen {
				continue
			}
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func blankRecord(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func cleanHeader(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, bomString))
}

const bomString = "\uFEFF"

package tabular

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestCSVParser_CommaWithRows(t *testing.T) {
	path := writeTemp(t, "d.csv", []byte("PERIODE_DATA,NILAI\n2023,10\n2024,12\n"))
	table, err := CSVParser{Delimiter: CountHeuristic{}}.Parse(path)
	require.NoError(t, err)
	require.Equal(t, ',', table.Delimiter)
	require.Equal(t, []string{"PERIODE_DATA", "NILAI"}, table.Headers)
	require.Len(t, table.Rows, 2)
	require.Equal(t, Row{"PERIODE_DATA": "2023", "NILAI": "10"}, table.Rows[0])
	require.Equal(t, Row{"PERIODE_DATA": "2024", "NILAI": "12"}, table.Rows[1])
}

func TestCSVParser_SemicolonAndBOM(t *testing.T) {
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("PERIODE_DATA;NILAI\n2023;1,5\n")...)
	table, err := CSVParser{}.ParseBytes(content)
	require.NoError(t, err)
	require.Equal(t, ';', table.Delimiter)
	require.Equal(t, []string{"PERIODE_DATA", "NILAI"}, table.Headers)
	require.Equal(t, "1,5", table.Rows[0]["NILAI"])
}

func TestCSVParser_QuotedFieldsAndRaggedRows(t *testing.T) {
	content := []byte("A,B,C\n\"x, y\",2\n1,2,3,4\n\n")
	table, err := CSVParser{Delimiter: FixedDelimiter(',')}.ParseBytes(content)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	require.Equal(t, Row{"A": "x, y", "B": "2", "C": ""}, table.Rows[0])
	require.Equal(t, Row{"A": "1", "B": "2", "C": "3"}, table.Rows[1])
}

func TestCSVParser_HeaderOnly(t *testing.T) {
	table, err := CSVParser{}.ParseBytes([]byte("\n\"PERIODE_DATA\", NILAI\r\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"PERIODE_DATA", "NILAI"}, table.Headers)
	require.Empty(t, table.Rows)
}

func TestCSVParser_HeaderOnlyQuotedDelimiter(t *testing.T) {
	headerOnly, err := CSVParser{}.ParseBytes([]byte("\"PERIODE_DATA\",\"NILAI, RP\"\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"PERIODE_DATA", "NILAI, RP"}, headerOnly.Headers)
	require.Empty(t, headerOnly.Rows)

	withRows, err := CSVParser{}.ParseBytes([]byte("\"PERIODE_DATA\",\"NILAI, RP\"\n2023,10\n"))
	require.NoError(t, err)
	require.Equal(t, withRows.Headers, headerOnly.Headers)
	require.NoError(t, ValidateHeaders(headerOnly.Headers, NormalizeHeaders(withRows.Headers)))
}

func TestCSVParser_LeadingWhitespaceLine(t *testing.T) {
	table, err := CSVParser{Delimiter: FixedDelimiter(',')}.ParseBytes([]byte("   \nA,B\n1,2\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, table.Headers)
	require.Equal(t, []Row{{"A": "1", "B": "2"}}, table.Rows)
}

func TestCSVParser_BlankRowsSkipped(t *testing.T) {
	table, err := CSVParser{}.ParseBytes([]byte("A,B\n1,2\n,\n3,4\n"))
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	require.Equal(t, "3", table.Rows[1]["A"])
}

func TestCSVParser_InvalidUTF8(t *testing.T) {
	_, err := CSVParser{}.ParseBytes([]byte{'A', ',', 0xff, 0xfe, '\n'})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnreadableFile), "err=%v", err)
}

func TestCSVParser_MissingFile(t *testing.T) {
	_, err := CSVParser{}.Parse(filepath.Join(t.TempDir(), "nope.csv"))
	require.True(t, errors.Is(err, ErrUnreadableFile), "err=%v", err)
}

func TestForExtension(t *testing.T) {
	for _, ext := range []string{".csv", ".CSV", "csv"} {
		p, err := ForExtension(ext)
		require.NoError(t, err, ext)
		require.IsType(t, CSVParser{}, p)
	}
	p, err := ForExtension(".XLSX")
	require.NoError(t, err)
	require.IsType(t, XLSXParser{}, p)

	for _, ext := range []string{".pdf", ".xls", ""} {
		_, err := ForExtension(ext)
		require.True(t, errors.Is(err, ErrUnsupportedFormat), "ext=%q err=%v", ext, err)
	}
}

func TestExtension(t *testing.T) {
	require.Equal(t, ".csv", Extension("Data Kependudukan.CSV"))
	require.Equal(t, "", Extension("README"))
}

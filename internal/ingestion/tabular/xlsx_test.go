package tabular

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "d.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestXLSXParser_FirstSheet(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"PERIODE_DATA", "NILAI", "KET"},
		{"2023", 10, "ok"},
		{"2024", 12},
	})
	table, err := XLSXParser{}.Parse(path)
	require.NoError(t, err)
	require.Equal(t, rune(0), table.Delimiter)
	require.Equal(t, []string{"PERIODE_DATA", "NILAI", "KET"}, table.Headers)
	require.Len(t, table.Rows, 2)
	require.Equal(t, Row{"PERIODE_DATA": "2023", "NILAI": "10", "KET": "ok"}, table.Rows[0])
	require.Equal(t, "", table.Rows[1]["KET"])
}

func TestXLSXParser_NotAWorkbook(t *testing.T) {
	path := writeTemp(t, "broken.xlsx", []byte("PERIODE_DATA,NILAI\n"))
	_, err := XLSXParser{}.Parse(path)
	require.True(t, errors.Is(err, ErrUnreadableFile), "err=%v", err)
}

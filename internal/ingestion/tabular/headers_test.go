package tabular

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateHeaders_SetContainment(t *testing.T) {
	expected := []string{"PERIODE_DATA", "NILAI"}

	require.NoError(t, ValidateHeaders([]string{"PERIODE_DATA", "NILAI"}, expected))
	require.NoError(t, ValidateHeaders([]string{"NILAI", "PERIODE_DATA"}, expected), "order independent")
	require.NoError(t, ValidateHeaders([]string{"PERIODE_DATA", "NILAI", "EXTRA"}, expected), "extras tolerated")
	require.NoError(t, ValidateHeaders([]string{" periode data ", "Nilai"}, expected), "normalized")
}

func TestValidateHeaders_ListsAllMissing(t *testing.T) {
	err := ValidateHeaders([]string{"KET"}, []string{"PERIODE_DATA", "NILAI", "KET"})
	var mismatch *HeaderMismatchError
	require.True(t, errors.As(err, &mismatch))
	require.Equal(t, []string{"PERIODE_DATA", "NILAI"}, mismatch.Missing)
	require.Contains(t, err.Error(), "PERIODE_DATA, NILAI")
}

func TestProjectRow(t *testing.T) {
	headers := []string{"periode data", "Nilai", "", "NILAI"}
	row := Row{"periode data": "2023", "Nilai": "1", "": "x", "NILAI": "2"}
	got := ProjectRow(headers, row)
	require.Equal(t, map[string]string{"PERIODE_DATA": "2023", "NILAI": "1"}, got)
}

func TestWriteTemplate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf, []string{"PERIODE_DATA", "NILAI"}))
	require.Equal(t, "PERIODE_DATA,NILAI\n", buf.String())
}

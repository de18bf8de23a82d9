package tabular

import (
	"strings"

	"github.com/pusdatin/satudata-backend/internal/domain/datasets"
)

// HeaderMismatchError lists every expected column absent from an upload.
type HeaderMismatchError struct {
	Missing  []string
	Expected []string
	Received []string
}

func (e *HeaderMismatchError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

// NormalizeHeaders returns the normalized token form of each header.
func NormalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = datasets.NormalizeColumnName(h)
	}
	return out
}

// ValidateHeaders requires every expected column to be present among the
// normalized incoming headers. Order does not matter and extra headers are
// accepted. Missing names are reported in expected order.
func ValidateHeaders(incoming, expected []string) error {
	have := make(map[string]struct{}, len(incoming))
	for _, h := range NormalizeHeaders(incoming) {
		if h != "" {
			have[h] = struct{}{}
		}
	}
	var missing []string
	for _, col := range expected {
		if _, ok := have[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &HeaderMismatchError{
		Missing:  missing,
		Expected: append([]string(nil), expected...),
		Received: append([]string(nil), incoming...),
	}
}

// ProjectRow re-keys a parsed row by normalized header, keeping the first
// value for headers that normalize to the same token and dropping blank names.
func ProjectRow(headers []string, row Row) map[string]string {
	out := make(map[string]string, len(headers))
	for _, h := range headers {
		key := datasets.NormalizeColumnName(h)
		if key == "" {
			continue
		}
		if _, seen := out[key]; seen {
			continue
		}
		out[key] = row[h]
	}
	return out
}

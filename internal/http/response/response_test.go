package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	domainagg "github.com/pusdatin/satudata-backend/internal/domain/aggregates"
)

func record(t *testing.T, err error) (int, ErrorEnvelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	RespondErr(c, err)

	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

func TestRespondErrHeaderMismatchCarriesMissingColumns(t *testing.T) {
	err := domainagg.NewErrorWithMeta(domainagg.CodeHeaderMismatch, "Datasets.Ingest", "file is missing required columns",
		map[string]any{"missing": []string{"PERIODE_DATA"}})
	status, env := record(t, err)

	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.Equal(t, "header_mismatch", env.Error.Code)
	require.Equal(t, "file is missing required columns", env.Error.Message)
	require.Equal(t, []any{"PERIODE_DATA"}, env.Error.Details["missing"])
}

func TestRespondErrHidesInternalMessages(t *testing.T) {
	status, env := record(t, errors.New("pq: connection refused on 10.0.0.3"))

	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, "internal", env.Error.Code)
	require.Equal(t, "internal error", env.Error.Message)
	require.Nil(t, env.Error.Details)
}

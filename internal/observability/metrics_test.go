package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Millisecond)
	m.ObserveAggregateOperation("op", "success", time.Millisecond)
	m.IncAggregateConflict("op")
	m.IncAggregateRetry("op")
	m.ObserveIngest(1, 2, 3)
	m.IncRateLimited("/x")
	m.IncOrphan("deleted")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("nil handler status: want=%d got=%d", http.StatusServiceUnavailable, rec.Code)
	}
}

func TestMetrics_AggregateCounters(t *testing.T) {
	m := New()
	m.ObserveAggregateOperation("Datasets.Ingest", "success", 20*time.Millisecond)
	m.ObserveAggregateOperation("Datasets.Ingest", "header_mismatch", time.Millisecond)
	m.ObserveAggregateOperation("Datasets.Ingest", "header_mismatch", time.Millisecond)
	m.IncAggregateConflict("Datasets.Ingest")

	if got := promtest.ToFloat64(m.aggregateOps.WithLabelValues("Datasets.Ingest", "header_mismatch")); got != 2 {
		t.Fatalf("header_mismatch count: want=2 got=%v", got)
	}
	if got := promtest.ToFloat64(m.aggregateConflict.WithLabelValues("Datasets.Ingest")); got != 1 {
		t.Fatalf("conflicts: want=1 got=%v", got)
	}

	m.ObserveIngest(5, 3, 2048)
	if got := promtest.ToFloat64(m.ingestRows.WithLabelValues("inserted")); got != 5 {
		t.Fatalf("inserted: want=5 got=%v", got)
	}
}

func TestMetrics_HandlerExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveAPI("POST", "/api/datasets/:id/files", "201", 50*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `satudata_api_requests_total{method="POST",route="/api/datasets/:id/files",status="201"} 1`) {
		t.Fatalf("api counter missing from exposition")
	}
}

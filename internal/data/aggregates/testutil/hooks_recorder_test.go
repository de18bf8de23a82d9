package testutil

import (
	"slices"
	"testing"
	"time"

	"github.com/pusdatin/satudata-backend/internal/data/aggregates"
)

func TestHooksRecorderFiltersByOperation(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveOperation("Datasets.Submit", "success", time.Millisecond)
	h.ObserveOperation("Datasets.Upload", "header_mismatch", time.Millisecond)
	h.ObserveOperation("Datasets.Submit", "transition_not_allowed", time.Millisecond)

	if got := h.Statuses("Datasets.Submit"); !slices.Equal(got, []string{"success", "transition_not_allowed"}) {
		t.Fatalf("submit statuses: got=%v", got)
	}
	h.Reset()
	if len(h.Operations) != 0 || len(h.Statuses("Datasets.Upload")) != 0 {
		t.Fatalf("after reset: got=%+v", h.Operations)
	}
}

func TestChainHooksFansOut(t *testing.T) {
	a, b := &HooksRecorder{}, &HooksRecorder{}
	hooks := aggregates.ChainHooks(a, nil, b)
	hooks.ObserveOperation("Datasets.Create", "success", time.Millisecond)
	hooks.IncConflict("Datasets.Create")
	hooks.IncRetry("Datasets.Upload")

	for i, r := range []*HooksRecorder{a, b} {
		if len(r.Operations) != 1 || len(r.Conflicts) != 1 || len(r.Retries) != 1 {
			t.Fatalf("recorder %d: got ops=%d conflicts=%d retries=%d", i, len(r.Operations), len(r.Conflicts), len(r.Retries))
		}
	}
	if single := aggregates.ChainHooks(a); single != aggregates.Hooks(a) {
		t.Fatalf("single hook should be returned as-is")
	}
}

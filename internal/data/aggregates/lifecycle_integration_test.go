package aggregates_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/pusdatin/satudata-backend/internal/data/repos/testutil"
	domainagg "github.com/pusdatin/satudata-backend/internal/domain/aggregates"
	"github.com/pusdatin/satudata-backend/internal/domain/auth"
	"github.com/pusdatin/satudata-backend/internal/domain/datasets"
)

// actorFor returns an actor that satisfies op's role requirement on unit.
func actorFor(op datasets.Operation, unit uuid.UUID) auth.Actor {
	perm := datasets.PermissionFor(op)
	if perm.Role == auth.RolePusdatin {
		return testutil.Actor(auth.RolePusdatin, uuid.Nil)
	}
	return testutil.Actor(perm.Role, unit)
}

func TestLifecycle_SubmitTwiceIsRejected(t *testing.T) {
	h := newHarness(t, nil)
	d := h.seed(datasets.KindStructured, datasets.StatusSubmitted, "PERIODE_DATA")

	_, err := h.lifecycle.Submit(h.ctx, domainagg.TransitionInput{Actor: actorFor(datasets.OpSubmit, d.BidangID), DatasetID: d.ID})
	wantCode(t, err, domainagg.CodeTransitionNotAllowed)
	meta := domainagg.MetaOf(err)
	if meta["status"] != string(datasets.StatusSubmitted) || meta["operation"] != string(datasets.OpSubmit) {
		t.Fatalf("meta: got=%v", meta)
	}
	if got := h.reload(d.ID).Status; got != datasets.StatusSubmitted {
		t.Fatalf("status: want=%s got=%s", datasets.StatusSubmitted, got)
	}
}

func TestLifecycle_ApproveKabidOnlyFromSubmitted(t *testing.T) {
	h := newHarness(t, nil)
	d := h.seed(datasets.KindStructured, datasets.StatusDraft, "PERIODE_DATA")
	kabid := actorFor(datasets.OpApproveKabid, d.BidangID)

	_, err := h.lifecycle.ApproveKabid(h.ctx, domainagg.TransitionInput{Actor: kabid, DatasetID: d.ID})
	wantCode(t, err, domainagg.CodeTransitionNotAllowed)

	if _, err := h.lifecycle.Submit(h.ctx, domainagg.TransitionInput{Actor: actorFor(datasets.OpSubmit, d.BidangID), DatasetID: d.ID}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	res, err := h.lifecycle.ApproveKabid(h.ctx, domainagg.TransitionInput{Actor: kabid, DatasetID: d.ID})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if res.FromStatus != datasets.StatusSubmitted || res.ToStatus != datasets.StatusApprovedByKabid {
		t.Fatalf("result: got=%+v", res)
	}
	got := h.reload(d.ID)
	if got.Status != datasets.StatusApprovedByKabid || got.SubmittedAt == nil || got.ReviewedAt == nil {
		t.Fatalf("dataset: got status=%s submitted=%v reviewed=%v", got.Status, got.SubmittedAt, got.ReviewedAt)
	}
}

func TestLifecycle_ClosureOverEveryPair(t *testing.T) {
	h := newHarness(t, nil)
	for _, from := range datasets.AllStatuses {
		for _, op := range datasets.AllOperations {
			d := h.seed(datasets.KindStructured, from, "PERIODE_DATA")
			in := domainagg.TransitionInput{Actor: actorFor(op, d.BidangID), DatasetID: d.ID, Reason: "tidak lengkap"}
			res, err := h.lifecycle.Apply(h.ctx, op, in)

			want, ok := datasets.NextStatus(from, op)
			got := h.reload(d.ID).Status
			if ok {
				if err != nil || res.ToStatus != want || got != want {
					t.Fatalf("%s/%s: want=%s got=%s err=%v", from, op, want, got, err)
				}
				continue
			}
			if !domainagg.IsCode(err, domainagg.CodeTransitionNotAllowed) || got != from {
				t.Fatalf("%s/%s: want transition_not_allowed and unchanged, got code=%s status=%s", from, op, domainagg.CodeOf(err), got)
			}
		}
	}
}

func TestLifecycle_RejectRequiresReasonThenRevise(t *testing.T) {
	h := newHarness(t, nil)
	d := h.seed(datasets.KindStructured, datasets.StatusSubmitted, "PERIODE_DATA")
	kabid := actorFor(datasets.OpRejectKabid, d.BidangID)

	for _, reason := range []string{"", "   \t"} {
		_, err := h.lifecycle.RejectKabid(h.ctx, domainagg.TransitionInput{Actor: kabid, DatasetID: d.ID, Reason: reason})
		wantCode(t, err, domainagg.CodeReasonRequired)
		if got := h.reload(d.ID).Status; got != datasets.StatusSubmitted {
			t.Fatalf("status after %q: want=%s got=%s", reason, datasets.StatusSubmitted, got)
		}
	}

	if _, err := h.lifecycle.RejectKabid(h.ctx, domainagg.TransitionInput{Actor: kabid, DatasetID: d.ID, Reason: " kolom NILAI kosong "}); err != nil {
		t.Fatalf("reject: %v", err)
	}
	rejected := h.reload(d.ID)
	if rejected.Status != datasets.StatusRejectedByKabid || rejected.ReviewNote != "kolom NILAI kosong" {
		t.Fatalf("rejected: got status=%s note=%q", rejected.Status, rejected.ReviewNote)
	}

	if _, err := h.lifecycle.Revise(h.ctx, domainagg.TransitionInput{Actor: actorFor(datasets.OpRevise, d.BidangID), DatasetID: d.ID}); err != nil {
		t.Fatalf("revise: %v", err)
	}
	revised := h.reload(d.ID)
	if revised.Status != datasets.StatusDraft || revised.ReviewNote != "" {
		t.Fatalf("revised: got status=%s note=%q", revised.Status, revised.ReviewNote)
	}

	reviews, err := h.reviews.ListByDatasetID(h.dbc(), d.ID)
	if err != nil {
		t.Fatalf("reviews: %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("reviews: want=2 got=%d", len(reviews))
	}
	if reviews[0].Operation != datasets.OpRejectKabid || reviews[0].Reason != "kolom NILAI kosong" {
		t.Fatalf("first review: got=%+v", reviews[0])
	}
	if reviews[1].Operation != datasets.OpRevise || reviews[1].ToStatus != datasets.StatusDraft {
		t.Fatalf("second review: got=%+v", reviews[1])
	}
}

func TestLifecycle_WrongRoleIsForbidden(t *testing.T) {
	h := newHarness(t, nil)
	d := h.seed(datasets.KindStructured, datasets.StatusSubmitted, "PERIODE_DATA")
	otherUnit := testutil.SeedBidang(t, h.ctx, h.db, "OTHER")

	cases := []struct {
		name  string
		actor auth.Actor
	}{
		{"bidang approves", testutil.Actor(auth.RoleBidang, d.BidangID)},
		{"pusdatin approves", testutil.Actor(auth.RolePusdatin, uuid.Nil)},
		{"kabid of other unit", testutil.Actor(auth.RoleKabid, otherUnit.ID)},
	}
	for _, tc := range cases {
		_, err := h.lifecycle.ApproveKabid(h.ctx, domainagg.TransitionInput{Actor: tc.actor, DatasetID: d.ID})
		if !domainagg.IsCode(err, domainagg.CodeForbidden) {
			t.Fatalf("%s: want=forbidden got=%s (%v)", tc.name, domainagg.CodeOf(err), err)
		}
	}
	if got := h.reload(d.ID).Status; got != datasets.StatusSubmitted {
		t.Fatalf("status: want=%s got=%s", datasets.StatusSubmitted, got)
	}
}

func TestLifecycle_MissingContextAndUnknownDataset(t *testing.T) {
	h := newHarness(t, nil)
	d := h.seed(datasets.KindStructured, datasets.StatusDraft, "PERIODE_DATA")

	_, err := h.lifecycle.Submit(h.ctx, domainagg.TransitionInput{DatasetID: d.ID})
	wantCode(t, err, domainagg.CodeMissingContext)

	_, err = h.lifecycle.Submit(h.ctx, domainagg.TransitionInput{Actor: actorFor(datasets.OpSubmit, d.BidangID), DatasetID: uuid.New()})
	wantCode(t, err, domainagg.CodeDatasetNotFound)
}

func TestLifecycle_Queues(t *testing.T) {
	h := newHarness(t, nil)
	other := testutil.SeedBidang(t, h.ctx, h.db, "OTHER")

	for i := 0; i < 3; i++ {
		d := h.seed(datasets.KindStructured, datasets.StatusSubmitted, "PERIODE_DATA")
		name := fmt.Sprintf("Jumlah Penduduk %d", i)
		if err := h.datasets.UpdateFields(h.dbc(), d.ID, map[string]any{"name": name}); err != nil {
			t.Fatalf("rename: %v", err)
		}
	}
	h.seed(datasets.KindStructured, datasets.StatusDraft, "PERIODE_DATA")
	testutil.SeedDataset(t, h.ctx, h.db, other.ID, datasets.KindStructured, datasets.StatusSubmitted, "PERIODE_DATA")
	approved := testutil.SeedDataset(t, h.ctx, h.db, other.ID, datasets.KindStructured, datasets.StatusApprovedByKabid, "PERIODE_DATA")

	kabid := testutil.Actor(auth.RoleKabid, h.bidang.ID)
	page, err := h.lifecycle.ListKabidQueue(h.ctx, domainagg.QueueInput{Actor: kabid, Filter: domainagg.QueueFilter{BidangID: other.ID}})
	if err != nil {
		t.Fatalf("kabid queue: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 3 || page.Page != 1 || page.PageSize != domainagg.DefaultPageSize {
		t.Fatalf("kabid queue: want 3 items on page 1/10 got total=%d items=%d page=%d size=%d", page.Total, len(page.Items), page.Page, page.PageSize)
	}
	for _, d := range page.Items {
		if d.BidangID != h.bidang.ID || d.Status != datasets.StatusSubmitted {
			t.Fatalf("kabid queue leaked %+v", d)
		}
	}

	pusdatin := testutil.Actor(auth.RolePusdatin, uuid.Nil)
	second, err := h.lifecycle.ListKabidQueue(h.ctx, domainagg.QueueInput{
		Actor:    pusdatin,
		Filter:   domainagg.QueueFilter{BidangID: h.bidang.ID, Search: "PENDUDUK"},
		Page:     2,
		PageSize: 2,
	})
	if err != nil {
		t.Fatalf("paged queue: %v", err)
	}
	if second.Total != 3 || len(second.Items) != 1 {
		t.Fatalf("page 2: want total=3 items=1 got total=%d items=%d", second.Total, len(second.Items))
	}

	none, err := h.lifecycle.ListKabidQueue(h.ctx, domainagg.QueueInput{Actor: kabid, Filter: domainagg.QueueFilter{Search: "100%_"}})
	if err != nil {
		t.Fatalf("escaped search: %v", err)
	}
	if none.Total != 0 || none.Items == nil || len(none.Items) != 0 {
		t.Fatalf("escaped search: want empty non-nil got total=%d items=%v", none.Total, none.Items)
	}

	pq, err := h.lifecycle.ListPusdatinQueue(h.ctx, domainagg.QueueInput{Actor: pusdatin, Filter: domainagg.QueueFilter{BidangID: other.ID}, PageSize: 1000})
	if err != nil {
		t.Fatalf("pusdatin queue: %v", err)
	}
	if pq.Total != 1 || pq.Items[0].ID != approved.ID || pq.PageSize != domainagg.MaxPageSize {
		t.Fatalf("pusdatin queue: got total=%d size=%d", pq.Total, pq.PageSize)
	}

	_, err = h.lifecycle.ListKabidQueue(h.ctx, domainagg.QueueInput{Actor: testutil.Actor(auth.RoleBidang, h.bidang.ID)})
	wantCode(t, err, domainagg.CodeForbidden)
	_, err = h.lifecycle.ListPusdatinQueue(h.ctx, domainagg.QueueInput{Actor: kabid})
	wantCode(t, err, domainagg.CodeForbidden)
	_, err = h.lifecycle.ListPusdatinQueue(h.ctx, domainagg.QueueInput{})
	wantCode(t, err, domainagg.CodeMissingContext)
}

func TestLifecycle_KabidQueueRequiresUnit(t *testing.T) {
	h := newHarness(t, nil)
	other := testutil.SeedBidang(t, h.ctx, h.db, "OTHER")
	h.seed(datasets.KindStructured, datasets.StatusSubmitted, "PERIODE_DATA")
	testutil.SeedDataset(t, h.ctx, h.db, other.ID, datasets.KindStructured, datasets.StatusSubmitted, "PERIODE_DATA")

	page, err := h.lifecycle.ListKabidQueue(h.ctx, domainagg.QueueInput{Actor: testutil.Actor(auth.RoleKabid, uuid.Nil)})
	wantCode(t, err, domainagg.CodeForbidden)
	if page.Total != 0 || len(page.Items) != 0 {
		t.Fatalf("unitless kabid: want empty page got total=%d items=%d", page.Total, len(page.Items))
	}
}

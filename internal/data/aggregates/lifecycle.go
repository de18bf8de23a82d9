package aggregates

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pusdatin/satudata-backend/internal/data/repos"
	types "github.com/pusdatin/satudata-backend/internal/domain"
	domainagg "github.com/pusdatin/satudata-backend/internal/domain/aggregates"
	"github.com/pusdatin/satudata-backend/internal/domain/auth"
	"github.com/pusdatin/satudata-backend/internal/domain/datasets"
	"github.com/pusdatin/satudata-backend/internal/platform/dbctx"
)

type DatasetLifecycleAggregateDeps struct {
	Base BaseDeps

	Datasets repos.DatasetRepo
	Reviews  repos.DatasetReviewRepo
}

type datasetLifecycleAggregate struct {
	deps DatasetLifecycleAggregateDeps
}

type DatasetLifecycleAggregate interface {
	domainagg.DatasetLifecycleAggregate
	domainagg.DatasetQueueReader
}

func NewDatasetLifecycleAggregate(deps DatasetLifecycleAggregateDeps) DatasetLifecycleAggregate {
	deps.Base = deps.Base.withDefaults()
	return &datasetLifecycleAggregate{deps: deps}
}

func (a *datasetLifecycleAggregate) Contract() domainagg.Contract {
	return domainagg.DatasetLifecycleAggregateContract
}

func (a *datasetLifecycleAggregate) Submit(ctx context.Context, in domainagg.TransitionInput) (domainagg.TransitionResult, error) {
	return a.Apply(ctx, datasets.OpSubmit, in)
}

func (a *datasetLifecycleAggregate) Revise(ctx context.Context, in domainagg.TransitionInput) (domainagg.TransitionResult, error) {
	return a.Apply(ctx, datasets.OpRevise, in)
}

func (a *datasetLifecycleAggregate) ApproveKabid(ctx context.Context, in domainagg.TransitionInput) (domainagg.TransitionResult, error) {
	return a.Apply(ctx, datasets.OpApproveKabid, in)
}

func (a *datasetLifecycleAggregate) RejectKabid(ctx context.Context, in domainagg.TransitionInput) (domainagg.TransitionResult, error) {
	return a.Apply(ctx, datasets.OpRejectKabid, in)
}

func (a *datasetLifecycleAggregate) VerifyPusdatin(ctx context.Context, in domainagg.TransitionInput) (domainagg.TransitionResult, error) {
	return a.Apply(ctx, datasets.OpVerifyPusdatin, in)
}

func (a *datasetLifecycleAggregate) RejectPusdatin(ctx context.Context, in domainagg.TransitionInput) (domainagg.TransitionResult, error) {
	return a.Apply(ctx, datasets.OpRejectPusdatin, in)
}

func (a *datasetLifecycleAggregate) Apply(ctx context.Context, op datasets.Operation, in domainagg.TransitionInput) (domainagg.TransitionResult, error) {
	opName := "Datasets.Lifecycle." + string(op)
	var out domainagg.TransitionResult

	if !in.Actor.Complete() {
		return out, executeScoped(ctx, a.deps.Base, opName, in.Actor, in.Reason, nil)
	}
	if in.DatasetID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, opName, "missing dataset_id", nil)
	}
	if datasets.PermissionFor(op).Role == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, opName, fmt.Sprintf("unknown operation %q", op), nil)
	}
	reason := strings.TrimSpace(in.Reason)
	if datasets.RequiresReason(op) && reason == "" {
		return out, domainagg.NewError(domainagg.CodeReasonRequired, opName, "a rejection reason is required", nil)
	}
	if a.deps.Datasets == nil || a.deps.Reviews == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, opName, "lifecycle aggregate repos not configured", nil)
	}

	err := executeScoped(ctx, a.deps.Base, opName, in.Actor, reason, func(dbc dbctx.Context) error {
		d, err := a.deps.Datasets.LockByID(dbc, in.DatasetID)
		if err != nil {
			return err
		}
		if d == nil {
			return datasetNotFound(opName, in.DatasetID)
		}

		to, ok := datasets.NextStatus(d.Status, op)
		if !ok {
			return transitionNotAllowed(opName, d.Status, op)
		}
		if !datasets.PermissionFor(op).Allows(in.Actor, d) {
			return forbidden(opName, fmt.Sprintf("role %s of this unit may not %s this dataset", in.Actor.Role, op))
		}

		now := a.deps.Base.Now()
		updates := map[string]any{
			"status":     to,
			"updated_at": now,
		}
		switch op {
		case datasets.OpSubmit:
			updates["submitted_at"] = now
		case datasets.OpApproveKabid, datasets.OpVerifyPusdatin:
			updates["reviewed_at"] = now
		case datasets.OpRejectKabid, datasets.OpRejectPusdatin:
			updates["reviewed_at"] = now
			updates["review_note"] = reason
		case datasets.OpRevise:
			updates["review_note"] = ""
		}

		swapped, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, types.Dataset{}.TableName(), d.ID, []string{string(d.Status)}, updates)
		if err != nil {
			return err
		}
		if !swapped {
			return transitionNotAllowed(opName, d.Status, op)
		}

		review := &types.DatasetReview{
			DatasetID:  d.ID,
			FromStatus: d.Status,
			ToStatus:   to,
			Operation:  op,
			ActorID:    in.Actor.ID,
			ActorRole:  in.Actor.Role,
			Reason:     reason,
			CreatedAt:  now,
		}
		if err := a.deps.Reviews.Create(dbc, review); err != nil {
			return err
		}

		out = domainagg.TransitionResult{
			DatasetID:  d.ID,
			BidangID:   d.BidangID,
			Operation:  op,
			FromStatus: d.Status,
			ToStatus:   to,
			ReviewID:   review.ID,
			At:         now,
		}
		return nil
	})
	return out, err
}

func transitionNotAllowed(op string, from datasets.Status, attempted datasets.Operation) error {
	return &domainagg.Error{
		Code:    domainagg.CodeTransitionNotAllowed,
		Op:      op,
		Message: fmt.Sprintf("cannot %s a dataset in status %s", attempted, from),
		Meta: map[string]any{
			"status":    string(from),
			"operation": string(attempted),
		},
	}
}

func (a *datasetLifecycleAggregate) ListKabidQueue(ctx context.Context, in domainagg.QueueInput) (domainagg.QueuePage, error) {
	const op = "Datasets.Lifecycle.ListKabidQueue"
	if in.Actor.Complete() {
		switch in.Actor.Role {
		case auth.RoleKabid:
			if !in.Actor.HasUnit() {
				return domainagg.QueuePage{}, forbidden(op, "KABID without an organizational unit cannot read the kabid queue")
			}
			// a kabid only reviews its own unit
			in.Filter.BidangID = in.Actor.BidangID
		case auth.RolePusdatin:
		default:
			return domainagg.QueuePage{}, forbidden(op, "only KABID or PUSDATIN may read the kabid queue")
		}
	}
	return a.listQueue(ctx, op, datasets.StatusSubmitted, in)
}

func (a *datasetLifecycleAggregate) ListPusdatinQueue(ctx context.Context, in domainagg.QueueInput) (domainagg.QueuePage, error) {
	const op = "Datasets.Lifecycle.ListPusdatinQueue"
	if in.Actor.Complete() && in.Actor.Role != auth.RolePusdatin {
		return domainagg.QueuePage{}, forbidden(op, "only PUSDATIN may read the pusdatin queue")
	}
	return a.listQueue(ctx, op, datasets.StatusApprovedByKabid, in)
}

func (a *datasetLifecycleAggregate) listQueue(ctx context.Context, op string, status datasets.Status, in domainagg.QueueInput) (domainagg.QueuePage, error) {
	page, size := domainagg.ClampPage(in.Page, in.PageSize)
	out := domainagg.QueuePage{Page: page, PageSize: size, Items: []*types.Dataset{}}
	filter := repos.DatasetListFilter{
		Statuses: []types.DatasetStatus{status},
		BidangID: in.Filter.BidangID,
		Search:   in.Filter.Search,
	}
	err := executeScoped(ctx, a.deps.Base, op, in.Actor, "", func(dbc dbctx.Context) error {
		total, err := a.deps.Datasets.Count(dbc, filter)
		if err != nil {
			return err
		}
		out.Total = total
		if total == 0 {
			return nil
		}
		items, err := a.deps.Datasets.List(dbc, filter, size, (page-1)*size)
		if err != nil {
			return err
		}
		out.Items = items
		return nil
	})
	return out, err
}

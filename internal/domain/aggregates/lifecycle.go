package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pusdatin/satudata-backend/internal/domain/auth"
	"github.com/pusdatin/satudata-backend/internal/domain/datasets"
)

var DatasetLifecycleAggregateContract = Contract{
	Name:             "Datasets.LifecycleAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Lock:             LockDatasetRow,
	ActorScoped:      true,
	Notes: "Owns dataset status transitions (submit, revise, kabid approve/reject, pusdatin verify/reject) " +
		"under a dataset row lock, with one review row appended per transition.",
}

// DatasetLifecycleAggregate owns the dataset approval state machine.
//
// Write method failures return *aggregates.Error with codes:
// CodeMissingContext, CodeDatasetNotFound, CodeForbidden, CodeTransitionNotAllowed,
// CodeReasonRequired, CodeRetryable, CodeInternal.
type DatasetLifecycleAggregate interface {
	Aggregate

	Submit(ctx context.Context, in TransitionInput) (TransitionResult, error)
	Revise(ctx context.Context, in TransitionInput) (TransitionResult, error)
	ApproveKabid(ctx context.Context, in TransitionInput) (TransitionResult, error)
	RejectKabid(ctx context.Context, in TransitionInput) (TransitionResult, error)
	VerifyPusdatin(ctx context.Context, in TransitionInput) (TransitionResult, error)
	RejectPusdatin(ctx context.Context, in TransitionInput) (TransitionResult, error)

	// Apply runs any lifecycle operation; the named methods delegate to it.
	Apply(ctx context.Context, op datasets.Operation, in TransitionInput) (TransitionResult, error)
}

type TransitionInput struct {
	Actor     auth.Actor
	DatasetID uuid.UUID
	// Reason is mandatory for rejections and recorded on the review log otherwise.
	Reason string
}

type TransitionResult struct {
	DatasetID  uuid.UUID
	BidangID   uuid.UUID
	Operation  datasets.Operation
	FromStatus datasets.Status
	ToStatus   datasets.Status
	ReviewID   uuid.UUID
	At         time.Time
}

// QueueFilter narrows a review queue.
type QueueFilter struct {
	// Search is a case-insensitive substring matched against name or source.
	Search   string
	BidangID uuid.UUID
}

type QueuePage struct {
	Items    []*datasets.Dataset
	Total    int64
	Page     int
	PageSize int
}

type QueueInput struct {
	Actor    auth.Actor
	Filter   QueueFilter
	Page     int
	PageSize int
}

// DatasetQueueReader lists the review queues.
type DatasetQueueReader interface {
	ListKabidQueue(ctx context.Context, in QueueInput) (QueuePage, error)
	ListPusdatinQueue(ctx context.Context, in QueueInput) (QueuePage, error)
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ClampPage normalizes 1-based paging: page < 1 becomes 1, a zero size
// becomes DefaultPageSize and any other size is clamped to [1, MaxPageSize].
func ClampPage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case size == 0:
		size = DefaultPageSize
	case size < 1:
		size = 1
	case size > MaxPageSize:
		size = MaxPageSize
	}
	return page, size
}

package aggregates

// WriteTxOwnership names who opens the transaction around an aggregate write.
type WriteTxOwnership string

// WriteTxOwnedByAggregate means the aggregate opens and commits its own
// actor-scoped transaction; callers never pass one in.
const WriteTxOwnedByAggregate WriteTxOwnership = "aggregate_owned"

// ReadPolicy names which reads an aggregate performs.
type ReadPolicy string

const (
	// ReadPolicyInvariantScoped limits an aggregate to the reads its guards need.
	// Listings, paging and search stay on the table repos.
	ReadPolicyInvariantScoped ReadPolicy = "invariant_scoped_reads"
)

// LockPolicy names the row lock a write takes before evaluating its guards.
type LockPolicy string

const (
	LockNone LockPolicy = "none"
	// LockDatasetRow serializes writes to one dataset with SELECT ... FOR UPDATE.
	LockDatasetRow LockPolicy = "dataset_row_for_update"
)

// Contract describes the transaction and locking rules of an aggregate.
type Contract struct {
	Name             string
	WriteTxOwnership WriteTxOwnership
	ReadPolicy       ReadPolicy
	// Lock applies to writes on an existing dataset. Creation never locks.
	Lock LockPolicy
	// ActorScoped writes carry app.user_id, app.role and app.unit_id for row-level security.
	ActorScoped bool
	Notes       string
}

// Aggregate is implemented by every dataset write boundary.
type Aggregate interface {
	Contract() Contract
}

func (c Contract) RequiresAggregateOwnedTx() bool {
	return c.WriteTxOwnership == WriteTxOwnedByAggregate
}

func (c Contract) LocksDataset() bool {
	return c.Lock == LockDatasetRow
}

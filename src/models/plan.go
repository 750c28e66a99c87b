package models

// Plan is the opaque execution plan the core consumes. Query planning and
// compilation are out of scope for the core; AffectedTables is the one
// piece of information TableLocator needs out of an arbitrary plan — every
// table the plan will read.
type Plan interface {
	AffectedTables(db *Database) []TableHandle
}

// ScalarPlan produces a single value of type T — e.g. a count or an
// aggregate.
type ScalarPlan[T any] interface {
	Plan
	Execute(ctx *ExecutionContext) (T, error)
}

// SequencePlan produces a materialisable sequence of T — the common case
// for reads, deletes, and updates alike (a delete/update plan selects the
// victim set).
type SequencePlan[T any] interface {
	Plan
	Execute(ctx *ExecutionContext) ([]T, error)
}

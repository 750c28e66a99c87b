package directors

import "relstore/src/models"

// FilterPlan is the predicate-based models.SequencePlan every query,
// delete, and update in this package builds on, standing in for the
// out-of-scope SQL WHERE-clause grammar the teacher's query_executor
// compiled: callers express the same intent directly as a Go closure
// instead of a parsed filter string.
//
// A nil KeyLookup runs Predicate over every entity in Table's primary index
// (a full scan); a non-nil KeyLookup narrows the scan to one index bucket
// first — useful when the predicate includes an equality test on an
// indexed field, turning an O(n) scan into an O(1)/O(log n) lookup plus a
// residual filter.
type FilterPlan[T any] struct {
	Table     models.TableHandle
	Index     models.IndexHandle // nil means Table.PrimaryIndex()
	KeyLookup *models.EntityKey  // nil means scan every entity in Index
	Predicate func(T) bool
}

// NewFilterPlan builds a full-table-scan plan: every entity in table's
// primary index for which predicate holds.
func NewFilterPlan[T any](table models.TableHandle, predicate func(T) bool) *FilterPlan[T] {
	return &FilterPlan[T]{Table: table, Predicate: predicate}
}

// NewKeyedFilterPlan builds a plan that only scans the bucket ix holds
// under key, then applies predicate to that (typically much smaller) set.
func NewKeyedFilterPlan[T any](table models.TableHandle, ix models.IndexHandle, key models.EntityKey, predicate func(T) bool) *FilterPlan[T] {
	return &FilterPlan[T]{Table: table, Index: ix, KeyLookup: &key, Predicate: predicate}
}

// AffectedTables implements models.Plan.
func (p *FilterPlan[T]) AffectedTables(db *models.Database) []models.TableHandle {
	return []models.TableHandle{p.Table}
}

// Execute implements models.SequencePlan.
func (p *FilterPlan[T]) Execute(ctx *models.ExecutionContext) ([]T, error) {
	ix := p.Index
	if ix == nil {
		ix = p.Table.PrimaryIndex()
	}

	var candidates []any
	if p.KeyLookup != nil {
		candidates = ix.Lookup(*p.KeyLookup)
	} else {
		candidates = ix.All()
	}

	var out []T
	for _, c := range candidates {
		typed, ok := c.(T)
		if !ok {
			continue
		}
		if p.Predicate == nil || p.Predicate(typed) {
			out = append(out, typed)
		}
	}
	return out, nil
}

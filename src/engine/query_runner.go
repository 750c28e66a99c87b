package engine

import (
	"reflect"

	"relstore/src/models"
)

// QueryScalar (C8, QueryRunner — scalar overload) acquires read locks on
// every table plan declares, executes it, releases the locks, and returns
// the value. Read locks are scope-bound to the drain: they are released
// here, not at transaction end.
func QueryScalar[T any](ctx *models.ExecutionContext, plan models.ScalarPlan[T]) (T, error) {
	tables := plan.AffectedTables(ctx.Database)
	planner := NewLockPlanner(ctx.Database)

	for _, t := range tables {
		if err := planner.AcquireRead(ctx, t); err != nil {
			var zero T
			return zero, err
		}
	}
	defer func() {
		for _, t := range tables {
			planner.ReleaseRead(ctx, t)
		}
	}()

	return plan.Execute(ctx)
}

// Query (C8, QueryRunner — sequence overload) acquires read locks, drains
// plan into a materialised slice, optionally clones each element, releases
// the locks, and returns the slice. The caller sees a stable snapshot;
// read locks are held only for the drain.
//
// tablesToLock, when non-nil, overrides the tables to take read locks on —
// mutation paths use this to lock the base table themselves with a write
// lock and have Query only take read locks on the remaining join tables.
// clone=false is for internal callers (the mutation paths) who are about to
// take a write lock and mutate the same live references; doubling the
// clone would be wasted work.
func Query[T any](ctx *models.ExecutionContext, plan models.SequencePlan[T], tablesToLock []models.TableHandle, clone bool) ([]T, error) {
	tables := tablesToLock
	if tables == nil {
		tables = plan.AffectedTables(ctx.Database)
	}
	planner := NewLockPlanner(ctx.Database)

	for _, t := range tables {
		if err := planner.AcquireRead(ctx, t); err != nil {
			return nil, err
		}
	}
	defer func() {
		for _, t := range tables {
			planner.ReleaseRead(ctx, t)
		}
	}()

	results, err := plan.Execute(ctx)
	if err != nil {
		return nil, err
	}
	if !clone || len(results) == 0 {
		return results, nil
	}
	if !ctx.Database.IsEntityType(any(results[0])) {
		return results, nil
	}

	cloned := make([]T, len(results))
	for i, r := range results {
		src := any(r)
		table, lookupErr := resolveTable(ctx.Database, reflect.TypeOf(src))
		if lookupErr != nil {
			cloned[i] = r
			continue
		}
		dst := newZeroLike(src)
		table.Cloner().Clone(dst, src)
		cloned[i] = dst.(T)
	}
	return cloned, nil
}

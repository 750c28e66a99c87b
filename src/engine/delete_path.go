package engine

import (
	"fmt"
	"reflect"

	"relstore/src/models"
)

// T is the stored entity pointer type (e.g. *Customer) — the same type
// plan.Execute produces and FilterPlan's candidates already hold, since
// entities live in the indexes as pointers. reflect.TypeOf(zero) on a
// nil-valued T still reports T's concrete pointer type, because the
// interface value created from a typed nil pointer carries real type
// information even though its value is nil.
//
// ExecuteDelete (C10, DeletePath) removes the rows plan selects, and every
// row transitively reachable through a CascadedDeletion relation. Rows
// reachable only through a non-cascading relation block the delete with
// ErrForeignKeyViolation instead.
//
// The base table's write lock is acquired before the victim set is
// materialised — deliberately, so no row can be inserted into or deleted
// from the base table between selection and deletion. Cascaded tables'
// write locks are acquired after the victim set is materialised; the set of
// cascaded tables itself comes from the schema alone, not from the victims.
func ExecuteDelete[T any](ctx *models.ExecutionContext, plan models.SequencePlan[T]) ([]T, error) {
	var zero T
	baseTable, err := resolveTable(ctx.Database, reflect.TypeOf(zero))
	if err != nil {
		return nil, err
	}

	planner := NewLockPlanner(ctx.Database)

	if err := planner.AcquireWrite(ctx, baseTable); err != nil {
		return nil, err
	}
	defer planner.ReleaseWrite(ctx, baseTable)

	victims, err := Query(ctx, plan, except(plan.AffectedTables(ctx.Database), baseTable), false)
	if err != nil {
		return nil, err
	}

	cascaded := GetCascadedTables(ctx.Database, baseTable)
	for _, t := range cascaded {
		if err := planner.AcquireWrite(ctx, t); err != nil {
			return nil, err
		}
	}
	defer func() {
		for _, t := range cascaded {
			planner.ReleaseWrite(ctx, t)
		}
	}()

	allTables := append([]models.TableHandle{baseTable}, cascaded...)
	group := FindRelations(ctx.Database, flatIndexes(allTables), true, false)
	if err := planner.LockRelated(ctx, group, allTables...); err != nil {
		return nil, err
	}

	log := NewAtomicLogScope(scopeLogger(ctx.Database))
	defer log.Close()

	for _, v := range victims {
		if err := deletePrimitive(ctx, baseTable, v, log); err != nil {
			return nil, err
		}
	}

	log.Complete()
	return victims, nil
}

// deletePrimitive removes entity from table's indexes, first recursing into
// every row that refers to it through a CascadedDeletion relation. A
// referrer reached through a non-cascading relation aborts the whole delete:
// the row is still referenced and cannot be removed out from under it.
func deletePrimitive(ctx *models.ExecutionContext, table models.TableHandle, entity any, log *AtomicLogScope) error {
	group := FindRelations(ctx.Database, table.Indexes(), true, false)
	for _, r := range group.Referring {
		referrers := r.GetReferringEntities(entity)
		if len(referrers) == 0 {
			continue
		}
		if !r.Options.CascadedDeletion {
			return fmt.Errorf("%w: relation %q still has referring rows", ErrForeignKeyViolation, r.Name)
		}
		for _, child := range referrers {
			if err := deletePrimitive(ctx, r.ForeignTable, child, log); err != nil {
				return err
			}
		}
	}
	return ApplyDeletes(table.Indexes(), entity, log)
}

package engine

import (
	"fmt"
	"reflect"

	"relstore/src/models"
)

// T is the stored entity pointer type (e.g. *Customer), matching
// ExecuteDelete's convention — see its doc comment for why
// reflect.TypeOf(zero) resolves correctly even though zero is nil.
//
// ExecuteUpdater (C11, UpdatePath) applies updater to every row plan
// selects. Only the indexes whose key members intersect updater.Changes()
// are touched by delete/re-insert — an update that does not move a key
// never leaves that index.
//
// Key changes are applied delete-old-key, mutate, re-insert-new-key, in
// that fixed order: re-insert before delete would risk a transient unique
// collision against the row's own old entry, and the core always wants the
// row findable under at most one identity at a time. Referring rows
// (foreign tables pointing at this one) are captured under the pre-update
// key before anything is mutated, then re-validated against the post-update
// state — a key change that orphans an existing referrer fails the whole
// update and the log scope unwinds everything done so far.
func ExecuteUpdater[T any](ctx *models.ExecutionContext, plan models.SequencePlan[T], updater models.Updater[T]) ([]T, error) {
	var zero T
	table, err := resolveTable(ctx.Database, reflect.TypeOf(zero))
	if err != nil {
		return nil, err
	}

	planner := NewLockPlanner(ctx.Database)
	if err := planner.AcquireWrite(ctx, table); err != nil {
		return nil, err
	}
	defer planner.ReleaseWrite(ctx, table)

	victims, err := Query(ctx, plan, except(plan.AffectedTables(ctx.Database), table), false)
	if err != nil {
		return nil, err
	}

	idxs := affectedIndexes(table, updater.Changes())
	group := FindRelations(ctx.Database, idxs, true, true)
	if err := planner.LockRelated(ctx, group, table); err != nil {
		return nil, err
	}

	log := NewAtomicLogScope(scopeLogger(ctx.Database))
	defer log.Close()

	for _, victim := range victims {
		referrers := FindReferringEntities([]any{any(victim)}, group.Referring)

		if len(idxs) > 0 {
			if err := ApplyDeletes(idxs, victim, log); err != nil {
				return nil, err
			}
		}

		snapshot := newZeroLike(any(victim))
		table.Cloner().Clone(snapshot, any(victim))

		if err := log.Reserve(); err != nil {
			return nil, err
		}
		updated, err := updater.Update(victim)
		if err != nil {
			return nil, err
		}
		if err := table.ApplyConstraints(ctx.Context, any(updated)); err != nil {
			return nil, fmt.Errorf("%w: table %q: %w", ErrConstraintViolation, table.Name(), err)
		}
		table.Cloner().Clone(any(victim), any(updated))
		log.WriteEntityUpdate(table.Cloner(), any(victim), snapshot)

		if len(idxs) > 0 {
			if err := ApplyInserts(idxs, victim, log); err != nil {
				return nil, err
			}
		}

		if err := ValidateFlat(group.Referred, []any{any(victim)}); err != nil {
			return nil, err
		}
		if err := ValidateByRelation(group.Referring, referrers); err != nil {
			return nil, err
		}
	}

	log.Complete()
	return victims, nil
}

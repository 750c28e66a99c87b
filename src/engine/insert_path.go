package engine

import (
	"fmt"
	"reflect"

	"relstore/src/models"
)

// ExecuteInsert (C9, InsertPath) adds entity to its table: constraints run
// first (they may fill defaults other steps depend on), then the table's own
// foreign keys are validated against the current state of the tables they
// reference, then every index receives the entity under an atomic log scope
// so a mid-way unique violation unwinds the indexes already touched.
//
// The table's write lock is held across constraint application, FK
// validation, and index maintenance — a concurrent insert or delete on a
// referenced table cannot be observed half-applied mid-validation.
func ExecuteInsert[T any](ctx *models.ExecutionContext, entity *T) error {
	table, err := resolveTable(ctx.Database, reflect.TypeOf(entity))
	if err != nil {
		return err
	}

	planner := NewLockPlanner(ctx.Database)
	if err := planner.AcquireWrite(ctx, table); err != nil {
		return err
	}
	defer planner.ReleaseWrite(ctx, table)

	if err := table.ApplyConstraints(ctx.Context, entity); err != nil {
		return fmt.Errorf("%w: table %q: %w", ErrConstraintViolation, table.Name(), err)
	}

	group := FindRelations(ctx.Database, table.Indexes(), false, true)
	if err := planner.LockRelated(ctx, group, table); err != nil {
		return err
	}
	if err := ValidateFlat(group.Referred, []any{entity}); err != nil {
		return err
	}

	log := NewAtomicLogScope(scopeLogger(ctx.Database))
	defer log.Close()

	if err := ApplyInserts(table.Indexes(), entity, log); err != nil {
		return err
	}

	log.Complete()
	return nil
}

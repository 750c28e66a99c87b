package engine

import (
	"errors"
	"fmt"

	"relstore/src/models"
)

// ApplyInserts (C6, IndexMaintainer) inserts entity into every index in
// indexes, logging each successful insert's undo immediately afterward —
// logging before the insert would let a replay target a state that never
// existed. If an index rejects the insert (unique violation) the indexes
// already inserted into are left logged so the caller's scope rollback
// undoes them. A scope at capacity fails the insert before it touches the
// index, via Reserve — the index is never mutated without a matching undo
// record.
func ApplyInserts(indexes []models.IndexHandle, entity any, log *AtomicLogScope) error {
	for _, ix := range indexes {
		if err := log.Reserve(); err != nil {
			return err
		}
		if err := ix.Insert(entity); err != nil {
			if errors.Is(err, models.ErrDuplicateKey) {
				return fmt.Errorf("%w: index %q", ErrUniqueConstraintViolation, ix.Name())
			}
			return fmt.Errorf("index %q insert: %w", ix.Name(), err)
		}
		log.WriteIndexInsert(ix, entity)
	}
	return nil
}

// ApplyDeletes (C6, IndexMaintainer) is ApplyInserts's symmetric
// counterpart: deletes entity from every index in indexes, logging each
// successful delete's undo.
func ApplyDeletes(indexes []models.IndexHandle, entity any, log *AtomicLogScope) error {
	for _, ix := range indexes {
		if err := log.Reserve(); err != nil {
			return err
		}
		if err := ix.Delete(entity); err != nil {
			return fmt.Errorf("index %q delete: %w", ix.Name(), err)
		}
		log.WriteIndexDelete(ix, entity)
	}
	return nil
}

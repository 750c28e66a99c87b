package engine

import (
	"fmt"
	"reflect"

	"relstore/src/models"
)

// resolveTable finds the table registered for the given pointer entity
// type (e.g. reflect.TypeOf((*Customer)(nil))).
func resolveTable(db *models.Database, t reflect.Type) (models.TableHandle, error) {
	table, ok := db.FindTableForType(t)
	if !ok {
		return nil, fmt.Errorf("no table registered for entity type %s", t)
	}
	return table, nil
}

// except returns the tables in tables whose name does not match any table
// in exclude.
func except(tables []models.TableHandle, exclude ...models.TableHandle) []models.TableHandle {
	skip := make(map[string]bool, len(exclude))
	for _, t := range exclude {
		skip[t.Name()] = true
	}
	out := make([]models.TableHandle, 0, len(tables))
	for _, t := range tables {
		if !skip[t.Name()] {
			out = append(out, t)
		}
	}
	return out
}

// flatIndexes concatenates every index of every table in tables.
func flatIndexes(tables []models.TableHandle) []models.IndexHandle {
	var out []models.IndexHandle
	for _, t := range tables {
		out = append(out, t.Indexes()...)
	}
	return out
}

// affectedIndexes returns the indexes of table whose key members intersect
// changedFields.
func affectedIndexes(table models.TableHandle, changedFields []string) []models.IndexHandle {
	changed := make(map[string]bool, len(changedFields))
	for _, f := range changedFields {
		changed[f] = true
	}
	var out []models.IndexHandle
	for _, ix := range table.Indexes() {
		for _, member := range ix.KeyMembers() {
			if changed[member] {
				out = append(out, ix)
				break
			}
		}
	}
	return out
}

// newZeroLike allocates a new zero-valued instance of the same concrete
// pointer type as v (v must be a non-nil pointer).
func newZeroLike(v any) any {
	t := reflect.TypeOf(v)
	return reflect.New(t.Elem()).Interface()
}

// scopeLogger adapts db.Logger to the sugaredLogger interface AtomicLogScope
// wants, returning a true nil interface when db.Logger is a nil pointer —
// assigning a nil *zap.SugaredLogger directly would produce a non-nil
// interface holding a nil pointer, and calling Warnw on it panics.
func scopeLogger(db *models.Database) sugaredLogger {
	if db.Logger == nil {
		return nil
	}
	return db.Logger
}

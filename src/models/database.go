package models

import (
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// Database is the schema-time registry of tables and relations the core
// operates over, plus the concurrency manager every lock acquisition goes
// through. It carries no query-planning or façade logic — that is the
// out-of-scope external collaborator SPEC_FULL's directors package stands
// in for.
type Database struct {
	mu          sync.RWMutex
	tables      map[string]TableHandle
	relations   []*Relation
	Concurrency ConcurrencyManager
	Logger      *zap.SugaredLogger
}

// NewDatabase creates an empty schema registry bound to the given
// concurrency manager. logger may be nil.
func NewDatabase(cm ConcurrencyManager, logger *zap.SugaredLogger) *Database {
	return &Database{
		tables:      make(map[string]TableHandle),
		Concurrency: cm,
		Logger:      logger,
	}
}

// RegisterTable adds t to the schema. Table names are unique; a second
// registration under the same name replaces the first.
func (d *Database) RegisterTable(t TableHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tables[t.Name()] = t
}

// FindTable returns the table registered under name.
func (d *Database) FindTable(name string) (TableHandle, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.tables[name]
	return t, ok
}

// FindTableForType returns the table whose EntityType matches t.
func (d *Database) FindTableForType(t reflect.Type) (TableHandle, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, tbl := range d.tables {
		if tbl.EntityType() == t {
			return tbl, true
		}
	}
	return nil, false
}

// RegisterRelation adds r to the schema's relation list.
func (d *Database) RegisterRelation(r *Relation) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.relations = append(d.relations, r)
}

// IsEntityType reports whether v's concrete type is a registered table's
// entity type.
func (d *Database) IsEntityType(v any) bool {
	if v == nil {
		return false
	}
	_, ok := d.FindTableForType(reflect.TypeOf(v))
	return ok
}

// GetReferringRelations returns every relation in which index is the
// primary side (other tables refer to it through this index).
func (d *Database) GetReferringRelations(index IndexHandle) []*Relation {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []*Relation
	for _, r := range d.relations {
		if r.PrimaryIndex == index {
			out = append(out, r)
		}
	}
	return out
}

// GetReferredRelations returns every relation in which index is the
// foreign side (it refers to another table through this index).
func (d *Database) GetReferredRelations(index IndexHandle) []*Relation {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []*Relation
	for _, r := range d.relations {
		if r.ForeignIndex == index {
			out = append(out, r)
		}
	}
	return out
}

package models

import (
	"context"
	"reflect"
)

// Constraint validates and/or fills an entity's fields before it enters a
// table — not-null checks, default-value generation, per-field validators.
// Constraints mutate the entity in place and run before any index sees it.
type Constraint interface {
	Apply(ctx context.Context, entity any) error
}

// ConstraintFunc adapts a plain function to a Constraint.
type ConstraintFunc func(ctx context.Context, entity any) error

// Apply implements Constraint.
func (f ConstraintFunc) Apply(ctx context.Context, entity any) error { return f(ctx, entity) }

// TableHandle is the type-erased contract the engine drives for a table. It
// is satisfied by *Table.
type TableHandle interface {
	Name() string
	Indexes() []IndexHandle
	PrimaryIndex() IndexHandle
	IndexByName(name string) (IndexHandle, bool)
	ApplyConstraints(ctx context.Context, entity any) error
	Cloner() Cloner
	EntityType() reflect.Type
}

// Table is an ordered collection of entities of one type plus a non-empty
// set of indexes (one declared primary), a constraint list, and — via the
// owning Database's relation registry — membership in zero or more
// relations. Tables are created once at schema time and live for the
// process; Table itself holds no entity storage, that lives inside its
// indexes (the primary index, in particular, is the table's base set).
type Table struct {
	name        string
	entityType  reflect.Type
	indexes     []*Index
	primary     *Index
	constraints []Constraint
	cloner      Cloner
}

// NewTable creates a table for the given pointer entity type (e.g.
// reflect.TypeOf((*Customer)(nil))) with the given default cloner.
func NewTable(name string, entityType reflect.Type, cloner Cloner) *Table {
	return &Table{name: name, entityType: entityType, cloner: cloner}
}

// AddIndex registers ix on the table. The first index added, or any index
// explicitly added with primary=true, becomes the table's primary index.
func (t *Table) AddIndex(ix *Index, primary bool) {
	t.indexes = append(t.indexes, ix)
	if primary || t.primary == nil {
		t.primary = ix
	}
}

// AddConstraint appends c to the table's constraint list, applied in order.
func (t *Table) AddConstraint(c Constraint) {
	t.constraints = append(t.constraints, c)
}

func (t *Table) Name() string         { return t.name }
func (t *Table) EntityType() reflect.Type { return t.entityType }
func (t *Table) Cloner() Cloner       { return t.cloner }

func (t *Table) Indexes() []IndexHandle {
	out := make([]IndexHandle, len(t.indexes))
	for i, ix := range t.indexes {
		out[i] = ix
	}
	return out
}

func (t *Table) PrimaryIndex() IndexHandle {
	if t.primary == nil {
		return nil
	}
	return t.primary
}

func (t *Table) IndexByName(name string) (IndexHandle, bool) {
	for _, ix := range t.indexes {
		if ix.Name() == name {
			return ix, true
		}
	}
	return nil, false
}

// ApplyConstraints runs every registered constraint over entity, in order,
// stopping at the first error.
func (t *Table) ApplyConstraints(ctx context.Context, entity any) error {
	for _, c := range t.constraints {
		if err := c.Apply(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

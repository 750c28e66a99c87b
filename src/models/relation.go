package models

// RelationOptions carries the per-relation behavior flags the core
// consults — currently only whether a primary-side delete cascades to the
// referring (foreign) side.
type RelationOptions struct {
	CascadedDeletion bool
}

// Relation is a directed foreign-key constraint: ForeignIndex (on
// ForeignTable) must, for every non-null entry, resolve to an entry in
// PrimaryIndex (on PrimaryTable). ForeignIndex therefore doubles as the
// secondary index the design notes call for: GetReferringEntities uses it
// to find referrers in time proportional to the referrer cardinality,
// instead of scanning the whole foreign table.
type Relation struct {
	Name         string
	ForeignTable TableHandle
	ForeignIndex IndexHandle
	PrimaryTable TableHandle
	PrimaryIndex IndexHandle
	Options      RelationOptions

	// NullCheck reports whether foreign's foreign-key value is null, in
	// which case ValidateEntity does not require it to resolve. Nil means
	// the foreign key is never null for this relation.
	NullCheck func(foreign any) bool
}

// ValidateEntity reports whether foreign's foreign key resolves to some
// entity in the primary table, or is null.
func (r *Relation) ValidateEntity(foreign any) bool {
	if r.NullCheck != nil && r.NullCheck(foreign) {
		return true
	}
	key := r.ForeignIndex.KeyOf(foreign)
	return len(r.PrimaryIndex.Lookup(key)) > 0
}

// GetReferringEntities returns every foreign-table entity currently
// pointing at primary.
func (r *Relation) GetReferringEntities(primary any) []any {
	key := r.PrimaryIndex.KeyOf(primary)
	return r.ForeignIndex.Lookup(key)
}

// RelationGroup is the (referring, referred) pair RelationIntrospector
// produces, each list deduplicated and in first-discovery order.
//
// Referring relations are ones in which the table under consideration is
// the primary side (other tables point at it, via ForeignTable).
// Referred relations are ones in which the table under consideration is
// the foreign side (it points at other tables, via PrimaryTable).
type RelationGroup struct {
	Referring []*Relation
	Referred  []*Relation
}

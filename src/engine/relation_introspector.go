package engine

import "relstore/src/models"

// FindRelations (C2, RelationIntrospector) gathers, for each index in
// indexes, every relation in which it participates as the foreign side
// (includeReferring's complement — see below) and/or primary side.
//
// Naming follows spec.md exactly: a relation is "referring" for table T
// when T is the primary side (others refer to it); it is "referred" for T
// when T is the foreign side (T refers to others). Callers pass
// includeReferring=false when they only need to check their own FKs
// (insert, update's referred side); includeReferred=false when they only
// care who points at them (delete, cascade).
//
// Each relation appears at most once per list, in first-discovery order.
func FindRelations(db *models.Database, indexes []models.IndexHandle, includeReferring, includeReferred bool) *models.RelationGroup {
	group := &models.RelationGroup{}
	seenReferring := make(map[*models.Relation]bool)
	seenReferred := make(map[*models.Relation]bool)

	for _, ix := range indexes {
		if includeReferring {
			for _, r := range db.GetReferringRelations(ix) {
				if seenReferring[r] {
					continue
				}
				seenReferring[r] = true
				group.Referring = append(group.Referring, r)
			}
		}
		if includeReferred {
			for _, r := range db.GetReferredRelations(ix) {
				if seenReferred[r] {
					continue
				}
				seenReferred[r] = true
				group.Referred = append(group.Referred, r)
			}
		}
	}

	return group
}

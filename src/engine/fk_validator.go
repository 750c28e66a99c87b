package engine

import (
	"fmt"

	"relstore/src/models"
)

// ValidateFlat (C7, ForeignKeyValidator) checks every relation against
// every entity. Empty relations short-circuits. Raises
// ErrForeignKeyViolation on the first violation found.
func ValidateFlat(relations []*models.Relation, entities []any) error {
	for _, r := range relations {
		for _, e := range entities {
			if !r.ValidateEntity(e) {
				return fmt.Errorf("%w: relation %q entity %v", ErrForeignKeyViolation, r.Name, e)
			}
		}
	}
	return nil
}

// ValidateByRelation (C7, ForeignKeyValidator) is ValidateFlat's
// bucketed form: each relation checks only the entities in its own
// bucket, built by FindReferringEntities.
func ValidateByRelation(relations []*models.Relation, byRelation map[*models.Relation][]any) error {
	for _, r := range relations {
		for _, e := range byRelation[r] {
			if !r.ValidateEntity(e) {
				return fmt.Errorf("%w: relation %q entity %v", ErrForeignKeyViolation, r.Name, e)
			}
		}
	}
	return nil
}

// FindReferringEntities returns, for each relation in relations, the set of
// foreign-table entities currently pointing at any entity in victims. The
// relation's ForeignIndex (a secondary index on the foreign key) makes this
// proportional to the referrer cardinality rather than a full table scan.
func FindReferringEntities(victims []any, relations []*models.Relation) map[*models.Relation][]any {
	out := make(map[*models.Relation][]any, len(relations))
	for _, r := range relations {
		var bucket []any
		for _, v := range victims {
			bucket = append(bucket, r.GetReferringEntities(v)...)
		}
		out[r] = bucket
	}
	return out
}

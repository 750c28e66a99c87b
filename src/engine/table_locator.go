package engine

import "relstore/src/models"

// FindAffectedTables (C1, TableLocator) inspects plan's declared sources
// and returns every table it will read. It is deterministic and pure: it
// never touches the concurrency manager or any index.
func FindAffectedTables(db *models.Database, plan models.Plan) []models.TableHandle {
	return plan.AffectedTables(db)
}

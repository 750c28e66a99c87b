package engine

import "relstore/src/models"

// GetCascadedTables (C3, CascadeCollector) computes the transitive closure
// over referring relations whose CascadedDeletion option is set, excluding
// root. It recurses on the newly discovered child table at each step (the
// corrected behaviour noted in spec.md §9 — the original source passed the
// same currentTable to its recursive call, which would stop deep chains
// from being traversed) and memoises visited tables so cyclic schemas
// still terminate.
//
// The returned order is stable — the order relations are first discovered
// during traversal — so two concurrent cascade-deletes of the same root
// request table locks in the same order.
func GetCascadedTables(db *models.Database, root models.TableHandle) []models.TableHandle {
	visited := map[string]bool{root.Name(): true}
	var order []models.TableHandle

	var visit func(t models.TableHandle)
	visit = func(t models.TableHandle) {
		group := FindRelations(db, t.Indexes(), true, false)
		for _, r := range group.Referring {
			if !r.Options.CascadedDeletion {
				continue
			}
			child := r.ForeignTable
			if visited[child.Name()] {
				continue
			}
			visited[child.Name()] = true
			order = append(order, child)
			visit(child)
		}
	}
	visit(root)

	return order
}

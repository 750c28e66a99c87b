package engine

import "relstore/src/models"

// LockPlanner (C4) orders and requests read/write/related locks from the
// database's ConcurrencyManager. Within a single command locks are
// acquired base table first, then cascaded tables in CascadeCollector
// order, then related tables in FindRelations discovery order — the core
// never releases a partially-acquired write lock on error, it relies on
// the surrounding transaction's abort to release it.
type LockPlanner struct {
	db *models.Database
}

// NewLockPlanner binds a LockPlanner to db's concurrency manager.
func NewLockPlanner(db *models.Database) *LockPlanner {
	return &LockPlanner{db: db}
}

func (p *LockPlanner) AcquireRead(ctx *models.ExecutionContext, table models.TableHandle) error {
	return p.db.Concurrency.AcquireRead(ctx.Context, ctx.Txn, table)
}

func (p *LockPlanner) ReleaseRead(ctx *models.ExecutionContext, table models.TableHandle) {
	p.db.Concurrency.ReleaseRead(ctx.Txn, table)
}

func (p *LockPlanner) AcquireWrite(ctx *models.ExecutionContext, table models.TableHandle) error {
	return p.db.Concurrency.AcquireWrite(ctx.Context, ctx.Txn, table)
}

func (p *LockPlanner) ReleaseWrite(ctx *models.ExecutionContext, table models.TableHandle) {
	p.db.Concurrency.ReleaseWrite(ctx.Txn, table)
}

func (p *LockPlanner) AcquireRelated(ctx *models.ExecutionContext, table models.TableHandle) error {
	return p.db.Concurrency.AcquireRelated(ctx.Context, ctx.Txn, table)
}

// LockRelated acquires a related lock over every table reachable from
// group's referring/referred relations (foreign table of a referring
// relation, primary table of a referred relation), deduplicated and
// excluding except.
func (p *LockPlanner) LockRelated(ctx *models.ExecutionContext, group *models.RelationGroup, except ...models.TableHandle) error {
	seen := make(map[string]bool, len(except))
	for _, t := range except {
		seen[t.Name()] = true
	}

	var targets []models.TableHandle
	add := func(t models.TableHandle) {
		if seen[t.Name()] {
			return
		}
		seen[t.Name()] = true
		targets = append(targets, t)
	}
	for _, r := range group.Referring {
		add(r.ForeignTable)
	}
	for _, r := range group.Referred {
		add(r.PrimaryTable)
	}

	for _, t := range targets {
		if err := p.AcquireRelated(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// Package concurrency implements the core's ConcurrencyManager: per-table
// read/write/related locking with a bounded wait and a waits-for cycle
// check, in the style of the buffer pool's mutex-guarded bookkeeping
// structures plus stats counters.
package concurrency

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"relstore/src/engine"
	"relstore/src/models"
)

// DefaultTimeout is used when Manager is built with a non-positive timeout.
const DefaultTimeout = 5 * time.Second

// lockKind distinguishes the three request flavours a table can hold at
// once: any number of readers, at most one writer, or any number of
// "related" holders (a write elsewhere that only needs this table to not
// change shape while it validates against it).
type lockKind int

const (
	lockRead lockKind = iota
	lockWrite
	lockRelated
)

type tableLocks struct {
	readers map[string]int // transaction ID -> hold count
	writer  string         // transaction ID holding the write lock, "" if none
	related map[string]int // transaction ID -> hold count
}

// Manager is the default ConcurrencyManager: a mutex-guarded map of
// per-table lock state, a condition variable to wake waiters on release, a
// fixed acquire timeout, and a waits-for graph checked at acquire time to
// detect deadlock before it times out.
type Manager struct {
	mu      sync.Mutex
	cond    *sync.Cond
	tables  map[string]*tableLocks
	waits   map[string]string // transaction ID -> transaction ID it is blocked on
	timeout time.Duration

	hits   uint64
	waited uint64

	logger *zap.SugaredLogger
}

// NewManager builds a Manager with the given acquire timeout (DefaultTimeout
// if timeout <= 0). logger may be nil.
func NewManager(timeout time.Duration, logger *zap.SugaredLogger) *Manager {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	m := &Manager{
		tables:  make(map[string]*tableLocks),
		waits:   make(map[string]string),
		timeout: timeout,
		logger:  logger,
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

func (m *Manager) locksFor(table models.TableHandle) *tableLocks {
	tl, ok := m.tables[table.Name()]
	if !ok {
		tl = &tableLocks{readers: make(map[string]int), related: make(map[string]int)}
		m.tables[table.Name()] = tl
	}
	return tl
}

// AcquireRead blocks until txn holds a shared read lock on table, or
// returns engine.ErrTimeout / engine.ErrDeadlock. Readers never block other
// readers; they block only a writer's acquire.
func (m *Manager) AcquireRead(ctx context.Context, txn *models.Transaction, table models.TableHandle) error {
	id := txn.ID.String()
	return m.acquire(ctx, id, table, func(tl *tableLocks) bool {
		return tl.writer == "" || tl.writer == id
	}, func(tl *tableLocks) {
		tl.readers[id]++
	}, func(tl *tableLocks) string {
		return tl.writer
	})
}

// ReleaseRead drops one hold of txn's read lock on table.
func (m *Manager) ReleaseRead(txn *models.Transaction, table models.TableHandle) {
	m.release(txn.ID.String(), table, func(tl *tableLocks, id string) {
		if tl.readers[id] > 0 {
			tl.readers[id]--
			if tl.readers[id] == 0 {
				delete(tl.readers, id)
			}
		}
	})
}

// AcquireWrite blocks until txn holds the exclusive write lock on table —
// no other transaction may hold a read, write, or related lock on it — or
// returns engine.ErrTimeout / engine.ErrDeadlock.
func (m *Manager) AcquireWrite(ctx context.Context, txn *models.Transaction, table models.TableHandle) error {
	id := txn.ID.String()
	return m.acquire(ctx, id, table, func(tl *tableLocks) bool {
		if tl.writer != "" && tl.writer != id {
			return false
		}
		for other := range tl.readers {
			if other != id {
				return false
			}
		}
		for other := range tl.related {
			if other != id {
				return false
			}
		}
		return true
	}, func(tl *tableLocks) {
		tl.writer = id
	}, func(tl *tableLocks) string {
		if tl.writer != "" {
			return tl.writer
		}
		for other := range tl.readers {
			return other
		}
		for other := range tl.related {
			return other
		}
		return ""
	})
}

// ReleaseWrite releases txn's write lock on table.
func (m *Manager) ReleaseWrite(txn *models.Transaction, table models.TableHandle) {
	m.release(txn.ID.String(), table, func(tl *tableLocks, id string) {
		if tl.writer == id {
			tl.writer = ""
		}
	})
}

// AcquireRelated blocks until txn holds a related lock on table — related
// locks coexist with readers and other related holders, but not with a
// foreign writer, so a command validating against a table cannot have that
// table's shape change underneath it mid-command.
func (m *Manager) AcquireRelated(ctx context.Context, txn *models.Transaction, table models.TableHandle) error {
	id := txn.ID.String()
	return m.acquire(ctx, id, table, func(tl *tableLocks) bool {
		return tl.writer == "" || tl.writer == id
	}, func(tl *tableLocks) {
		tl.related[id]++
	}, func(tl *tableLocks) string {
		return tl.writer
	})
}

// ReleaseRelated drops one hold of txn's related lock on table.
func (m *Manager) ReleaseRelated(txn *models.Transaction, table models.TableHandle) {
	m.release(txn.ID.String(), table, func(tl *tableLocks, id string) {
		if tl.related[id] > 0 {
			tl.related[id]--
			if tl.related[id] == 0 {
				delete(tl.related, id)
			}
		}
	})
}

// acquire is the shared wait loop: while grantable(tl) is false, it records
// a waits-for edge from id to blocker(tl), checks that edge for a cycle,
// and waits on cond (bounded by m.timeout) for a release to re-evaluate.
func (m *Manager) acquire(ctx context.Context, id string, table models.TableHandle, grantable func(*tableLocks) bool, grant func(*tableLocks), blocker func(*tableLocks) string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	deadline := time.Now().Add(m.timeout)
	tl := m.locksFor(table)

	for !grantable(tl) {
		other := blocker(tl)
		if other != "" && other != id {
			m.waits[id] = other
			if m.hasCycle(id) {
				delete(m.waits, id)
				return fmt.Errorf("%w: transaction %s on table %q", engine.ErrDeadlock, id, table.Name())
			}
		}
		m.waited++

		remaining := time.Until(deadline)
		if remaining <= 0 {
			delete(m.waits, id)
			return fmt.Errorf("%w: transaction %s on table %q", engine.ErrTimeout, id, table.Name())
		}

		if !m.waitWithTimeout(ctx, remaining) {
			delete(m.waits, id)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: transaction %s on table %q", engine.ErrTimeout, id, table.Name())
		}
		tl = m.locksFor(table)
	}

	delete(m.waits, id)
	grant(tl)
	m.hits++
	return nil
}

// waitWithTimeout waits on m.cond until woken or remaining elapses,
// returning false on timeout. m.mu must be held on entry and is held again
// on return (sync.Cond.Wait re-acquires it).
func (m *Manager) waitWithTimeout(ctx context.Context, remaining time.Duration) bool {
	woken := make(chan struct{})
	timer := time.AfterFunc(remaining, func() {
		m.mu.Lock()
		close(woken)
		m.cond.Broadcast()
		m.mu.Unlock()
	})
	defer timer.Stop()

	select {
	case <-woken:
		return false
	default:
	}
	m.cond.Wait()
	select {
	case <-woken:
		return false
	default:
		return true
	}
}

// hasCycle reports whether following m.waits from start returns to start —
// a transaction waiting, transitively, on itself.
func (m *Manager) hasCycle(start string) bool {
	current := start
	for i := 0; i < len(m.waits)+1; i++ {
		next, ok := m.waits[current]
		if !ok {
			return false
		}
		if next == start {
			return true
		}
		current = next
	}
	return true
}

func (m *Manager) release(id string, table models.TableHandle, drop func(*tableLocks, string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tl, ok := m.tables[table.Name()]
	if !ok {
		return
	}
	drop(tl, id)
	m.cond.Broadcast()
}

package engine

import (
	"relstore/src/models"
	"relstore/src/settings"
)

type logActionKind int

const (
	logIndexInsert logActionKind = iota
	logIndexDelete
	logEntityUpdate
)

type logAction struct {
	kind   logActionKind
	index  models.IndexHandle
	entity any

	cloner   models.Cloner
	live     any
	snapshot any
}

// AtomicLogScope is a per-command undo buffer (C5). It is opened at the
// start of a mutating command, accepts inverse records as the command
// applies index inserts/deletes and entity updates, and either discards
// them (Complete, then Close) or replays them in reverse order to restore
// pre-scope state (Close without a prior Complete).
//
// The scope's LIFO rollback is safe because it is opened only after the
// command holds write locks on every table it will touch — no other
// transaction can interleave a mutation of the same indexes while the
// scope is open.
type AtomicLogScope struct {
	actions   []logAction
	completed bool
	logger    sugaredLogger
	limit     int
}

// sugaredLogger is the minimal logging surface AtomicLogScope needs,
// satisfied by *zap.SugaredLogger; nil is valid and silences diagnostics.
type sugaredLogger interface {
	Warnw(msg string, keysAndValues ...any)
}

// NewAtomicLogScope opens a new undo buffer, capped at
// settings.GetSettings().MaxJournalEntries — the bounded-size undo list
// spec.md §9 calls for. logger may be nil. A non-positive cap (a zero-value
// settings.Arguments built without Default()) is treated as unbounded.
func NewAtomicLogScope(logger sugaredLogger) *AtomicLogScope {
	return &AtomicLogScope{logger: logger, limit: settings.GetSettings().MaxJournalEntries}
}

// Reserve fails with ErrJournalFull once the scope already holds
// MaxJournalEntries actions, so a runaway cascade cannot grow the undo
// buffer without bound. Callers must Reserve before performing the
// mutation a Write* call will log, not after: reserving afterward would
// let a capacity failure leave a real mutation on an index or entity with
// no inverse recorded to undo it.
func (s *AtomicLogScope) Reserve() error {
	if s.limit > 0 && len(s.actions) >= s.limit {
		return ErrJournalFull
	}
	return nil
}

// WriteIndexInsert records that entity was inserted into index; its undo
// is a delete.
func (s *AtomicLogScope) WriteIndexInsert(index models.IndexHandle, entity any) {
	s.actions = append(s.actions, logAction{kind: logIndexInsert, index: index, entity: entity})
}

// WriteIndexDelete records that entity was deleted from index; its undo is
// a re-insert.
func (s *AtomicLogScope) WriteIndexDelete(index models.IndexHandle, entity any) {
	s.actions = append(s.actions, logAction{kind: logIndexDelete, index: index, entity: entity})
}

// WriteEntityUpdate records that live's fields were overwritten in place;
// its undo copies snapshot back onto live via cloner.
func (s *AtomicLogScope) WriteEntityUpdate(cloner models.Cloner, live, snapshot any) {
	s.actions = append(s.actions, logAction{kind: logEntityUpdate, cloner: cloner, live: live, snapshot: snapshot})
}

// Complete marks the scope successful. Close becomes a no-op after this.
func (s *AtomicLogScope) Complete() {
	s.completed = true
}

// Close finishes the scope: if Complete was called, the buffer is simply
// discarded; otherwise every recorded inverse is replayed in reverse
// (LIFO) order, best-effort — a secondary failure during rollback is
// logged but never re-raised, so it cannot mask the original error. Close
// should always run via defer, immediately after the scope is opened.
func (s *AtomicLogScope) Close() {
	if s.completed {
		return
	}
	for i := len(s.actions) - 1; i >= 0; i-- {
		a := s.actions[i]
		switch a.kind {
		case logIndexInsert:
			if err := a.index.Delete(a.entity); err != nil && s.logger != nil {
				s.logger.Warnw("log scope rollback: index delete failed", "index", a.index.Name(), "error", err)
			}
		case logIndexDelete:
			if err := a.index.Insert(a.entity); err != nil && s.logger != nil {
				s.logger.Warnw("log scope rollback: index insert failed", "index", a.index.Name(), "error", err)
			}
		case logEntityUpdate:
			a.cloner.Clone(a.live, a.snapshot)
		}
	}
	s.actions = nil
}

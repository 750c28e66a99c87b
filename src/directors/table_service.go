// Package directors is the external-facing layer above the engine core: it
// owns schema registration (tables, indexes, relations) and exposes the
// predicate-plan type callers build queries, deletes, and updates from. It
// is the director in the sense the teacher's bundle/database services were
// — the thing a caller talks to instead of poking engine internals
// directly — generalised from documents-in-bundles to rows-in-tables.
package directors

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"relstore/src/models"
	"relstore/src/settings"
)

// TableService is the schema-registration facade over a models.Database: it
// creates tables and indexes, wires relations between them, and is the one
// place schema-time mistakes (duplicate table names, a relation naming an
// unregistered table) are caught with a descriptive error instead of a
// panic deep in the engine.
type TableService struct {
	db       *models.Database
	settings *settings.Arguments
	logger   *zap.SugaredLogger
	mu       sync.RWMutex
}

// NewTableService binds a TableService to db. args may be nil, in which
// case settings.GetSettings() supplies the process-wide defaults. logger
// may also be nil.
func NewTableService(db *models.Database, args *settings.Arguments, logger *zap.SugaredLogger) *TableService {
	if args == nil {
		args = settings.GetSettings()
	}
	return &TableService{db: db, settings: args, logger: logger}
}

// RegisterTable adds table to the schema. A second registration under the
// same name replaces the first — callers doing incremental schema setup at
// startup are expected to register each table exactly once.
func (s *TableService) RegisterTable(table models.TableHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings != nil && s.settings.Debug && s.logger != nil {
		s.logger.Infow("registered table", "table", table.Name())
	}
	s.db.RegisterTable(table)
}

// RegisterRelation wires a foreign-key relation into the schema, failing
// fast if either named table is not yet registered — a relation pointing
// at an unregistered table is a schema-authoring mistake, not a runtime
// condition the engine should have to handle.
func (s *TableService) RegisterRelation(r *models.Relation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.db.FindTable(r.ForeignTable.Name()); !ok {
		return fmt.Errorf("relation %q: foreign table %q not registered", r.Name, r.ForeignTable.Name())
	}
	if _, ok := s.db.FindTable(r.PrimaryTable.Name()); !ok {
		return fmt.Errorf("relation %q: primary table %q not registered", r.Name, r.PrimaryTable.Name())
	}

	if s.settings != nil && s.settings.Debug && s.logger != nil {
		s.logger.Infow("registered relation", "relation", r.Name, "foreign", r.ForeignTable.Name(), "primary", r.PrimaryTable.Name())
	}
	s.db.RegisterRelation(r)
	return nil
}

// Table looks up a registered table by name.
func (s *TableService) Table(name string) (models.TableHandle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	table, ok := s.db.FindTable(name)
	if !ok {
		return nil, fmt.Errorf("table %q not registered", name)
	}
	return table, nil
}

// TableFor looks up the table registered for entity type T, e.g.
// TableFor[Customer](s).
func TableFor[T any](s *TableService) (models.TableHandle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.db.FindTableForType(reflect.TypeOf((*T)(nil)))
	if !ok {
		return nil, fmt.Errorf("no table registered for entity type %T", *new(T))
	}
	return t, nil
}

// Database returns the underlying schema registry — the engine package's
// entry points (ExecuteInsert, ExecuteDelete, ExecuteUpdater, Query) take
// this wrapped in an ExecutionContext, not the TableService itself.
func (s *TableService) Database() *models.Database {
	return s.db
}

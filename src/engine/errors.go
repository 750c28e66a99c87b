// Package engine is the command execution core: it takes a prepared
// query/mutation plan and an ExecutionContext and drives locking, constraint
// and foreign-key validation, index maintenance, and undo, so that a
// mutating command either fully applies or leaves every index and entity it
// touched byte-equal to its pre-command state.
package engine

import "errors"

// Error taxonomy (spec §7). ConstraintViolation and ForeignKeyViolation are
// raised by the core itself; UniqueConstraintViolation is raised by an
// index and wrapped here; Timeout and Deadlock originate in the
// ConcurrencyManager and propagate unchanged except for this wrapping.
// Arbitrary errors from Updater.Update or Plan.Execute (UserError in spec
// terms) are returned as-is, triggering the same log-scope rollback.
//
// ErrJournalFull is not part of that taxonomy; it is this
// implementation's enforcement of settings.MaxJournalEntries (§9's
// "bounded-size undo list"), raised by AtomicLogScope when a command would
// grow the undo buffer past that cap.
var (
	ErrConstraintViolation       = errors.New("constraint violation")
	ErrForeignKeyViolation       = errors.New("foreign key violation")
	ErrUniqueConstraintViolation = errors.New("unique constraint violation")
	ErrTimeout                   = errors.New("lock timeout")
	ErrDeadlock                  = errors.New("deadlock detected")
	ErrJournalFull               = errors.New("undo journal full")
)

package models

import "context"

// ConcurrencyManager is the lock scheduler the core's LockPlanner drives.
// Implementations decide scheduling semantics (queueing, fairness,
// deadlock detection); the core only calls these five operations in a
// fixed order and propagates Timeout/Deadlock errors unchanged.
//
// AcquireRelated is a weaker lock than read/write: it asserts "this table
// is structurally involved in the current command" without claiming full
// read access — typically implemented as shared-intent, compatible with
// concurrent reads and other related locks, incompatible only with a
// write lock held by a different transaction.
type ConcurrencyManager interface {
	AcquireRead(ctx context.Context, txn *Transaction, table TableHandle) error
	ReleaseRead(txn *Transaction, table TableHandle)
	AcquireWrite(ctx context.Context, txn *Transaction, table TableHandle) error
	ReleaseWrite(txn *Transaction, table TableHandle)
	AcquireRelated(ctx context.Context, txn *Transaction, table TableHandle) error
}

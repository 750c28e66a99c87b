package models

import (
	"context"

	"github.com/google/uuid"
)

// Transaction is the long-lived handle a command's ExecutionContext
// carries. Transactions span multiple commands; an AtomicLogScope opened by
// a single command's engine path is strictly narrower in scope.
type Transaction struct {
	ID uuid.UUID
}

// NewTransaction allocates a fresh transaction identity.
func NewTransaction() *Transaction {
	return &Transaction{ID: uuid.New()}
}

// ExecutionContext is the call-scoped bundle of (database handle, current
// transaction, cancellation signal) every core operation receives.
type ExecutionContext struct {
	Context  context.Context
	Database *Database
	Txn      *Transaction
}

// NewExecutionContext bundles ctx, db, and txn into an ExecutionContext.
func NewExecutionContext(ctx context.Context, db *Database, txn *Transaction) *ExecutionContext {
	return &ExecutionContext{Context: ctx, Database: db, Txn: txn}
}

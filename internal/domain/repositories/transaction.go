package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager runs a function inside a database transaction. The
// progress service uses it to make the per-card upserts and the session
// insert atomic.
type TransactionManager interface {
	// ExecTx executes fn within a transaction, committing on nil and
	// rolling back on error.
	ExecTx(ctx context.Context, fn TxFn) error
}

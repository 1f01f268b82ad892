package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions.
//
// Every mutating operation on the storage tree runs inside ExecTx: the
// closure either returns nil, in which case the transaction is committed
// exactly once, or returns an error, in which case it is rolled back. This
// is the single transaction boundary of the system - repositories never
// commit on their own.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}

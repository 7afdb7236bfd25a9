package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions
type TransactionManager interface {
	// ExecTx executes a function within a transaction. The function
	// receives a context carrying the transaction; repository calls made
	// with that context join the transaction automatically.
	ExecTx(ctx context.Context, fn TxFn) error
}

package repositories

import "context"

// UnitOfWork exposes the stores taking part in one atomic operation.
// Everything written through it commits together or not at all.
type UnitOfWork interface {
	Accounts() AccountTxStore
	Transactions() TransactionTxStore
	Users() UserTxStore
}

// TxFunc is the body of a unit of work. Returning an error rolls back every write made through uow.
type TxFunc func(ctx context.Context, uow UnitOfWork) error

// TransactionManager runs units of work against the backing store.
type TransactionManager interface {
	// WithinTx runs fn inside a single store transaction. Once the transaction
	// has begun it is not interrupted by cancellation of ctx.
	WithinTx(ctx context.Context, fn TxFunc) error
}

package pgsql

import (
	portsrepo "github.com/SscSPs/banking_backoffice/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the PostgreSQL repositories around one pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool, opts TxOptions) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:       newPgxTxManager(dbPool, opts),
		AccountRepo:     newPgxAccountRepository(dbPool),
		TransactionRepo: newPgxTransactionRepository(dbPool),
		UserRepo:        newPgxUserRepository(dbPool),
	}
}

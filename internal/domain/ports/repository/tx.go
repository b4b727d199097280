package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle passed through use-case code into
// repositories. Its concrete type is infra-defined (pgx.Tx for Postgres).
// Repositories must accept a nil Tx and fall back to the pool.
type Tx interface{}

// NoTX is passed where an operation intentionally runs outside a transaction.
var NoTX Tx

// TransactionManager runs fn inside one database transaction, handing the
// transaction to fn as a Tx so repository calls inside fn share it.
// If fn returns an error the transaction is rolled back, otherwise committed.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}

// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/slavapak/ledger/internal/domain"
	"github.com/slavapak/ledger/pkg/dbpkg"
	"github.com/slavapak/ledger/pkg/errorspkg"
)

// RepoPGS facilitates account repository layer logic.
//
// Statements run on the transaction carried by the context when there is one.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    accounts (balance)
VALUES
    ($1)
RETURNING id, balance, created_at
`

// Create creates the account with the given balance and then returns it.
func (r *RepoPGS) Create(ctx context.Context, balance int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := dbpkg.Conn(ctx, r.db).QueryRowContext(ctx, createQuery, balance)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Balance,
		&a.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Int64("balance", balance).Msg("cannot create account")
		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getQuery = `
SELECT
	id, balance, created_at
FROM accounts
WHERE id = $1
`

// Get returns the account with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := dbpkg.Conn(ctx, r.db).QueryRowContext(ctx, getQuery, id)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Balance,
		&a.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			l.Info().Int64("account_id", id).Msg("account not found")
			return a, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Int64("account_id", id).Send()

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const lockForUpdateQuery = `
SELECT
	id, balance
FROM accounts
WHERE id = ANY($1)
FOR UPDATE NOWAIT
`

// LockForUpdate locks the rows of the given accounts for the rest of the
// transaction carried by ctx and returns their balances keyed by id.
//
// It never waits: when another transaction holds one of the rows it fails with
// domain.ErrTransferConflict. Accounts that do not exist are absent from the map.
func (r *RepoPGS) LockForUpdate(ctx context.Context, ids ...int64) (map[int64]int64, error) {
	l := zerolog.Ctx(ctx)

	tx, ok := dbpkg.TxFromContext(ctx)
	if !ok {
		l.Error().Err(dbpkg.ErrNoTx).Msg("LockForUpdate outside of transaction")
		return nil, dbpkg.ErrNoTx
	}

	rows, err := tx.QueryContext(ctx, lockForUpdateQuery, pq.Array(ids))
	if err != nil {
		if dbpkg.IsConflict(err) {
			l.Warn().Err(err).Ints64("account_ids", ids).Msg("accounts are locked by another transaction")
			return nil, domain.ErrTransferConflict
		}

		l.Error().Err(err).Ints64("account_ids", ids).Send()

		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	balances := make(map[int64]int64, len(ids))

	for rows.Next() {
		var id, balance int64
		if err := rows.Scan(&id, &balance); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		balances[id] = balance
	}

	if err := rows.Err(); err != nil {
		if dbpkg.IsConflict(err) {
			l.Warn().Err(err).Ints64("account_ids", ids).Msg("accounts are locked by another transaction")
			return nil, domain.ErrTransferConflict
		}

		l.Error().Err(err).Send()

		return nil, errorspkg.ErrInternal
	}

	return balances, nil
}

const setBalanceQuery = `
UPDATE accounts
SET balance = $1
WHERE id = $2
`

// SetBalance overwrites the balance of the account.
//
// The caller must hold the row lock taken by LockForUpdate in the same transaction.
func (r *RepoPGS) SetBalance(ctx context.Context, id, balance int64) error {
	l := zerolog.Ctx(ctx)

	tx, ok := dbpkg.TxFromContext(ctx)
	if !ok {
		l.Error().Err(dbpkg.ErrNoTx).Msg("SetBalance outside of transaction")
		return dbpkg.ErrNoTx
	}

	res, err := tx.ExecContext(ctx, setBalanceQuery, balance, id)
	if err != nil {
		if dbpkg.IsConflict(err) {
			l.Warn().Err(err).Int64("account_id", id).Send()
			return domain.ErrTransferConflict
		}

		l.Error().Err(err).Int64("account_id", id).Int64("balance", balance).Send()

		return errorspkg.ErrInternal
	}

	n, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if n == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

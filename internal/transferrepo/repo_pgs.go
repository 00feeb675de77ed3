// Package transferrepo manages repository layer of transfers.
package transferrepo

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

// RepoPGS facilitates transfer repository layer logic.
//
// Statements run on the transaction carried by the context when there is one.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns transfer RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    transfers (from_account_id, to_account_id, amount)
VALUES
    ($1, $2, $3)
RETURNING id, from_account_id, to_account_id, amount, created_at
`

// Create appends the transfer record and then returns it.
//
// Inside a transaction the record becomes visible only after commit.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateTransferParams) (domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	row := dbpkg.Conn(ctx, r.db).QueryRowContext(ctx, createQuery, arg.FromAccountID, arg.ToAccountID, arg.Amount)

	var t domain.Transfer
	err := row.Scan(
		&t.ID,
		&t.FromAccountID,
		&t.ToAccountID,
		&t.Amount,
		&t.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx context.Context, %+v)", arg)

		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Constraint {
			case "transfers_from_account_id_fkey", "transfers_to_account_id_fkey":
				return t, domain.ErrInvalidAccounts
			case "transfers_amount_check", "transfers_distinct_accounts_check":
				return t, domain.ErrInvalidTransfer
			}
		}

		if dbpkg.IsConflict(err) {
			return t, domain.ErrTransferConflict
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const getQuery = `
SELECT
	id, from_account_id, to_account_id, amount, created_at
FROM transfers
WHERE id = $1
`

// Get returns the transfer with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	row := dbpkg.Conn(ctx, r.db).QueryRowContext(ctx, getQuery, id)

	var t domain.Transfer

	err := row.Scan(
		&t.ID,
		&t.FromAccountID,
		&t.ToAccountID,
		&t.Amount,
		&t.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			l.Info().Int64("transfer_id", id).Msg("transfer not found")
			return t, domain.ErrTransferNotFound
		}

		l.Error().Err(err).Send()

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

// Package transferservice manages business logic layer of transfers.
package transferservice

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/slavapak/ledger/internal/domain"
	"github.com/slavapak/ledger/pkg/dbpkg"
	"github.com/slavapak/ledger/pkg/errorspkg"
)

// Repo provides data access layer interface needed by transfer service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transferservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateTransferParams) (domain.Transfer, error)
	Get(ctx context.Context, id int64) (domain.Transfer, error)
}

// AccountRepo provides account row locking needed by transfer service layer.
type AccountRepo interface {
	LockForUpdate(ctx context.Context, ids ...int64) (map[int64]int64, error)
	SetBalance(ctx context.Context, id, balance int64) error
}

// TxManager runs fn inside one database transaction carried by ctx.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service facilitates transfer service layer logic.
type Service struct {
	repo     Repo
	accounts AccountRepo
	tx       TxManager
}

// New return transfer service struct to manage transfer bussines logic.
func New(tr Repo, ar AccountRepo, tm TxManager) *Service {
	return &Service{
		repo:     tr,
		accounts: ar,
		tx:       tm,
	}
}

func validParams(arg domain.CreateTransferParams) error {
	if arg.FromAccountID <= 0 || arg.ToAccountID <= 0 {
		return domain.ErrInvalidTransfer
	}

	if arg.FromAccountID == arg.ToAccountID {
		return domain.ErrInvalidTransfer
	}

	if arg.Amount <= 0 {
		return domain.ErrInvalidTransfer
	}

	return nil
}

// Execute moves arg.Amount from arg.FromAccountID to arg.ToAccountID.
//
// Both balances and the transfer record are written in a single transaction.
// Business rejections and lock conflicts are reported through the result
// outcome; the returned error is reserved for invalid parameters and
// infrastructure failures. Execute never retries.
func (s *Service) Execute(ctx context.Context, arg domain.CreateTransferParams) (domain.TransferResult, error) {
	l := zerolog.Ctx(ctx)

	if err := validParams(arg); err != nil {
		l.Info().Err(err).Msgf("Execute(ctx, %+v)", arg)
		return domain.TransferResult{}, err
	}

	var transfer domain.Transfer

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		transfer, err = s.transfer(ctx, arg)

		return err
	})

	switch {
	case err == nil:
		l.Info().Int64("transfer_id", transfer.ID).Msg("transfer committed")
		return domain.TransferResult{Outcome: domain.OutcomeCommitted, Transfer: transfer}, nil
	case errors.Is(err, domain.ErrInvalidAccounts):
		l.Info().Err(err).Msgf("Execute(ctx, %+v)", arg)
		return domain.TransferResult{Outcome: domain.OutcomeInvalidAccounts}, nil
	case errors.Is(err, domain.ErrInsufficientFunds):
		l.Info().Err(err).Msgf("Execute(ctx, %+v)", arg)
		return domain.TransferResult{Outcome: domain.OutcomeInsufficientFunds}, nil
	case errors.Is(err, domain.ErrTransferConflict), errors.Is(err, dbpkg.ErrCommit):
		l.Warn().Err(err).Msgf("Execute(ctx, %+v)", arg)
		return domain.TransferResult{Outcome: domain.OutcomeConflict}, nil
	case errors.Is(err, domain.ErrInvalidTransfer), errors.Is(err, domain.ErrBalanceOverflow):
		l.Info().Err(err).Msgf("Execute(ctx, %+v)", arg)
		return domain.TransferResult{}, err
	case errors.Is(err, errorspkg.ErrInternal):
		l.Error().Err(err).Msgf("Execute(ctx, %+v)", arg)
		return domain.TransferResult{}, err
	}

	l.Error().Err(err).Msgf("Execute(ctx, %+v)", arg)

	return domain.TransferResult{}, fmt.Errorf("%w: %w", errorspkg.ErrInternal, err)
}

type balanceUpdate struct {
	accountID int64
	balance   int64
}

// transfer runs the statements of a transfer on the transaction carried by ctx.
func (s *Service) transfer(ctx context.Context, arg domain.CreateTransferParams) (domain.Transfer, error) {
	balances, err := s.accounts.LockForUpdate(ctx, arg.FromAccountID, arg.ToAccountID)
	if err != nil {
		return domain.Transfer{}, err
	}

	fromBalance, okFrom := balances[arg.FromAccountID]
	toBalance, okTo := balances[arg.ToAccountID]

	if !okFrom || !okTo {
		return domain.Transfer{}, domain.ErrInvalidAccounts
	}

	if fromBalance < arg.Amount {
		return domain.Transfer{}, domain.ErrInsufficientFunds
	}

	if toBalance > math.MaxInt64-arg.Amount {
		return domain.Transfer{}, domain.ErrBalanceOverflow
	}

	updates := [2]balanceUpdate{
		{accountID: arg.FromAccountID, balance: fromBalance - arg.Amount},
		{accountID: arg.ToAccountID, balance: toBalance + arg.Amount},
	}

	// To avoid deadlocks execute statements in consistent id order
	if updates[0].accountID > updates[1].accountID {
		updates[0], updates[1] = updates[1], updates[0]
	}

	for _, u := range updates {
		if err := s.accounts.SetBalance(ctx, u.accountID, u.balance); err != nil {
			return domain.Transfer{}, err
		}
	}

	return s.repo.Create(ctx, arg)
}

// Get returns the transfer record with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Transfer, error) {
	transfer, err := s.repo.Get(ctx, id)
	if err != nil {
		return transfer, err
	}

	return transfer, nil
}

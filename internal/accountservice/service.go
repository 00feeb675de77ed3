// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"

	"github.com/slavapak/ledger/internal/domain"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, balance int64) (domain.Account, error)
	Get(ctx context.Context, id int64) (domain.Account, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo           Repo
	defaultBalance int64
}

// New returns account service struct to manage account bussines logic.
//
// Every account is opened with defaultBalance.
func New(ar Repo, defaultBalance int64) *Service {
	return &Service{
		repo:           ar,
		defaultBalance: defaultBalance,
	}
}

// Create creates and returns a new account holding the default balance.
func (s *Service) Create(ctx context.Context) (domain.Account, error) {
	account, err := s.repo.Create(ctx, s.defaultBalance)
	if err != nil {
		return account, err
	}

	return account, nil
}

// Get returns account for the given account ID.
func (s *Service) Get(ctx context.Context, id int64) (domain.Account, error) {
	account, err := s.repo.Get(ctx, id)
	if err != nil {
		return account, err
	}

	return account, nil
}

package account

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrAccountNotFound = errors.New("account not found")
)

// Service handles account business logic
type Service struct {
	repo *Repository
}

// NewService creates a new account service with repository dependency injected
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// GetByID retrieves an account by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Account, error) {
	acct, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, ErrAccountNotFound
	}
	return acct, nil
}

// TopUp adds credit to an account. The amount has already been validated
// as positive at the handler.
func (s *Service) TopUp(ctx context.Context, id, amount int64) (*Account, error) {
	acct, err := s.repo.Deposit(ctx, id, amount)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, ErrAccountNotFound
	}
	return acct, nil
}

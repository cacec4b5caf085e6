package account

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles account data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new account repository with database dependency injected
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new account into the database
func (r *Repository) Create(ctx context.Context, name string, credit int64) (*Account, error) {
	query := `
		INSERT INTO accounts (name, credit)
		VALUES ($1, $2)
		RETURNING id, name, credit, status, created_at
	`

	acct := &Account{}
	err := r.db.QueryRowContext(ctx, query, name, credit).Scan(
		&acct.ID,
		&acct.Name,
		&acct.Credit,
		&acct.Status,
		&acct.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return acct, nil
}

// GetByID retrieves an account by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Account, error) {
	query := `
		SELECT id, name, credit, status, created_at
		FROM accounts
		WHERE id = $1
	`

	acct := &Account{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&acct.ID,
		&acct.Name,
		&acct.Credit,
		&acct.Status,
		&acct.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return acct, nil
}

// Deposit adds the given amount to the account's credit balance
func (r *Repository) Deposit(ctx context.Context, id, amount int64) (*Account, error) {
	query := `
		UPDATE accounts
		SET credit = credit + $2
		WHERE id = $1
		RETURNING id, name, credit, status, created_at
	`

	acct := &Account{}
	err := r.db.QueryRowContext(ctx, query, id, amount).Scan(
		&acct.ID,
		&acct.Name,
		&acct.Credit,
		&acct.Status,
		&acct.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to deposit credit: %w", err)
	}

	return acct, nil
}

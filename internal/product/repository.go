package product

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles product data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new product repository with database dependency injected
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new product into the database
func (r *Repository) Create(ctx context.Context, name string, price int64, stock int) (*Product, error) {
	query := `
		INSERT INTO products (name, price, stock)
		VALUES ($1, $2, $3)
		RETURNING id, name, price, stock, created_at
	`

	p := &Product{}
	err := r.db.QueryRowContext(ctx, query, name, price, stock).Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Stock,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return p, nil
}

// GetByID retrieves a product by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Product, error) {
	query := `
		SELECT id, name, price, stock, created_at
		FROM products
		WHERE id = $1
	`

	p := &Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Stock,
		&p.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return p, nil
}

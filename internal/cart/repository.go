package cart

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles cart data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new cart repository with database dependency injected
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListByAccount retrieves all cart lines for an account, joined with the
// product's current name, price and stock.
func (r *Repository) ListByAccount(ctx context.Context, accountID int64) ([]*Item, error) {
	query := `
		SELECT c.id, c.account_id, c.product_id, c.quantity, c.created_at,
		       p.name, p.price, p.stock
		FROM cart_items c
		JOIN products p ON c.product_id = p.id
		WHERE c.account_id = $1
		ORDER BY c.created_at
	`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item := &Item{}
		if err := rows.Scan(
			&item.ID,
			&item.AccountID,
			&item.ProductID,
			&item.Quantity,
			&item.CreatedAt,
			&item.ProductName,
			&item.UnitPrice,
			&item.Stock,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	return items, nil
}

// Add inserts a cart line, or merges the quantity into the existing line for
// the same product.
func (r *Repository) Add(ctx context.Context, accountID, productID int64, quantity int) (*Item, error) {
	query := `
		INSERT INTO cart_items (account_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, account_id, product_id, quantity, created_at
	`

	item := &Item{}
	err := r.db.QueryRowContext(ctx, query, accountID, productID, quantity).Scan(
		&item.ID,
		&item.AccountID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	return item, nil
}

// UpdateQuantity sets a line's quantity. The account scope in the WHERE
// clause keeps members from touching each other's carts.
func (r *Repository) UpdateQuantity(ctx context.Context, id, accountID int64, quantity int) (*Item, error) {
	query := `
		UPDATE cart_items
		SET quantity = $3
		WHERE id = $1 AND account_id = $2
		RETURNING id, account_id, product_id, quantity, created_at
	`

	item := &Item{}
	err := r.db.QueryRowContext(ctx, query, id, accountID, quantity).Scan(
		&item.ID,
		&item.AccountID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return item, nil
}

// Remove deletes a single cart line
func (r *Repository) Remove(ctx context.Context, id, accountID int64) error {
	query := `DELETE FROM cart_items WHERE id = $1 AND account_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, accountID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("cart item not found")
	}

	return nil
}

// Clear deletes all cart lines for an account
func (r *Repository) Clear(ctx context.Context, accountID int64) error {
	query := `DELETE FROM cart_items WHERE account_id = $1`

	if _, err := r.db.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}

package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Ensure Repository implements the service's Store
var _ Store = (*Repository)(nil)

// Repository handles order data persistence. Settlement and cancellation run
// inside single database transactions; the conditional stock/credit updates
// are what keep two concurrent settlements from both passing a check that
// only one can satisfy.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new order repository with database dependency injected
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const orderColumns = `id, order_number, account_id, status, subtotal, shipping_fee, total_amount,
	       shipping_name, shipping_phone, shipping_address, notes, cancel_reason, created_at, updated_at`

func scanOrder(row interface {
	Scan(dest ...interface{}) error
}) (*Order, error) {
	o := &Order{}
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.AccountID,
		&o.Status,
		&o.Subtotal,
		&o.ShippingFee,
		&o.TotalAmount,
		&o.ShippingName,
		&o.ShippingPhone,
		&o.ShippingAddress,
		&o.Notes,
		&o.CancelReason,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Settle performs the whole settlement as one atomic unit: order header,
// line-item snapshot, stock decrements, credit debit, cart clear. Any error
// rolls back every step.
func (r *Repository) Settle(ctx context.Context, p *SettleParams) (*Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var notes interface{}
	if p.Notes != "" {
		notes = p.Notes
	}

	insertOrder := `
		INSERT INTO orders (order_number, account_id, status, subtotal, shipping_fee, total_amount,
		                    shipping_name, shipping_phone, shipping_address, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + orderColumns

	o, err := scanOrder(tx.QueryRowContext(ctx, insertOrder,
		p.OrderNumber, p.AccountID, StatusPending, p.Subtotal, p.ShippingFee, p.TotalAmount,
		p.ShippingName, p.ShippingPhone, p.ShippingAddress, notes,
	))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, ErrOrderNumberTaken
		}
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	insertItem := `
		INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	decrementStock := `
		UPDATE products
		SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
	`

	for _, it := range p.Items {
		item := &Item{
			OrderID:     o.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
		}
		if err := tx.QueryRowContext(ctx, insertItem,
			o.ID, it.ProductID, it.ProductName, it.UnitPrice, it.Quantity,
		).Scan(&item.ID); err != nil {
			return nil, fmt.Errorf("failed to insert order item: %w", err)
		}
		o.Items = append(o.Items, item)

		result, err := tx.ExecContext(ctx, decrementStock, it.ProductID, it.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return nil, &InsufficientStockError{ProductID: it.ProductID, ProductName: it.ProductName}
		}
	}

	debitCredit := `
		UPDATE accounts
		SET credit = credit - $2
		WHERE id = $1 AND credit >= $2
	`
	result, err := tx.ExecContext(ctx, debitCredit, p.AccountID, p.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to debit credit: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrInsufficientCredit
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE account_id = $1`, p.AccountID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	return o, nil
}

// GetByID retrieves an order with its line items
func (r *Repository) GetByID(ctx context.Context, id int64) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.listItems(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return o, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func (r *Repository) listItems(ctx context.Context, q queryer, orderID int64) ([]*Item, error) {
	query := `
		SELECT id, order_id, product_id, product_name, unit_price, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := q.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item := &Item{}
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.UnitPrice,
			&item.Quantity,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	return items, nil
}

// ListByAccount retrieves an account's orders, newest first
func (r *Repository) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*Order, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM orders WHERE account_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, accountID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	return orders, total, nil
}

// ListAll retrieves all orders (admin), newest first
func (r *Repository) ListAll(ctx context.Context, limit, offset int) ([]*Order, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	return orders, total, nil
}

// UpdateStatus flips the status only if the order is still in `from`. The
// guard in the WHERE clause makes concurrent updates lose cleanly instead
// of clobbering each other.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to Status) (*Order, error) {
	query := `
		UPDATE orders
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING ` + orderColumns

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id, from, to))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	return o, nil
}

// CancelAndRefund cancels the order and reverses the settlement's side
// effects in one transaction: each line's quantity returns to stock and the
// total amount returns to the account's credit. The status guard means a
// raced second cancel refunds nothing.
func (r *Repository) CancelAndRefund(ctx context.Context, id int64, from Status, reason string) (*Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cancel := `
		UPDATE orders
		SET status = $3, cancel_reason = $4, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING ` + orderColumns

	o, err := scanOrder(tx.QueryRowContext(ctx, cancel, id, from, StatusCancelled, reason))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	items, err := r.listItems(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items

	restoreStock := `UPDATE products SET stock = stock + $2 WHERE id = $1`
	for _, item := range items {
		if _, err := tx.ExecContext(ctx, restoreStock, item.ProductID, item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to restore stock: %w", err)
		}
	}

	refund := `UPDATE accounts SET credit = credit + $2 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, refund, o.AccountID, o.TotalAmount); err != nil {
		return nil, fmt.Errorf("failed to refund credit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	return o, nil
}

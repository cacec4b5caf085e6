package order

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/rhashem/fruitmart/internal/account"
	"github.com/rhashem/fruitmart/internal/cart"
	"github.com/rhashem/fruitmart/internal/notification"
)

// Common errors
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrNotOwner           = errors.New("order belongs to another account")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountRestricted  = errors.New("account restricted")
	ErrIncompleteShipping = errors.New("incomplete shipping info")
	ErrEmptyCart          = errors.New("empty cart")
	ErrInsufficientCredit = errors.New("insufficient credit")
	ErrEmptyCancelReason  = errors.New("cancellation reason required")
	ErrInvalidTransition  = errors.New("invalid status transition")

	// ErrOrderNumberTaken reports a collision on the order_number column;
	// the settlement retries with a fresh number.
	ErrOrderNumberTaken = errors.New("order number already taken")
)

// numberAttempts bounds the order-number collision retry loop
const numberAttempts = 3

// Store is the order storage consumed by the service. Its mutating methods
// are transactional: Settle and CancelAndRefund either apply every listed
// side effect or none.
type Store interface {
	// Settle atomically creates the order with its line items, decrements
	// each product's stock (failing with InsufficientStockError if a
	// conditional decrement matches no row), debits the account's credit
	// (failing with ErrInsufficientCredit likewise), and clears the cart.
	Settle(ctx context.Context, p *SettleParams) (*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*Order, int, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Order, int, error)
	// UpdateStatus flips the status only if the order is still in the `from`
	// status, returning ErrInvalidTransition when the guard matches no row.
	UpdateStatus(ctx context.Context, id int64, from, to Status) (*Order, error)
	// CancelAndRefund atomically cancels the order (guarded by `from`),
	// restores each line's stock, and refunds the total to the account.
	CancelAndRefund(ctx context.Context, id int64, from Status, reason string) (*Order, error)
}

// AccountStore reads account standing and credit
type AccountStore interface {
	GetByID(ctx context.Context, id int64) (*account.Account, error)
}

// CartStore reads the cart lines the settlement consumes
type CartStore interface {
	ListByAccount(ctx context.Context, accountID int64) ([]*cart.Item, error)
}

// Notifier records in-app notifications for order events
type Notifier interface {
	NotifyOrderPlaced(ctx context.Context, accountID int64, orderNumber string, total int64, orderID int64) (*notification.Notification, error)
	NotifyOrderCancelled(ctx context.Context, accountID int64, orderNumber string, refund int64, orderID int64) (*notification.Notification, error)
	NotifyOrderStatus(ctx context.Context, accountID int64, orderNumber, status string, orderID int64) (*notification.Notification, error)
}

// SettleParams carries everything the settlement transaction writes
type SettleParams struct {
	AccountID       int64
	OrderNumber     string
	Subtotal        int64
	ShippingFee     int64
	TotalAmount     int64
	ShippingName    string
	ShippingPhone   string
	ShippingAddress string
	Notes           string
	Items           []SettleItem
}

// SettleItem is one cart line headed into the order snapshot
type SettleItem struct {
	ProductID   int64
	ProductName string
	UnitPrice   int64
	Quantity    int
}

// Service handles order business logic
type Service struct {
	store    Store
	accounts AccountStore
	carts    CartStore
	notifier Notifier
}

// NewService creates a new order service with its stores injected
func NewService(store Store, accounts AccountStore, carts CartStore, notifier Notifier) *Service {
	return &Service{
		store:    store,
		accounts: accounts,
		carts:    carts,
		notifier: notifier,
	}
}

// Checkout settles the account's cart into an order. Preconditions are
// checked in a fixed sequence so each failure mode is distinct: account
// standing, shipping info, cart contents, per-line stock, then credit.
// The stock and credit checks here give precise errors; the settlement
// transaction re-checks both conditionally, so two concurrent checkouts can
// never both take the last unit of stock.
func (s *Service) Checkout(ctx context.Context, accountID int64, req *CheckoutRequest) (*Order, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, ErrAccountNotFound
	}
	if !acct.IsActive() {
		return nil, ErrAccountRestricted
	}

	name := strings.TrimSpace(req.ShippingName)
	phone := strings.TrimSpace(req.ShippingPhone)
	address := strings.TrimSpace(req.ShippingAddress)
	if name == "" || phone == "" || address == "" {
		return nil, ErrIncompleteShipping
	}

	lines, err := s.carts.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	var subtotal int64
	items := make([]SettleItem, len(lines))
	for i, line := range lines {
		if line.Stock < line.Quantity {
			return nil, &InsufficientStockError{ProductID: line.ProductID, ProductName: line.ProductName}
		}
		items[i] = SettleItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
		}
		subtotal += line.LineTotal()
	}

	fee := ShippingFee(subtotal)
	total := subtotal + fee
	if acct.Credit < total {
		return nil, ErrInsufficientCredit
	}

	params := &SettleParams{
		AccountID:       accountID,
		Subtotal:        subtotal,
		ShippingFee:     fee,
		TotalAmount:     total,
		ShippingName:    name,
		ShippingPhone:   phone,
		ShippingAddress: address,
		Notes:           strings.TrimSpace(req.Notes),
		Items:           items,
	}

	var o *Order
	for attempt := 0; attempt < numberAttempts; attempt++ {
		params.OrderNumber = NewOrderNumber()
		o, err = s.store.Settle(ctx, params)
		if !errors.Is(err, ErrOrderNumberTaken) {
			break
		}
		slog.WarnContext(ctx, "order number collision, retrying", "order_number", params.OrderNumber)
	}
	if err != nil {
		return nil, err
	}

	s.notify(ctx, func() (*notification.Notification, error) {
		return s.notifier.NotifyOrderPlaced(ctx, accountID, o.OrderNumber, o.TotalAmount, o.ID)
	})

	return o, nil
}

// GetByID retrieves an order; members see only their own, admins see any
func (s *Service) GetByID(ctx context.Context, id, accountID int64, isAdmin bool) (*Order, error) {
	o, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	if !isAdmin && o.AccountID != accountID {
		return nil, ErrNotOwner
	}
	return o, nil
}

// ListByAccount retrieves the account's orders with pagination
func (s *Service) ListByAccount(ctx context.Context, accountID int64, page, perPage int) ([]*Order, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.store.ListByAccount(ctx, accountID, perPage, offset)
}

// ListAll retrieves all orders (admin) with pagination
func (s *Service) ListAll(ctx context.Context, page, perPage int) ([]*Order, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.store.ListAll(ctx, perPage, offset)
}

// Cancel lets the owner cancel a pending order. The refund mirrors the
// settlement exactly: each line's quantity goes back to stock and the total
// goes back to credit.
func (s *Service) Cancel(ctx context.Context, id, accountID int64, reason string) (*Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrEmptyCancelReason
	}

	o, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	if o.AccountID != accountID {
		return nil, ErrNotOwner
	}
	if o.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	cancelled, err := s.store.CancelAndRefund(ctx, id, StatusPending, reason)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, func() (*notification.Notification, error) {
		return s.notifier.NotifyOrderCancelled(ctx, accountID, cancelled.OrderNumber, cancelled.TotalAmount, cancelled.ID)
	})

	return cancelled, nil
}

// UpdateStatus applies an admin status change. A transition to cancelled
// requires a reason and refunds stock and credit; every other transition
// touches nothing but the status. The status machine rejects transitions
// out of terminal states, so a cancelled order can never be cancelled (and
// refunded) twice.
func (s *Service) UpdateStatus(ctx context.Context, id int64, to Status, reason string) (*Order, error) {
	if !to.IsValid() || to == StatusPending {
		return nil, ErrInvalidTransition
	}

	o, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	if !CanTransition(o.Status, to) {
		return nil, ErrInvalidTransition
	}

	var updated *Order
	if to == StatusCancelled {
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return nil, ErrEmptyCancelReason
		}
		updated, err = s.store.CancelAndRefund(ctx, id, o.Status, reason)
		if err != nil {
			return nil, err
		}
		s.notify(ctx, func() (*notification.Notification, error) {
			return s.notifier.NotifyOrderCancelled(ctx, updated.AccountID, updated.OrderNumber, updated.TotalAmount, updated.ID)
		})
		return updated, nil
	}

	updated, err = s.store.UpdateStatus(ctx, id, o.Status, to)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, func() (*notification.Notification, error) {
		return s.notifier.NotifyOrderStatus(ctx, updated.AccountID, updated.OrderNumber, string(updated.Status), updated.ID)
	})

	return updated, nil
}

// notify records a notification outside the settlement transaction; a
// failure here never fails the order operation itself.
func (s *Service) notify(ctx context.Context, fn func() (*notification.Notification, error)) {
	if s.notifier == nil {
		return
	}
	if _, err := fn(); err != nil {
		slog.ErrorContext(ctx, "failed to record order notification", "error", err)
	}
}

package order

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhashem/fruitmart/internal/account"
	"github.com/rhashem/fruitmart/internal/cart"
	"github.com/rhashem/fruitmart/internal/notification"
)

// fakeWorld is an in-memory stand-in for the injected stores. Its Settle and
// CancelAndRefund check every condition before applying any mutation, so a
// failed call leaves the world untouched, matching the transactional
// contract of the real repository.
type fakeWorld struct {
	account       *account.Account
	stock         map[int64]int
	productNames  map[int64]string
	cartLines     []*cart.Item
	orders        map[int64]*Order
	nextOrderID   int64
	notifications []string

	settleErr        error // injected storage failure
	numberCollisions int   // Settle returns ErrOrderNumberTaken this many times
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		account:      &account.Account{ID: 1, Name: "Ayla", Credit: 1000, Status: account.StatusActive},
		stock:        map[int64]int{},
		productNames: map[int64]string{},
		orders:       map[int64]*Order{},
	}
}

func (f *fakeWorld) addProduct(id int64, name string, price int64, stock int) {
	f.stock[id] = stock
	f.productNames[id] = name
}

func (f *fakeWorld) addCartLine(productID int64, price int64, quantity int) {
	f.cartLines = append(f.cartLines, &cart.Item{
		ID:          int64(len(f.cartLines) + 1),
		AccountID:   f.account.ID,
		ProductID:   productID,
		Quantity:    quantity,
		ProductName: f.productNames[productID],
		UnitPrice:   price,
		Stock:       f.stock[productID],
	})
}

// AccountStore

func (f *fakeWorld) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	if f.account == nil || f.account.ID != id {
		return nil, nil
	}
	return f.account, nil
}

// CartStore

func (f *fakeWorld) ListByAccount(ctx context.Context, accountID int64) ([]*cart.Item, error) {
	if accountID != f.account.ID {
		return nil, nil
	}
	return f.cartLines, nil
}

// Store

func (f *fakeWorld) Settle(ctx context.Context, p *SettleParams) (*Order, error) {
	if f.settleErr != nil {
		return nil, f.settleErr
	}
	if f.numberCollisions > 0 {
		f.numberCollisions--
		return nil, ErrOrderNumberTaken
	}

	// check-then-apply, like the real transaction
	for _, it := range p.Items {
		if f.stock[it.ProductID] < it.Quantity {
			return nil, &InsufficientStockError{ProductID: it.ProductID, ProductName: it.ProductName}
		}
	}
	if f.account.Credit < p.TotalAmount {
		return nil, ErrInsufficientCredit
	}

	f.nextOrderID++
	o := &Order{
		ID:              f.nextOrderID,
		OrderNumber:     p.OrderNumber,
		AccountID:       p.AccountID,
		Status:          StatusPending,
		Subtotal:        p.Subtotal,
		ShippingFee:     p.ShippingFee,
		TotalAmount:     p.TotalAmount,
		ShippingName:    p.ShippingName,
		ShippingPhone:   p.ShippingPhone,
		ShippingAddress: p.ShippingAddress,
	}
	for i, it := range p.Items {
		o.Items = append(o.Items, &Item{
			ID:          int64(i + 1),
			OrderID:     o.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
		})
		f.stock[it.ProductID] -= it.Quantity
	}
	f.account.Credit -= p.TotalAmount
	f.cartLines = nil
	f.orders[o.ID] = o

	return o, nil
}

func (f *fakeWorld) GetOrder(ctx context.Context, id int64) (*Order, error) {
	return f.orders[id], nil
}

func (f *fakeWorld) ListOrdersByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*Order, int, error) {
	var out []*Order
	for _, o := range f.orders {
		if o.AccountID == accountID {
			out = append(out, o)
		}
	}
	return out, len(out), nil
}

func (f *fakeWorld) ListAllOrders(ctx context.Context, limit, offset int) ([]*Order, int, error) {
	var out []*Order
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, len(out), nil
}

func (f *fakeWorld) UpdateOrderStatus(ctx context.Context, id int64, from, to Status) (*Order, error) {
	o := f.orders[id]
	if o == nil || o.Status != from {
		return nil, ErrInvalidTransition
	}
	o.Status = to
	return o, nil
}

func (f *fakeWorld) CancelAndRefund(ctx context.Context, id int64, from Status, reason string) (*Order, error) {
	o := f.orders[id]
	if o == nil || o.Status != from {
		return nil, ErrInvalidTransition
	}
	o.Status = StatusCancelled
	o.CancelReason = &reason
	for _, item := range o.Items {
		f.stock[item.ProductID] += item.Quantity
	}
	f.account.Credit += o.TotalAmount
	return o, nil
}

// Notifier

func (f *fakeWorld) NotifyOrderPlaced(ctx context.Context, accountID int64, orderNumber string, total int64, orderID int64) (*notification.Notification, error) {
	f.notifications = append(f.notifications, "placed:"+orderNumber)
	return &notification.Notification{}, nil
}

func (f *fakeWorld) NotifyOrderCancelled(ctx context.Context, accountID int64, orderNumber string, refund int64, orderID int64) (*notification.Notification, error) {
	f.notifications = append(f.notifications, "cancelled:"+orderNumber)
	return &notification.Notification{}, nil
}

func (f *fakeWorld) NotifyOrderStatus(ctx context.Context, accountID int64, orderNumber, status string, orderID int64) (*notification.Notification, error) {
	f.notifications = append(f.notifications, "status:"+status)
	return &notification.Notification{}, nil
}

// storeAdapter renames the fake's order methods onto the Store interface
// (GetByID/ListByAccount clash with the account and cart store methods).
type storeAdapter struct{ *fakeWorld }

func (a storeAdapter) GetByID(ctx context.Context, id int64) (*Order, error) {
	return a.GetOrder(ctx, id)
}

func (a storeAdapter) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*Order, int, error) {
	return a.ListOrdersByAccount(ctx, accountID, limit, offset)
}

func (a storeAdapter) ListAll(ctx context.Context, limit, offset int) ([]*Order, int, error) {
	return a.ListAllOrders(ctx, limit, offset)
}

func (a storeAdapter) UpdateStatus(ctx context.Context, id int64, from, to Status) (*Order, error) {
	return a.UpdateOrderStatus(ctx, id, from, to)
}

func newTestService(f *fakeWorld) *Service {
	return NewService(storeAdapter{f}, f, f, f)
}

func validCheckout() *CheckoutRequest {
	return &CheckoutRequest{
		ShippingName:    "Ayla",
		ShippingPhone:   "0555-111222",
		ShippingAddress: "12 Orchard Lane",
	}
}

func TestCheckoutSuccess(t *testing.T) {
	f := newFakeWorld()
	f.addProduct(10, "Valencia oranges", 600, 5)
	f.addCartLine(10, 600, 1)
	svc := newTestService(f)

	o, err := svc.Checkout(context.Background(), 1, validCheckout())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, int64(600), o.Subtotal)
	assert.Equal(t, int64(100), o.ShippingFee) // 600 < 799
	assert.Equal(t, int64(700), o.TotalAmount)
	assert.Equal(t, int64(300), f.account.Credit) // 1000 - 700
	assert.Equal(t, 4, f.stock[10])
	assert.Empty(t, f.cartLines)
	assert.NotEmpty(t, o.OrderNumber)
	require.Len(t, f.notifications, 1)
	assert.Equal(t, "placed:"+o.OrderNumber, f.notifications[0])
}

func TestCheckoutTotalsInvariant(t *testing.T) {
	f := newFakeWorld()
	f.account.Credit = 10000
	f.addProduct(10, "Fuji apples", 120, 50)
	f.addProduct(11, "Alphonso mangoes", 350, 50)
	f.addCartLine(10, 120, 3)
	f.addCartLine(11, 350, 2)
	svc := newTestService(f)

	o, err := svc.Checkout(context.Background(), 1, validCheckout())
	require.NoError(t, err)

	var lineSum int64
	for _, item := range o.Items {
		lineSum += item.LineTotal()
	}
	assert.Equal(t, lineSum, o.Subtotal)
	assert.Equal(t, lineSum+o.ShippingFee, o.TotalAmount)
	assert.Equal(t, int64(120*3+350*2), lineSum)
}

func TestCheckoutShippingBoundary(t *testing.T) {
	tests := []struct {
		name     string
		subtotal int64
		fee      int64
	}{
		{"at threshold ships free", 799, 0},
		{"below threshold pays flat fee", 798, 100},
		{"above threshold ships free", 1500, 0},
		{"small order pays flat fee", 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fee, ShippingFee(tt.subtotal))
		})
	}

	// end to end at the boundary
	f := newFakeWorld()
	f.addProduct(10, "Gift crate", 799, 10)
	f.addCartLine(10, 799, 1)
	svc := newTestService(f)

	o, err := svc.Checkout(context.Background(), 1, validCheckout())
	require.NoError(t, err)
	assert.Equal(t, int64(0), o.ShippingFee)
	assert.Equal(t, int64(799), o.TotalAmount)
}

// assertUntouched verifies the no-side-effects guarantee for rejected
// settlements: stock, credit, cart, and orders are exactly as before.
func assertUntouched(t *testing.T, f *fakeWorld, credit int64, stock map[int64]int, cartLen int) {
	t.Helper()
	assert.Equal(t, credit, f.account.Credit)
	for id, want := range stock {
		assert.Equal(t, want, f.stock[id])
	}
	assert.Len(t, f.cartLines, cartLen)
	assert.Empty(t, f.orders)
	assert.Empty(t, f.notifications)
}

func TestCheckoutInsufficientCredit(t *testing.T) {
	f := newFakeWorld()
	f.account.Credit = 500
	f.addProduct(10, "Valencia oranges", 600, 5)
	f.addCartLine(10, 600, 1)
	svc := newTestService(f)

	_, err := svc.Checkout(context.Background(), 1, validCheckout())
	require.ErrorIs(t, err, ErrInsufficientCredit) // total 700 > 500
	assertUntouched(t, f, 500, map[int64]int{10: 5}, 1)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	f := newFakeWorld()
	f.addProduct(10, "Muscat grapes", 200, 2)
	f.addCartLine(10, 200, 3)
	svc := newTestService(f)

	_, err := svc.Checkout(context.Background(), 1, validCheckout())

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(10), stockErr.ProductID)
	assert.Contains(t, stockErr.Error(), "Muscat grapes")
	assertUntouched(t, f, 1000, map[int64]int{10: 2}, 1)
}

func TestCheckoutRestrictedAccount(t *testing.T) {
	f := newFakeWorld()
	f.account.Status = account.StatusSuspended
	f.addProduct(10, "Valencia oranges", 600, 5)
	f.addCartLine(10, 600, 1)
	svc := newTestService(f)

	_, err := svc.Checkout(context.Background(), 1, validCheckout())
	require.ErrorIs(t, err, ErrAccountRestricted)
	assertUntouched(t, f, 1000, map[int64]int{10: 5}, 1)
}

func TestCheckoutIncompleteShipping(t *testing.T) {
	tests := []struct {
		name string
		req  CheckoutRequest
	}{
		{"missing name", CheckoutRequest{ShippingPhone: "1", ShippingAddress: "a"}},
		{"missing phone", CheckoutRequest{ShippingName: "n", ShippingAddress: "a"}},
		{"missing address", CheckoutRequest{ShippingName: "n", ShippingPhone: "1"}},
		{"whitespace only", CheckoutRequest{ShippingName: "  ", ShippingPhone: "1", ShippingAddress: "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeWorld()
			f.addProduct(10, "Valencia oranges", 600, 5)
			f.addCartLine(10, 600, 1)
			svc := newTestService(f)

			_, err := svc.Checkout(context.Background(), 1, &tt.req)
			require.ErrorIs(t, err, ErrIncompleteShipping)
			assertUntouched(t, f, 1000, map[int64]int{10: 5}, 1)
		})
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFakeWorld()
	svc := newTestService(f)

	_, err := svc.Checkout(context.Background(), 1, validCheckout())
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, f.orders)
}

func TestCheckoutPreconditionOrdering(t *testing.T) {
	// a suspended account with an empty cart fails on the account first
	f := newFakeWorld()
	f.account.Status = account.StatusSuspended
	svc := newTestService(f)

	_, err := svc.Checkout(context.Background(), 1, &CheckoutRequest{})
	require.ErrorIs(t, err, ErrAccountRestricted)
}

func TestCheckoutNumberCollisionRetries(t *testing.T) {
	f := newFakeWorld()
	f.addProduct(10, "Valencia oranges", 600, 5)
	f.addCartLine(10, 600, 1)
	f.numberCollisions = 2
	svc := newTestService(f)

	o, err := svc.Checkout(context.Background(), 1, validCheckout())
	require.NoError(t, err)
	assert.NotEmpty(t, o.OrderNumber)
}

func TestCheckoutNumberCollisionExhausted(t *testing.T) {
	f := newFakeWorld()
	f.addProduct(10, "Valencia oranges", 600, 5)
	f.addCartLine(10, 600, 1)
	f.numberCollisions = numberAttempts
	svc := newTestService(f)

	_, err := svc.Checkout(context.Background(), 1, validCheckout())
	require.ErrorIs(t, err, ErrOrderNumberTaken)
	assert.Empty(t, f.orders)
}

func TestCheckoutStorageErrorSurfaced(t *testing.T) {
	f := newFakeWorld()
	f.addProduct(10, "Valencia oranges", 600, 5)
	f.addCartLine(10, 600, 1)
	f.settleErr = errors.New("connection reset")
	svc := newTestService(f)

	_, err := svc.Checkout(context.Background(), 1, validCheckout())
	require.Error(t, err)
	assertUntouched(t, f, 1000, map[int64]int{10: 5}, 1)
}

func TestCancelRoundTrip(t *testing.T) {
	f := newFakeWorld()
	f.addProduct(10, "Valencia oranges", 600, 5)
	f.addProduct(11, "Fuji apples", 120, 8)
	f.addCartLine(10, 600, 1)
	f.addCartLine(11, 120, 2)
	svc := newTestService(f)

	o, err := svc.Checkout(context.Background(), 1, validCheckout())
	require.NoError(t, err)
	require.Equal(t, 4, f.stock[10])
	require.Equal(t, 6, f.stock[11])

	cancelled, err := svc.Cancel(context.Background(), o.ID, 1, "changed my mind")
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, "changed my mind", *cancelled.CancelReason)
	// stock and credit are exactly as before the settlement
	assert.Equal(t, 5, f.stock[10])
	assert.Equal(t, 8, f.stock[11])
	assert.Equal(t, int64(1000), f.account.Credit)
}

func TestCancelRequiresReason(t *testing.T) {
	f := newFakeWorld()
	f.addProduct(10, "Valencia oranges", 600, 5)
	f.addCartLine(10, 600, 1)
	svc := newTestService(f)

	o, err := svc.Checkout(context.Background(), 1, validCheckout())
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), o.ID, 1, "   ")
	require.ErrorIs(t, err, ErrEmptyCancelReason)
	assert.Equal(t, StatusPending, f.orders[o.ID].Status)
}

func TestCancelNotOwner(t *testing.T) {
	f := newFakeWorld()
	f.addProduct(10, "Valencia oranges", 600, 5)
	f.addCartLine(10, 600, 1)
	svc := newTestService(f)

	o, err := svc.Checkout(context.Background(), 1, validCheckout())
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), o.ID, 2, "not mine")
	require.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, StatusPending, f.orders[o.ID].Status)
}

func TestCancelIdempotence(t *testing.T) {
	f := newFakeWorld()
	f.addProduct(10, "Valencia oranges", 600, 5)
	f.addCartLine(10, 600, 1)
	svc := newTestService(f)

	o, err := svc.Checkout(context.Background(), 1, validCheckout())
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), o.ID, 1, "first")
	require.NoError(t, err)
	creditAfterFirst := f.account.Credit
	stockAfterFirst := f.stock[10]

	// a second cancel is an invalid transition and must not double-refund
	_, err = svc.Cancel(context.Background(), o.ID, 1, "second")
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, creditAfterFirst, f.account.Credit)
	assert.Equal(t, stockAfterFirst, f.stock[10])
}

func TestOwnerCannotCancelProcessing(t *testing.T) {
	f := newFakeWorld()
	f.addProduct(10, "Valencia oranges", 600, 5)
	f.addCartLine(10, 600, 1)
	svc := newTestService(f)

	o, err := svc.Checkout(context.Background(), 1, validCheckout())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), o.ID, StatusProcessing, "")
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), o.ID, 1, "too late")
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAdminStatusTransitions(t *testing.T) {
	f := newFakeWorld()
	f.addProduct(10, "Valencia oranges", 600, 5)
	f.addCartLine(10, 600, 1)
	svc := newTestService(f)

	o, err := svc.Checkout(context.Background(), 1, validCheckout())
	require.NoError(t, err)

	// pending may not jump straight to shipped or completed
	_, err = svc.UpdateStatus(context.Background(), o.ID, StatusShipped, "")
	require.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.UpdateStatus(context.Background(), o.ID, StatusCompleted, "")
	require.ErrorIs(t, err, ErrInvalidTransition)

	// the happy path walks the machine in order, without touching money
	for _, next := range []Status{StatusProcessing, StatusShipped, StatusCompleted} {
		updated, err := svc.UpdateStatus(context.Background(), o.ID, next, "")
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}
	assert.Equal(t, int64(300), f.account.Credit)
	assert.Equal(t, 4, f.stock[10])

	// completed is terminal
	_, err = svc.UpdateStatus(context.Background(), o.ID, StatusCancelled, "why not")
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAdminForceCancelRefunds(t *testing.T) {
	f := newFakeWorld()
	f.addProduct(10, "Valencia oranges", 600, 5)
	f.addCartLine(10, 600, 1)
	svc := newTestService(f)

	o, err := svc.Checkout(context.Background(), 1, validCheckout())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), o.ID, StatusProcessing, "")
	require.NoError(t, err)

	// force-cancel needs a reason
	_, err = svc.UpdateStatus(context.Background(), o.ID, StatusCancelled, "")
	require.ErrorIs(t, err, ErrEmptyCancelReason)

	updated, err := svc.UpdateStatus(context.Background(), o.ID, StatusCancelled, "out of season")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, updated.Status)
	assert.Equal(t, int64(1000), f.account.Credit)
	assert.Equal(t, 5, f.stock[10])
}

func TestGetByIDOwnership(t *testing.T) {
	f := newFakeWorld()
	f.addProduct(10, "Valencia oranges", 600, 5)
	f.addCartLine(10, 600, 1)
	svc := newTestService(f)

	o, err := svc.Checkout(context.Background(), 1, validCheckout())
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), o.ID, 2, false)
	require.ErrorIs(t, err, ErrNotOwner)

	got, err := svc.GetByID(context.Background(), o.ID, 2, true)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = svc.GetByID(context.Background(), 999, 1, true)
	require.ErrorIs(t, err, ErrOrderNotFound)
}

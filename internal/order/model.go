package order

import (
	"fmt"
	"time"
)

// Shipping fee rule: orders with a subtotal at or above the free-shipping
// threshold ship free, everything below pays the flat fee. Amounts are
// integer currency units.
const (
	FreeShippingThreshold int64 = 799
	FlatShippingFee       int64 = 100
)

// ShippingFee returns the shipping fee for a given subtotal
func ShippingFee(subtotal int64) int64 {
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	return FlatShippingFee
}

// Status represents the lifecycle state of an order
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// transitions is the order status machine. Completed and cancelled are
// terminal; every non-terminal status may move to cancelled.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether an order may move from one status to another
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status admits no further transitions
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// IsValid reports whether s is a known order status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Order is an immutable settlement record: the amounts and the shipping
// destination never change after creation, only the status (and the cancel
// reason when the order is cancelled) do.
type Order struct {
	ID              int64     `json:"id"`
	OrderNumber     string    `json:"order_number"`
	AccountID       int64     `json:"account_id"`
	Status          Status    `json:"status"`
	Subtotal        int64     `json:"subtotal"`
	ShippingFee     int64     `json:"shipping_fee"`
	TotalAmount     int64     `json:"total_amount"`
	ShippingName    string    `json:"shipping_name"`
	ShippingPhone   string    `json:"shipping_phone"`
	ShippingAddress string    `json:"shipping_address"`
	Notes           *string   `json:"notes,omitempty"`
	CancelReason    *string   `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Items []*Item `json:"items,omitempty"`
}

// Item is the snapshot of one cart line at settlement time. The product's
// name and unit price are copied so later catalog edits never change what
// the member bought.
type Item struct {
	ID          int64  `json:"id"`
	OrderID     int64  `json:"order_id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int    `json:"quantity"`
}

// LineTotal returns the line's share of the order subtotal
func (i *Item) LineTotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// InsufficientStockError identifies the first product whose stock cannot
// cover the requested quantity.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q", e.ProductName)
}

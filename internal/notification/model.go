package notification

import "time"

// Notification is an in-app message recorded for a member when something
// happens to one of their orders.
type Notification struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	OrderID   *int64    `json:"order_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Kind classifies a notification
type Kind string

const (
	KindOrderPlaced    Kind = "ORDER_PLACED"
	KindOrderCancelled Kind = "ORDER_CANCELLED"
	KindOrderStatus    Kind = "ORDER_STATUS"
)

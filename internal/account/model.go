package account

import "time"

// Status represents the standing of a member account
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// Account represents a member account with a prepaid credit balance.
// Credit is an integer number of currency units; it is mutated only by
// top-ups, settlement debits and cancellation refunds.
type Account struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Credit    int64     `json:"credit"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// IsActive reports whether the account may place orders
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

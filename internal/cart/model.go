package cart

import "time"

// Item represents one line in a member's cart: a product and a quantity.
// A cart holds at most one line per product; adding the same product again
// merges into the existing line.
type Item struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`

	// Populated via JOIN with products
	ProductName string `json:"product_name,omitempty"`
	UnitPrice   int64  `json:"unit_price,omitempty"`
	Stock       int    `json:"stock,omitempty"`
}

// LineTotal returns the line's cost at the product's current price
func (i *Item) LineTotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

package product

import "time"

// Product represents a catalog item. Price is the live price in integer
// currency units; orders snapshot it at settlement time, so later price
// changes never affect past orders. Stock is decremented by settlement and
// restored by cancellation.
type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
}

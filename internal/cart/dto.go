package cart

// AddItemRequest represents the request body for adding a product to the cart
type AddItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Quantity  int   `json:"quantity" validate:"required,min=1"`
}

// UpdateItemRequest represents the request body for changing a line's quantity
type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// ItemResponse represents the response for a cart line
type ItemResponse struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	LineTotal   int64  `json:"line_total"`
}

// CartResponse represents the full cart with its running subtotal
type CartResponse struct {
	Items    []*ItemResponse `json:"items"`
	Subtotal int64           `json:"subtotal"`
}

// ToResponse converts an Item model to an ItemResponse DTO
func (i *Item) ToResponse() *ItemResponse {
	return &ItemResponse{
		ID:          i.ID,
		ProductID:   i.ProductID,
		ProductName: i.ProductName,
		UnitPrice:   i.UnitPrice,
		Quantity:    i.Quantity,
		LineTotal:   i.LineTotal(),
	}
}

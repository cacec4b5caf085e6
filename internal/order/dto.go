package order

// CheckoutRequest represents the request body for settling the cart into an order
type CheckoutRequest struct {
	ShippingName    string `json:"shipping_name" validate:"required"`
	ShippingPhone   string `json:"shipping_phone" validate:"required"`
	ShippingAddress string `json:"shipping_address" validate:"required"`
	Notes           string `json:"notes,omitempty"`
}

// CancelRequest represents the request body for cancelling an order
type CancelRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// UpdateStatusRequest represents the admin request body for a status change.
// Reason is required only when the target status is cancelled.
type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required,oneof=processing shipped completed cancelled"`
	Reason string `json:"reason,omitempty"`
}

// ItemResponse represents the response for an order line
type ItemResponse struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	LineTotal   int64  `json:"line_total"`
}

// OrderResponse represents the response for an order
type OrderResponse struct {
	ID              int64           `json:"id"`
	OrderNumber     string          `json:"order_number"`
	Status          Status          `json:"status"`
	Subtotal        int64           `json:"subtotal"`
	ShippingFee     int64           `json:"shipping_fee"`
	TotalAmount     int64           `json:"total_amount"`
	ShippingName    string          `json:"shipping_name"`
	ShippingPhone   string          `json:"shipping_phone"`
	ShippingAddress string          `json:"shipping_address"`
	Notes           *string         `json:"notes,omitempty"`
	CancelReason    *string         `json:"cancel_reason,omitempty"`
	Items           []*ItemResponse `json:"items,omitempty"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

// ToResponse converts an Order model to an OrderResponse DTO
func (o *Order) ToResponse() *OrderResponse {
	resp := &OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		Status:          o.Status,
		Subtotal:        o.Subtotal,
		ShippingFee:     o.ShippingFee,
		TotalAmount:     o.TotalAmount,
		ShippingName:    o.ShippingName,
		ShippingPhone:   o.ShippingPhone,
		ShippingAddress: o.ShippingAddress,
		Notes:           o.Notes,
		CancelReason:    o.CancelReason,
		CreatedAt:       o.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:       o.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}

	if len(o.Items) > 0 {
		resp.Items = make([]*ItemResponse, len(o.Items))
		for i, item := range o.Items {
			resp.Items[i] = &ItemResponse{
				ID:          item.ID,
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				UnitPrice:   item.UnitPrice,
				Quantity:    item.Quantity,
				LineTotal:   item.LineTotal(),
			}
		}
	}

	return resp
}

package account

// TopUpRequest represents the request body for a credit top-up
type TopUpRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// AccountResponse represents the response for an account
type AccountResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Credit    int64  `json:"credit"`
	Status    Status `json:"status"`
	CreatedAt string `json:"created_at"`
}

// ToResponse converts an Account model to an AccountResponse DTO
func (a *Account) ToResponse() *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Credit:    a.Credit,
		Status:    a.Status,
		CreatedAt: a.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

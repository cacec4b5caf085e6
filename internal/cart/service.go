package cart

import (
	"context"
	"errors"

	"github.com/rhashem/fruitmart/internal/product"
)

// Common errors
var (
	ErrProductNotFound = errors.New("product not found")
	ErrItemNotFound    = errors.New("cart item not found")
	ErrNotEnoughStock  = errors.New("not enough stock for requested quantity")
)

// Service handles cart business logic
type Service struct {
	repo        *Repository
	productRepo *product.Repository
}

// NewService creates a new cart service
func NewService(repo *Repository, productRepo *product.Repository) *Service {
	return &Service{
		repo:        repo,
		productRepo: productRepo,
	}
}

// List retrieves the account's cart lines
func (s *Service) List(ctx context.Context, accountID int64) ([]*Item, error) {
	return s.repo.ListByAccount(ctx, accountID)
}

// Add puts a product in the cart, merging with an existing line for the same
// product. The stock check here is advisory only; the settlement transaction
// re-checks it under the transaction.
func (s *Service) Add(ctx context.Context, accountID int64, req *AddItemRequest) (*Item, error) {
	p, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	if p.Stock < req.Quantity {
		return nil, ErrNotEnoughStock
	}

	item, err := s.repo.Add(ctx, accountID, req.ProductID, req.Quantity)
	if err != nil {
		return nil, err
	}

	item.ProductName = p.Name
	item.UnitPrice = p.Price
	item.Stock = p.Stock
	return item, nil
}

// UpdateQuantity changes a line's quantity
func (s *Service) UpdateQuantity(ctx context.Context, id, accountID int64, req *UpdateItemRequest) (*Item, error) {
	item, err := s.repo.UpdateQuantity(ctx, id, accountID, req.Quantity)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}

// Remove deletes a single line from the cart
func (s *Service) Remove(ctx context.Context, id, accountID int64) error {
	return s.repo.Remove(ctx, id, accountID)
}

// Clear empties the account's cart
func (s *Service) Clear(ctx context.Context, accountID int64) error {
	return s.repo.Clear(ctx, accountID)
}

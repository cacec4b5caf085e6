package notification

import (
	"context"
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("not the recipient of this notification")
)

// Service handles notification business logic
type Service struct {
	repo *Repository
}

// NewService creates a new notification service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// ListByAccountID retrieves notifications for an account
func (s *Service) ListByAccountID(ctx context.Context, accountID int64, page, perPage int, unreadOnly bool) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByAccountID(ctx, accountID, perPage, offset, unreadOnly)
}

// MarkAsRead marks a notification as read
func (s *Service) MarkAsRead(ctx context.Context, id, accountID int64) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil {
		return ErrNotificationNotFound
	}
	if n.AccountID != accountID {
		return ErrNotRecipient
	}

	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read for an account
func (s *Service) MarkAllAsRead(ctx context.Context, accountID int64) error {
	return s.repo.MarkAllAsRead(ctx, accountID)
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, accountID int64) (int, error) {
	return s.repo.GetUnreadCount(ctx, accountID)
}

// Helper methods for order events

// NotifyOrderPlaced records a notification for a freshly settled order
func (s *Service) NotifyOrderPlaced(ctx context.Context, accountID int64, orderNumber string, total int64, orderID int64) (*Notification, error) {
	message := fmt.Sprintf("Order %s placed, %d credit charged", orderNumber, total)
	return s.repo.Create(ctx, accountID, KindOrderPlaced, message, &orderID)
}

// NotifyOrderCancelled records a notification for a cancelled order
func (s *Service) NotifyOrderCancelled(ctx context.Context, accountID int64, orderNumber string, refund int64, orderID int64) (*Notification, error) {
	message := fmt.Sprintf("Order %s cancelled, %d credit refunded", orderNumber, refund)
	return s.repo.Create(ctx, accountID, KindOrderCancelled, message, &orderID)
}

// NotifyOrderStatus records a notification for an order status change
func (s *Service) NotifyOrderStatus(ctx context.Context, accountID int64, orderNumber, status string, orderID int64) (*Notification, error) {
	message := fmt.Sprintf("Order %s is now %s", orderNumber, status)
	return s.repo.Create(ctx, accountID, KindOrderStatus, message, &orderID)
}

package app

import (
	"context"

	"github.com/farmdirect/api/internal/domain"
)

type NotificationRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	ClearByUser(ctx context.Context, userID string) error
}

type NotificationService struct {
	repo NotificationRepository
}

func NewNotificationService(repo NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// List returns the user's notifications newest first.
func (s *NotificationService) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *NotificationService) Clear(ctx context.Context, userID string) error {
	return s.repo.ClearByUser(ctx, userID)
}

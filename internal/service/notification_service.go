package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campusshare/internal/errors"
	"campusshare/internal/model"
	"campusshare/internal/repository"
)

// NotificationService exposes the polling-based notification feed.
type NotificationService interface {
	List(ctx context.Context, userID uint, page, perPage int) ([]model.Notification, int64, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, userID uint, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uint) error
}

type notificationService struct {
	repo  repository.NotificationRepository
	clock Clock
}

// NewNotificationService creates a new notification service.
func NewNotificationService(repo repository.NotificationRepository, clock Clock) NotificationService {
	return &notificationService{repo: repo, clock: clock}
}

func (s *notificationService) List(ctx context.Context, userID uint, page, perPage int) ([]model.Notification, int64, error) {
	return s.repo.ListByUser(ctx, userID, page, perPage)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead stamps one notification; only the owner's rows match.
func (s *notificationService) MarkRead(ctx context.Context, userID uint, id uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, id, userID, s.clock()); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrNotificationNotFound
		}
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllRead(ctx, userID, s.clock())
}

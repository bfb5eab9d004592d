package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campusshare/internal/model"
)

// NotificationRepository defines notification persistence operations.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID uint, page, perPage int) ([]model.Notification, int64, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, id uuid.UUID, userID uint, at time.Time) error
	MarkAllRead(ctx context.Context, userID uint, at time.Time) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// ListByUser lists the user's notifications, newest first.
func (r *notificationRepository) ListByUser(ctx context.Context, userID uint, page, perPage int) ([]model.Notification, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, perPage = normalizePage(page, perPage)
	var ns []model.Notification
	if err := q.Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&ns).Error; err != nil {
		return nil, 0, err
	}
	return ns, total, nil
}

// CountUnread counts notifications without a read timestamp.
func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

// MarkRead stamps one of the user's notifications as read.
func (r *notificationRepository) MarkRead(ctx context.Context, id uuid.UUID, userID uint, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAllRead stamps all of the user's unread notifications as read.
func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", at).Error
}

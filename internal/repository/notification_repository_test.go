package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"campusshare/internal/model"
)

func createTestNotification(t *testing.T, db *gorm.DB, userID uint, title string) *model.Notification {
	t.Helper()
	n := &model.Notification{
		UserID: userID,
		Type:   "item_request",
		Title:  title,
		Body:   "Someone requested your item.",
	}
	if err := db.Create(n).Error; err != nil {
		t.Fatalf("create notification: %v", err)
	}
	return n
}

func TestNotificationRepository_ListByUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "maria@minsu.edu.ph")
	other := createTestUser(t, db, "juan@minsu.edu.ph")

	older := createTestNotification(t, db, user.ID, "First")
	db.Model(older).Update("created_at", time.Now().Add(-time.Hour))
	createTestNotification(t, db, user.ID, "Second")
	createTestNotification(t, db, other.ID, "Not Yours")

	ns, total, err := repo.ListByUser(ctx, user.ID, 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, ns, 2)
	assert.Equal(t, "Second", ns[0].Title)

	ns, total, err = repo.ListByUser(ctx, user.ID, 2, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, ns, 1)
	assert.Equal(t, "First", ns[0].Title)
}

func TestNotificationRepository_MarkRead(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "maria@minsu.edu.ph")
	other := createTestUser(t, db, "juan@minsu.edu.ph")
	n := createTestNotification(t, db, user.ID, "Request Approved")
	at := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	t.Run("another user's notification", func(t *testing.T) {
		err := repo.MarkRead(ctx, n.ID, other.ID, at)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("own notification", func(t *testing.T) {
		assert.NoError(t, repo.MarkRead(ctx, n.ID, user.ID, at))

		count, err := repo.CountUnread(ctx, user.ID)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}

func TestNotificationRepository_MarkAllRead(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "maria@minsu.edu.ph")
	other := createTestUser(t, db, "juan@minsu.edu.ph")
	createTestNotification(t, db, user.ID, "One")
	createTestNotification(t, db, user.ID, "Two")
	createTestNotification(t, db, other.ID, "Theirs")

	count, err := repo.CountUnread(ctx, user.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)

	at := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	assert.NoError(t, repo.MarkAllRead(ctx, user.ID, at))

	count, err = repo.CountUnread(ctx, user.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// The other user's notifications are untouched.
	count, err = repo.CountUnread(ctx, other.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"campusshare/internal/errors"
	"campusshare/internal/model"
)

func newTestItemService(items *MockItemRepository, users *MockUserRepository, store *MockImageStore, now time.Time) ItemService {
	return NewItemService(items, users, store, NewAutoApproveScreener(), fixedClock(now), 5, "Arawatan Corner")
}

func TestMonthWindow(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		from time.Time
		to   time.Time
	}{
		{
			name: "mid month",
			in:   time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC),
			from: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "december rolls into next year",
			in:   time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC),
			from: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "first instant of a month counts into that month",
			in:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			from: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := monthWindow(tt.in)
			assert.Equal(t, tt.from, from)
			assert.Equal(t, tt.to, to)
		})
	}
}

func TestItemService_Create(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	monthStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	nextMonth := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	input := CreateItemInput{
		Title:       "Calculus Textbook",
		Description: "Lightly used.",
		Category:    "books",
		Condition:   "good",
		Campus:      "main",
	}

	t.Run("creates and activates under quota", func(t *testing.T) {
		mockItems := new(MockItemRepository)
		mockStore := new(MockImageStore)
		mockItems.On("CountCreatedBetween", mock.Anything, uint(1), monthStart, nextMonth).Return(int64(2), nil)
		mockStore.On("Store", mock.Anything, "items", "front.jpg", mock.Anything).Return("items/a.jpg", nil)
		mockStore.On("Store", mock.Anything, "items", "back.jpg", mock.Anything).Return("items/b.jpg", nil)
		mockItems.On("Create", mock.Anything, mock.AnythingOfType("*model.Item")).Return(nil)
		mockItems.On("UpdateFields", mock.Anything, mock.Anything, map[string]interface{}{
			"status":      model.ItemStatusActive,
			"is_verified": true,
		}).Return(nil)

		svc := newTestItemService(mockItems, new(MockUserRepository), mockStore, now)
		item, err := svc.Create(context.Background(), 1, input, []ImageUpload{
			{Filename: "front.jpg", Data: []byte("a")},
			{Filename: "back.jpg", Data: []byte("b")},
		})

		assert.NoError(t, err)
		assert.Equal(t, model.ItemStatusActive, item.Status)
		assert.True(t, item.IsVerified)
		assert.Equal(t, "Arawatan Corner", item.MeetupLocation)
		assert.Equal(t, now, item.PostedAt)
		if assert.Len(t, item.Images, 2) {
			assert.True(t, item.Images[0].IsPrimary)
			assert.False(t, item.Images[1].IsPrimary)
			assert.Equal(t, 1, item.Images[1].SortOrder)
		}
		mockItems.AssertExpectations(t)
		mockStore.AssertExpectations(t)
	})

	t.Run("explicit meetup location is kept", func(t *testing.T) {
		mockItems := new(MockItemRepository)
		mockItems.On("CountCreatedBetween", mock.Anything, uint(1), monthStart, nextMonth).Return(int64(0), nil)
		mockItems.On("Create", mock.Anything, mock.AnythingOfType("*model.Item")).Return(nil)
		mockItems.On("UpdateFields", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		in := input
		in.MeetupLocation = "Library Steps"
		svc := newTestItemService(mockItems, new(MockUserRepository), new(MockImageStore), now)
		item, err := svc.Create(context.Background(), 1, in, nil)

		assert.NoError(t, err)
		assert.Equal(t, "Library Steps", item.MeetupLocation)
	})

	t.Run("quota reached", func(t *testing.T) {
		mockItems := new(MockItemRepository)
		mockItems.On("CountCreatedBetween", mock.Anything, uint(1), monthStart, nextMonth).Return(int64(5), nil)

		svc := newTestItemService(mockItems, new(MockUserRepository), new(MockImageStore), now)
		_, err := svc.Create(context.Background(), 1, input, nil)

		assert.ErrorIs(t, err, errors.ErrQuotaExceeded)
		mockItems.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("quota resets with the calendar month", func(t *testing.T) {
		april := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
		mockItems := new(MockItemRepository)
		mockItems.On("CountCreatedBetween", mock.Anything, uint(1),
			time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)).Return(int64(0), nil)
		mockItems.On("Create", mock.Anything, mock.AnythingOfType("*model.Item")).Return(nil)
		mockItems.On("UpdateFields", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		svc := newTestItemService(mockItems, new(MockUserRepository), new(MockImageStore), april)
		_, err := svc.Create(context.Background(), 1, input, nil)

		assert.NoError(t, err)
		mockItems.AssertExpectations(t)
	})
}

func TestItemService_View(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	id := uuid.New()

	t.Run("returns item and bumps the counter", func(t *testing.T) {
		mockItems := new(MockItemRepository)
		mockItems.On("FindByID", mock.Anything, id).Return(&model.Item{ID: id, ViewsCount: 7}, nil)
		mockItems.On("IncrementViews", mock.Anything, id).Return(nil)

		svc := newTestItemService(mockItems, new(MockUserRepository), new(MockImageStore), now)
		item, err := svc.View(context.Background(), id)

		assert.NoError(t, err)
		assert.Equal(t, 8, item.ViewsCount)
		mockItems.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockItems := new(MockItemRepository)
		mockItems.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

		svc := newTestItemService(mockItems, new(MockUserRepository), new(MockImageStore), now)
		_, err := svc.View(context.Background(), id)

		assert.ErrorIs(t, err, errors.ErrItemNotFound)
	})
}

func TestItemService_Update(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	id := uuid.New()

	t.Run("owner applies a partial update", func(t *testing.T) {
		mockItems := new(MockItemRepository)
		mockItems.On("FindByID", mock.Anything, id).Return(&model.Item{ID: id, UserID: 1}, nil).Twice()
		mockItems.On("UpdateFields", mock.Anything, id, map[string]interface{}{
			"title": "New Title",
		}).Return(nil)

		title := "New Title"
		svc := newTestItemService(mockItems, new(MockUserRepository), new(MockImageStore), now)
		_, err := svc.Update(context.Background(), 1, id, UpdateItemInput{Title: &title})

		assert.NoError(t, err)
		mockItems.AssertExpectations(t)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		mockItems := new(MockItemRepository)
		mockItems.On("FindByID", mock.Anything, id).Return(&model.Item{ID: id, UserID: 1}, nil)

		title := "New Title"
		svc := newTestItemService(mockItems, new(MockUserRepository), new(MockImageStore), now)
		_, err := svc.Update(context.Background(), 2, id, UpdateItemInput{Title: &title})

		assert.ErrorIs(t, err, errors.ErrForbidden)
	})
}

func TestItemService_Remove(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	id := uuid.New()
	item := func() *model.Item {
		return &model.Item{
			ID:     id,
			UserID: 1,
			Images: []model.ItemImage{{ImagePath: "items/a.jpg"}},
		}
	}

	t.Run("owner removes with stored images", func(t *testing.T) {
		mockItems := new(MockItemRepository)
		mockUsers := new(MockUserRepository)
		mockStore := new(MockImageStore)
		mockItems.On("FindByID", mock.Anything, id).Return(item(), nil)
		mockUsers.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1, Role: "user"}, nil)
		mockStore.On("Delete", mock.Anything, "items/a.jpg").Return(nil)
		mockItems.On("Delete", mock.Anything, mock.AnythingOfType("*model.Item")).Return(nil)

		svc := newTestItemService(mockItems, mockUsers, mockStore, now)
		err := svc.Remove(context.Background(), 1, id)

		assert.NoError(t, err)
		mockStore.AssertExpectations(t)
		mockItems.AssertExpectations(t)
	})

	t.Run("admin may remove another user's item", func(t *testing.T) {
		mockItems := new(MockItemRepository)
		mockUsers := new(MockUserRepository)
		mockStore := new(MockImageStore)
		mockItems.On("FindByID", mock.Anything, id).Return(item(), nil)
		mockUsers.On("FindByID", mock.Anything, uint(9)).Return(&model.User{ID: 9, Role: "admin"}, nil)
		mockStore.On("Delete", mock.Anything, "items/a.jpg").Return(nil)
		mockItems.On("Delete", mock.Anything, mock.AnythingOfType("*model.Item")).Return(nil)

		svc := newTestItemService(mockItems, mockUsers, mockStore, now)
		err := svc.Remove(context.Background(), 9, id)

		assert.NoError(t, err)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		mockItems := new(MockItemRepository)
		mockUsers := new(MockUserRepository)
		mockItems.On("FindByID", mock.Anything, id).Return(item(), nil)
		mockUsers.On("FindByID", mock.Anything, uint(2)).Return(&model.User{ID: 2, Role: "user"}, nil)

		svc := newTestItemService(mockItems, mockUsers, new(MockImageStore), now)
		err := svc.Remove(context.Background(), 2, id)

		assert.ErrorIs(t, err, errors.ErrForbidden)
		mockItems.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestItemService_MyItems(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	mockItems := new(MockItemRepository)
	mockItems.On("ListByOwner", mock.Anything, uint(1), 1, 12).Return([]model.Item{{Title: "A"}}, int64(1), nil)
	mockItems.On("CountCreatedBetween", mock.Anything, uint(1),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)).Return(int64(3), nil)

	svc := newTestItemService(mockItems, new(MockUserRepository), new(MockImageStore), now)
	items, total, quota, err := svc.MyItems(context.Background(), 1, 1, 12)

	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(3), quota.Used)
	assert.Equal(t, 5, quota.Limit)
}

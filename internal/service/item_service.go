package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campusshare/internal/errors"
	"campusshare/internal/model"
	"campusshare/internal/repository"
	"campusshare/internal/storage"
)

// ImageUpload is one uploaded image file.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// CreateItemInput holds the fields for a new listing.
type CreateItemInput struct {
	Title          string
	Description    string
	Category       string
	Condition      string
	Campus         string
	MeetupLocation string
}

// UpdateItemInput holds a partial update; nil fields retain previous values.
type UpdateItemInput struct {
	Title          *string
	Description    *string
	Category       *string
	Condition      *string
	Campus         *string
	MeetupLocation *string
}

// QuotaUsage reports the authoritative monthly listing usage.
type QuotaUsage struct {
	Used  int64 `json:"used"`
	Limit int   `json:"limit"`
}

// ItemService manages the listing catalog.
type ItemService interface {
	Create(ctx context.Context, ownerID uint, in CreateItemInput, images []ImageUpload) (*model.Item, error)
	Browse(ctx context.Context, f repository.ItemFilter) ([]model.Item, int64, error)
	View(ctx context.Context, id uuid.UUID) (*model.Item, error)
	Update(ctx context.Context, actorID uint, id uuid.UUID, in UpdateItemInput) (*model.Item, error)
	Remove(ctx context.Context, actorID uint, id uuid.UUID) error
	MyItems(ctx context.Context, ownerID uint, page, perPage int) ([]model.Item, int64, QuotaUsage, error)
}

type itemService struct {
	itemRepo     repository.ItemRepository
	userRepo     repository.UserRepository
	store        storage.ImageStore
	screener     ContentScreener
	clock        Clock
	monthlyQuota int
	defaultSpot  string
	// Mutex map for per-owner locking so the quota check and the insert
	// serialize against a concurrent create by the same user.
	ownerMutexes sync.Map
}

// NewItemService creates a new item service.
func NewItemService(
	itemRepo repository.ItemRepository,
	userRepo repository.UserRepository,
	store storage.ImageStore,
	screener ContentScreener,
	clock Clock,
	monthlyQuota int,
	defaultMeetupLocation string,
) ItemService {
	return &itemService{
		itemRepo:     itemRepo,
		userRepo:     userRepo,
		store:        store,
		screener:     screener,
		clock:        clock,
		monthlyQuota: monthlyQuota,
		defaultSpot:  defaultMeetupLocation,
	}
}

// getMutex returns a mutex for a specific owner ID.
func (s *itemService) getMutex(ownerID uint) *sync.Mutex {
	value, _ := s.ownerMutexes.LoadOrStore(ownerID, &sync.Mutex{})
	return value.(*sync.Mutex)
}

// monthWindow returns the calendar-month bounds containing t.
func monthWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}

// Create lists a new item. The monthly quota is checked under a per-owner
// lock, the listing is created as pending_review and promoted to active by
// the content screener.
func (s *itemService) Create(ctx context.Context, ownerID uint, in CreateItemInput, images []ImageUpload) (*model.Item, error) {
	mutex := s.getMutex(ownerID)
	mutex.Lock()
	defer mutex.Unlock()

	now := s.clock()
	from, to := monthWindow(now)
	count, err := s.itemRepo.CountCreatedBetween(ctx, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("count monthly items: %w", err)
	}
	if count >= int64(s.monthlyQuota) {
		return nil, errors.ErrQuotaExceeded
	}

	meetup := in.MeetupLocation
	if meetup == "" {
		meetup = s.defaultSpot
	}

	item := &model.Item{
		UserID:         ownerID,
		Title:          in.Title,
		Description:    in.Description,
		Category:       in.Category,
		Condition:      in.Condition,
		Campus:         in.Campus,
		MeetupLocation: meetup,
		Status:         model.ItemStatusPendingReview,
		PostedAt:       now,
	}

	for i, img := range images {
		path, err := s.store.Store(ctx, "items", img.Filename, img.Data)
		if err != nil {
			return nil, fmt.Errorf("store item image: %w", err)
		}
		item.Images = append(item.Images, model.ItemImage{
			ImagePath: path,
			IsPrimary: i == 0,
			SortOrder: i,
		})
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	pass, reason, err := s.screener.Screen(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("screen item: %w", err)
	}
	if pass {
		if err := s.itemRepo.UpdateFields(ctx, item.ID, map[string]interface{}{
			"status":      model.ItemStatusActive,
			"is_verified": true,
		}); err != nil {
			return nil, fmt.Errorf("activate item: %w", err)
		}
		item.Status = model.ItemStatusActive
		item.IsVerified = true
	} else {
		log.Printf("item %s held in review: %s", item.ID, reason)
	}

	return item, nil
}

// Browse lists active items with filters, sorting and pagination.
func (s *itemService) Browse(ctx context.Context, f repository.ItemFilter) ([]model.Item, int64, error) {
	return s.itemRepo.BrowseActive(ctx, f)
}

// View returns the item and bumps its view counter. Every call counts; this
// is a plain counter, not a unique-viewer metric.
func (s *itemService) View(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrItemNotFound
		}
		return nil, fmt.Errorf("find item: %w", err)
	}

	if err := s.itemRepo.IncrementViews(ctx, id); err != nil {
		return nil, fmt.Errorf("increment views: %w", err)
	}
	item.ViewsCount++

	return item, nil
}

// Update applies a partial update. Only the owner may modify the item.
func (s *itemService) Update(ctx context.Context, actorID uint, id uuid.UUID, in UpdateItemInput) (*model.Item, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrItemNotFound
		}
		return nil, fmt.Errorf("find item: %w", err)
	}

	if item.UserID != actorID {
		return nil, errors.ErrForbidden
	}

	fields := map[string]interface{}{}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Category != nil {
		fields["category"] = *in.Category
	}
	if in.Condition != nil {
		fields["condition"] = *in.Condition
	}
	if in.Campus != nil {
		fields["campus"] = *in.Campus
	}
	if in.MeetupLocation != nil {
		fields["meetup_location"] = *in.MeetupLocation
	}

	if err := s.itemRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	return s.itemRepo.FindByID(ctx, id)
}

// Remove deletes a listing. Only the owner or an admin may remove it; the
// stored images are deleted first.
func (s *itemService) Remove(ctx context.Context, actorID uint, id uuid.UUID) error {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrItemNotFound
		}
		return fmt.Errorf("find item: %w", err)
	}

	actor, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrUserNotFound
		}
		return fmt.Errorf("find actor: %w", err)
	}

	if item.UserID != actorID && !actor.IsAdmin() {
		return errors.ErrForbidden
	}

	for _, img := range item.Images {
		if err := s.store.Delete(ctx, img.ImagePath); err != nil {
			log.Printf("delete image %s: %v", img.ImagePath, err)
		}
	}

	if err := s.itemRepo.Delete(ctx, item); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// MyItems lists the owner's items along with the authoritative quota usage
// for the current calendar month.
func (s *itemService) MyItems(ctx context.Context, ownerID uint, page, perPage int) ([]model.Item, int64, QuotaUsage, error) {
	items, total, err := s.itemRepo.ListByOwner(ctx, ownerID, page, perPage)
	if err != nil {
		return nil, 0, QuotaUsage{}, fmt.Errorf("list items: %w", err)
	}

	from, to := monthWindow(s.clock())
	used, err := s.itemRepo.CountCreatedBetween(ctx, ownerID, from, to)
	if err != nil {
		return nil, 0, QuotaUsage{}, fmt.Errorf("count monthly items: %w", err)
	}

	return items, total, QuotaUsage{Used: used, Limit: s.monthlyQuota}, nil
}

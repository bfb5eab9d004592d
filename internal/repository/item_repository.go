package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campusshare/internal/model"
)

// ItemFilter holds optional browse filters; zero values mean "no filter".
type ItemFilter struct {
	Search    string
	Category  string
	Campus    string
	Condition string
	Sort      string // newest (default), oldest, popular
	Page      int
	PerPage   int
}

// ItemRepository defines item persistence operations.
type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ItemStatus) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, item *model.Item) error
	BrowseActive(ctx context.Context, f ItemFilter) ([]model.Item, int64, error)
	ListByOwner(ctx context.Context, ownerID uint, page, perPage int) ([]model.Item, int64, error)
	CountActiveByOwner(ctx context.Context, ownerID uint) (int64, error)
	CountCreatedBetween(ctx context.Context, ownerID uint, from, to time.Time) (int64, error)
	// Transaction methods
	FindByIDForUpdateTx(ctx context.Context, tx interface{}, id uuid.UUID) (*model.Item, error)
	UpdateStatusTx(ctx context.Context, tx interface{}, id uuid.UUID, status model.ItemStatus) error
}

type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new item repository.
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

// Create creates a new item together with its image rows.
func (r *itemRepository) Create(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// FindByID finds an item by ID with images and owner preloaded.
func (r *itemRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	var item model.Item
	if err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("User").
		Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateFields applies a partial update; unset fields retain previous values.
func (r *itemRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Item{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// UpdateStatus sets the item status.
func (r *itemRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ItemStatus) error {
	return r.db.WithContext(ctx).Model(&model.Item{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// IncrementViews bumps the view counter by one. Plain counter, no dedup.
func (r *itemRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Item{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error
}

// Delete soft-deletes the item; transaction history keeps referencing it.
func (r *itemRepository) Delete(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Delete(item).Error
}

// BrowseActive lists active items with filters, sorting and pagination.
func (r *itemRepository) BrowseActive(ctx context.Context, f ItemFilter) ([]model.Item, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Item{}).
		Where("status = ?", model.ItemStatusActive)

	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", like, like)
	}
	if f.Category != "" && f.Category != "all" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Campus != "" && f.Campus != "all" {
		q = q.Where("campus = ?", f.Campus)
	}
	if f.Condition != "" && f.Condition != "all" {
		q = q.Where("`condition` = ?", f.Condition)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch f.Sort {
	case "oldest":
		q = q.Order("created_at ASC")
	case "popular":
		q = q.Order("views_count DESC")
	default:
		q = q.Order("created_at DESC")
	}

	page, perPage := normalizePage(f.Page, f.PerPage)
	var items []model.Item
	if err := q.
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("User").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByOwner lists the owner's items, newest first.
func (r *itemRepository) ListByOwner(ctx context.Context, ownerID uint, page, perPage int) ([]model.Item, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Item{}).Where("user_id = ?", ownerID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, perPage = normalizePage(page, perPage)
	var items []model.Item
	if err := q.
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// CountActiveByOwner counts the owner's active listings.
func (r *itemRepository) CountActiveByOwner(ctx context.Context, ownerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Item{}).
		Where("user_id = ? AND status = ?", ownerID, model.ItemStatusActive).
		Count(&count).Error
	return count, err
}

// CountCreatedBetween counts items the owner created in [from, to). A time
// range keeps the query portable across MySQL and the sqlite test database.
func (r *itemRepository) CountCreatedBetween(ctx context.Context, ownerID uint, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Item{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", ownerID, from, to).
		Count(&count).Error
	return count, err
}

// FindByIDForUpdateTx finds an item with a row-level lock within a transaction.
func (r *itemRepository) FindByIDForUpdateTx(ctx context.Context, tx interface{}, id uuid.UUID) (*model.Item, error) {
	txDB := tx.(*gorm.DB)
	var item model.Item
	if err := txDB.WithContext(ctx).Set("gorm:query_option", "FOR UPDATE").
		Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateStatusTx sets the item status within a transaction.
func (r *itemRepository) UpdateStatusTx(ctx context.Context, tx interface{}, id uuid.UUID, status model.ItemStatus) error {
	txDB := tx.(*gorm.DB)
	return txDB.WithContext(ctx).Model(&model.Item{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 12
	}
	return page, perPage
}

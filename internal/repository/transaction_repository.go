package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campusshare/internal/model"
)

// TransactionRepository defines transaction persistence operations.
type TransactionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	Update(ctx context.Context, t *model.Transaction) error
	ListByReceiver(ctx context.Context, receiverID uint, page, perPage int) ([]model.Transaction, int64, error)
	ListByDonor(ctx context.Context, donorID uint, page, perPage int) ([]model.Transaction, int64, error)
	CountCompletedByDonor(ctx context.Context, donorID uint) (int64, error)
	CountCompletedByReceiver(ctx context.Context, receiverID uint) (int64, error)
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx interface{}) error) error
	CreateTx(ctx context.Context, tx interface{}, t *model.Transaction) error
	UpdateTx(ctx context.Context, tx interface{}, t *model.Transaction) error
	FindByIDForUpdateTx(ctx context.Context, tx interface{}, id uuid.UUID) (*model.Transaction, error)
	ExistsOpenForItemAndReceiverTx(ctx context.Context, tx interface{}, itemID uuid.UUID, receiverID uint) (bool, error)
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository.
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// FindByID finds a transaction with item, donor and receiver preloaded.
func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var t model.Transaction
	if err := r.db.WithContext(ctx).
		Preload("Item.Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Item").
		Preload("Donor").
		Preload("Receiver").
		Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// Update updates an existing transaction.
func (r *transactionRepository) Update(ctx context.Context, t *model.Transaction) error {
	return r.db.WithContext(ctx).Save(t).Error
}

// ListByReceiver lists the user's requests, newest first.
func (r *transactionRepository) ListByReceiver(ctx context.Context, receiverID uint, page, perPage int) ([]model.Transaction, int64, error) {
	return r.list(ctx, "receiver_id = ?", receiverID, "Donor", page, perPage)
}

// ListByDonor lists the user's donations, newest first.
func (r *transactionRepository) ListByDonor(ctx context.Context, donorID uint, page, perPage int) ([]model.Transaction, int64, error) {
	return r.list(ctx, "donor_id = ?", donorID, "Receiver", page, perPage)
}

func (r *transactionRepository) list(ctx context.Context, cond string, userID uint, counterpart string, page, perPage int) ([]model.Transaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Transaction{}).Where(cond, userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, perPage = normalizePage(page, perPage)
	var txns []model.Transaction
	if err := q.
		Preload("Item.Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Item").
		Preload(counterpart).
		Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// CountCompletedByDonor counts completed handoffs the user donated.
func (r *transactionRepository) CountCompletedByDonor(ctx context.Context, donorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("donor_id = ? AND status = ?", donorID, model.TransactionStatusCompleted).
		Count(&count).Error
	return count, err
}

// CountCompletedByReceiver counts completed handoffs the user received.
func (r *transactionRepository) CountCompletedByReceiver(ctx context.Context, receiverID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("receiver_id = ? AND status = ?", receiverID, model.TransactionStatusCompleted).
		Count(&count).Error
	return count, err
}

// WithTransaction executes a function within a database transaction.
func (r *transactionRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx interface{}) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, tx)
	})
}

// CreateTx creates a transaction row within a database transaction.
func (r *transactionRepository) CreateTx(ctx context.Context, tx interface{}, t *model.Transaction) error {
	txDB := tx.(*gorm.DB)
	return txDB.WithContext(ctx).Create(t).Error
}

// UpdateTx updates a transaction row within a database transaction.
func (r *transactionRepository) UpdateTx(ctx context.Context, tx interface{}, t *model.Transaction) error {
	txDB := tx.(*gorm.DB)
	return txDB.WithContext(ctx).Save(t).Error
}

// FindByIDForUpdateTx finds a transaction with a row-level lock.
func (r *transactionRepository) FindByIDForUpdateTx(ctx context.Context, tx interface{}, id uuid.UUID) (*model.Transaction, error) {
	txDB := tx.(*gorm.DB)
	var t model.Transaction
	if err := txDB.WithContext(ctx).Set("gorm:query_option", "FOR UPDATE").
		Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ExistsOpenForItemAndReceiverTx reports whether the receiver already has a
// non-cancelled transaction for the item.
func (r *transactionRepository) ExistsOpenForItemAndReceiverTx(ctx context.Context, tx interface{}, itemID uuid.UUID, receiverID uint) (bool, error) {
	txDB := tx.(*gorm.DB)
	var count int64
	err := txDB.WithContext(ctx).Model(&model.Transaction{}).
		Where("item_id = ? AND receiver_id = ? AND status <> ?", itemID, receiverID, model.TransactionStatusCancelled).
		Count(&count).Error
	return count > 0, err
}

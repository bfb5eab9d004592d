package repository

import (
	"context"

	"gorm.io/gorm"

	"campusshare/internal/model"
)

// VerificationRepository defines verification attempt persistence operations.
type VerificationRepository interface {
	Create(ctx context.Context, v *model.Verification) error
	FindLatestByUser(ctx context.Context, userID uint) (*model.Verification, error)
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx interface{}) error) error
	CreateTx(ctx context.Context, tx interface{}, v *model.Verification) error
	FindInFlightByUserTx(ctx context.Context, tx interface{}, userID uint) (*model.Verification, error)
}

type verificationRepository struct {
	db *gorm.DB
}

// NewVerificationRepository creates a new verification repository.
func NewVerificationRepository(db *gorm.DB) VerificationRepository {
	return &verificationRepository{db: db}
}

func (r *verificationRepository) Create(ctx context.Context, v *model.Verification) error {
	return r.db.WithContext(ctx).Create(v).Error
}

// FindLatestByUser returns the most recent attempt for the user.
func (r *verificationRepository) FindLatestByUser(ctx context.Context, userID uint) (*model.Verification, error) {
	var v model.Verification
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// WithTransaction executes a function within a database transaction.
func (r *verificationRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx interface{}) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, tx)
	})
}

// CreateTx creates an attempt within a transaction.
func (r *verificationRepository) CreateTx(ctx context.Context, tx interface{}, v *model.Verification) error {
	txDB := tx.(*gorm.DB)
	return txDB.WithContext(ctx).Create(v).Error
}

// FindInFlightByUserTx finds a pending or processing attempt for the user
// with a row-level lock, or gorm.ErrRecordNotFound when none exists.
func (r *verificationRepository) FindInFlightByUserTx(ctx context.Context, tx interface{}, userID uint) (*model.Verification, error) {
	txDB := tx.(*gorm.DB)
	var v model.Verification
	if err := txDB.WithContext(ctx).Set("gorm:query_option", "FOR UPDATE").
		Where("user_id = ? AND status IN ?", userID, []model.VerificationStatus{
			model.VerificationStatusPending, "processing",
		}).
		First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"campusshare/internal/model"
)

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	// Transaction methods
	FindByIDTx(ctx context.Context, tx interface{}, id uint) (*model.User, error)
	UpdateVerificationTx(ctx context.Context, tx interface{}, id uint, verified bool, status model.VerificationStatus) error
	AddPointsTx(ctx context.Context, tx interface{}, id uint, delta int) error
	UpdateTierTx(ctx context.Context, tx interface{}, id uint, tier model.Tier) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateFields applies a partial update; unset fields retain previous values.
func (r *userRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// FindByIDTx finds a user within a transaction.
func (r *userRepository) FindByIDTx(ctx context.Context, tx interface{}, id uint) (*model.User, error) {
	txDB := tx.(*gorm.DB)
	var user model.User
	if err := txDB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateVerificationTx flips the verification flags within a transaction.
func (r *userRepository) UpdateVerificationTx(ctx context.Context, tx interface{}, id uint, verified bool, status model.VerificationStatus) error {
	txDB := tx.(*gorm.DB)
	return txDB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_verified":         verified,
			"verification_status": status,
		}).Error
}

// AddPointsTx atomically increments the user's points within a transaction.
func (r *userRepository) AddPointsTx(ctx context.Context, tx interface{}, id uint, delta int) error {
	txDB := tx.(*gorm.DB)
	return txDB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("points", gorm.Expr("points + ?", delta)).Error
}

// UpdateTierTx sets the user's tier within a transaction.
func (r *userRepository) UpdateTierTx(ctx context.Context, tx interface{}, id uint, tier model.Tier) error {
	txDB := tx.(*gorm.DB)
	return txDB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("tier", tier).Error
}

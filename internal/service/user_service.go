package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"campusshare/internal/cache"
	"campusshare/internal/errors"
	"campusshare/internal/model"
	"campusshare/internal/repository"
	"campusshare/internal/storage"
)

const publicProfileCacheTTL = 5 * time.Minute

// ProfileStats summarizes a user's exchange activity.
type ProfileStats struct {
	ItemsShared           int64 `json:"items_shared"`
	ItemsReceived         int64 `json:"items_received"`
	ActiveListings        int64 `json:"active_listings"`
	CompletedTransactions int64 `json:"completed_transactions"`
}

// PublicProfile is the subset of a user shown to others.
type PublicProfile struct {
	ID        uint       `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Campus    string     `json:"campus"`
	Tier      model.Tier `json:"tier"`
	Points    int        `json:"points"`
	AvatarURL string     `json:"avatar_url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`

	Stats ProfileStats `json:"stats"`
}

// UpdateProfileInput holds a partial profile update.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Campus    *string
	Avatar    *ImageUpload
}

// UserService handles profile operations.
type UserService interface {
	GetProfile(ctx context.Context, userID uint) (*model.User, *ProfileStats, error)
	UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*model.User, error)
	GetPublicProfile(ctx context.Context, userID uint) (*PublicProfile, error)
}

type userService struct {
	userRepo        repository.UserRepository
	itemRepo        repository.ItemRepository
	transactionRepo repository.TransactionRepository
	store           storage.ImageStore
	cache           *cache.Client
}

// NewUserService creates a new user service.
func NewUserService(
	userRepo repository.UserRepository,
	itemRepo repository.ItemRepository,
	transactionRepo repository.TransactionRepository,
	store storage.ImageStore,
	cache *cache.Client,
) UserService {
	return &userService{
		userRepo:        userRepo,
		itemRepo:        itemRepo,
		transactionRepo: transactionRepo,
		store:           store,
		cache:           cache,
	}
}

func (s *userService) stats(ctx context.Context, userID uint) (ProfileStats, error) {
	shared, err := s.transactionRepo.CountCompletedByDonor(ctx, userID)
	if err != nil {
		return ProfileStats{}, fmt.Errorf("count donations: %w", err)
	}
	received, err := s.transactionRepo.CountCompletedByReceiver(ctx, userID)
	if err != nil {
		return ProfileStats{}, fmt.Errorf("count received: %w", err)
	}
	active, err := s.itemRepo.CountActiveByOwner(ctx, userID)
	if err != nil {
		return ProfileStats{}, fmt.Errorf("count active listings: %w", err)
	}
	return ProfileStats{
		ItemsShared:           shared,
		ItemsReceived:         received,
		ActiveListings:        active,
		CompletedTransactions: shared + received,
	}, nil
}

// GetProfile returns the user's own profile with activity stats.
func (s *userService) GetProfile(ctx context.Context, userID uint) (*model.User, *ProfileStats, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, errors.ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	stats, err := s.stats(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return user, &stats, nil
}

// UpdateProfile applies a partial update; a new avatar replaces the old one
// in storage.
func (s *userService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	fields := map[string]interface{}{}
	if in.FirstName != nil {
		fields["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		fields["last_name"] = *in.LastName
	}
	if in.Campus != nil {
		fields["campus"] = *in.Campus
	}
	if in.Avatar != nil {
		if user.AvatarURL != "" {
			if err := s.store.Delete(ctx, user.AvatarURL); err != nil {
				log.Printf("delete old avatar %s: %v", user.AvatarURL, err)
			}
		}
		path, err := s.store.Store(ctx, "avatars", in.Avatar.Filename, in.Avatar.Data)
		if err != nil {
			return nil, fmt.Errorf("store avatar: %w", err)
		}
		fields["avatar_url"] = path
	}

	if err := s.userRepo.UpdateFields(ctx, userID, fields); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	_ = s.cache.Delete(ctx, s.profileCacheKey(userID))

	return s.userRepo.FindByID(ctx, userID)
}

func (s *userService) profileCacheKey(userID uint) string {
	return fmt.Sprintf("profile:%d", userID)
}

// GetPublicProfile returns the public subset of a user with caching.
func (s *userService) GetPublicProfile(ctx context.Context, userID uint) (*PublicProfile, error) {
	// Try cache first
	if data, _ := s.cache.Get(ctx, s.profileCacheKey(userID)); data != nil {
		var cached PublicProfile
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	stats, err := s.stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &PublicProfile{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Campus:    user.Campus,
		Tier:      user.Tier,
		Points:    user.Points,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
		Stats:     stats,
	}

	if payload, err := json.Marshal(profile); err == nil {
		_ = s.cache.Set(ctx, s.profileCacheKey(userID), payload, publicProfileCacheTTL)
	}

	return profile, nil
}

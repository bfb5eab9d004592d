package service

import (
	"context"
	"fmt"

	"campusshare/internal/model"
	"campusshare/internal/repository"
)

// RewardService accrues points and keeps the derived tier in sync. Points
// only grow; there is no cap and no decay.
type RewardService interface {
	AwardTx(ctx context.Context, tx interface{}, userID uint, points int) (*model.User, error)
	TierFor(points int) model.Tier
}

type rewardService struct {
	userRepo        repository.UserRepository
	silverThreshold int
	goldThreshold   int
}

// NewRewardService creates a new reward service.
func NewRewardService(userRepo repository.UserRepository, silverThreshold, goldThreshold int) RewardService {
	return &rewardService{
		userRepo:        userRepo,
		silverThreshold: silverThreshold,
		goldThreshold:   goldThreshold,
	}
}

// AwardTx adds points to the user and recomputes the tier within the given
// database transaction. The recomputation runs after every award and is
// idempotent.
func (s *rewardService) AwardTx(ctx context.Context, tx interface{}, userID uint, points int) (*model.User, error) {
	if err := s.userRepo.AddPointsTx(ctx, tx, userID, points); err != nil {
		return nil, fmt.Errorf("add points: %w", err)
	}

	user, err := s.userRepo.FindByIDTx(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}

	tier := s.TierFor(user.Points)
	if err := s.userRepo.UpdateTierTx(ctx, tx, userID, tier); err != nil {
		return nil, fmt.Errorf("update tier: %w", err)
	}
	user.Tier = tier

	return user, nil
}

// TierFor maps accumulated points to a tier by fixed thresholds.
func (s *rewardService) TierFor(points int) model.Tier {
	switch {
	case points >= s.goldThreshold:
		return model.TierGold
	case points >= s.silverThreshold:
		return model.TierSilver
	default:
		return model.TierBronze
	}
}

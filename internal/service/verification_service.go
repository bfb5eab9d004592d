package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"gorm.io/gorm"

	"campusshare/internal/errors"
	"campusshare/internal/model"
	"campusshare/internal/repository"
	"campusshare/internal/storage"
)

// SubmitResult carries what the UI needs to display after a submission.
type SubmitResult struct {
	Status       model.VerificationStatus `json:"status"`
	Score        float64                  `json:"ai_confidence"`
	Message      string                   `json:"message"`
	Verification *model.Verification      `json:"verification,omitempty"`
}

// StatusResult is the read-only view of the latest verification attempt.
// Status is "none" when the user never submitted.
type StatusResult struct {
	Status          model.VerificationStatus `json:"status"`
	Score           float64                  `json:"ai_confidence,omitempty"`
	RejectionReason string                   `json:"rejection_reason,omitempty"`
	Message         string                   `json:"message,omitempty"`
	Verification    *model.Verification      `json:"verification,omitempty"`
	UserVerified    bool                     `json:"user_verified"`
}

// VerificationService gates users through identity verification. One attempt
// may be in flight per user; rejected users may resubmit immediately.
type VerificationService interface {
	Submit(ctx context.Context, userID uint, filename string, image []byte) (*SubmitResult, error)
	Status(ctx context.Context, userID uint) (*StatusResult, error)
}

type verificationService struct {
	userRepo         repository.UserRepository
	verificationRepo repository.VerificationRepository
	store            storage.ImageStore
	scorer           *TrustScorer
	clock            Clock
	// Mutex map for per-user locking
	userMutexes sync.Map
}

// NewVerificationService creates a new verification service.
func NewVerificationService(
	userRepo repository.UserRepository,
	verificationRepo repository.VerificationRepository,
	store storage.ImageStore,
	scorer *TrustScorer,
	clock Clock,
) VerificationService {
	return &verificationService{
		userRepo:         userRepo,
		verificationRepo: verificationRepo,
		store:            store,
		scorer:           scorer,
		clock:            clock,
	}
}

// getMutex returns a mutex for a specific user ID.
func (s *verificationService) getMutex(userID uint) *sync.Mutex {
	value, _ := s.userMutexes.LoadOrStore(userID, &sync.Mutex{})
	return value.(*sync.Mutex)
}

// Submit runs one verification attempt: precondition checks, image storage,
// scoring, record creation and the user flag flip, atomically per user.
func (s *verificationService) Submit(ctx context.Context, userID uint, filename string, image []byte) (*SubmitResult, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	// Already verified is an idempotent success, not an error; no new
	// record is created.
	if user.IsVerified {
		return &SubmitResult{
			Status:  model.VerificationStatusApproved,
			Score:   99.0,
			Message: "Your account is already verified.",
		}, nil
	}

	mutex := s.getMutex(userID)
	mutex.Lock()
	defer mutex.Unlock()

	probe := ImageProbe{SizeBytes: int64(len(image))}
	if dims, ok := storage.ProbeDimensions(image); ok {
		probe.Width = dims.Width
		probe.Height = dims.Height
		probe.DimensionsReadable = true
	}

	var verification *model.Verification
	var result ScoreResult

	err = s.verificationRepo.WithTransaction(ctx, func(ctx context.Context, tx interface{}) error {
		if _, err := s.verificationRepo.FindInFlightByUserTx(ctx, tx, userID); err == nil {
			return errors.ErrVerificationInFlight
		} else if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("check in-flight verification: %w", err)
		}

		path, err := s.store.Store(ctx, "verifications", filename, image)
		if err != nil {
			return fmt.Errorf("store id image: %w", err)
		}

		result = s.scorer.Score(user, probe)
		now := s.clock()

		status := model.VerificationStatusRejected
		rejectionReason := strings.Join(result.Reasons, " ")
		if result.Approved {
			status = model.VerificationStatusApproved
			rejectionReason = ""
		}

		verification = &model.Verification{
			UserID:          userID,
			IDImagePath:     path,
			Status:          status,
			AIConfidence:    result.Score,
			RejectionReason: rejectionReason,
			SubmittedAt:     now,
			ReviewedAt:      &now,
		}
		if err := s.verificationRepo.CreateTx(ctx, tx, verification); err != nil {
			return fmt.Errorf("create verification: %w", err)
		}

		if err := s.userRepo.UpdateVerificationTx(ctx, tx, userID, result.Approved, status); err != nil {
			return fmt.Errorf("update user verification: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	message := "Your campus ID has been verified successfully!"
	if !result.Approved {
		message = "Verification failed. " + strings.Join(result.Reasons, " ")
	}

	return &SubmitResult{
		Status:       verification.Status,
		Score:        result.Score,
		Message:      message,
		Verification: verification,
	}, nil
}

// Status returns the latest attempt, read-only.
func (s *verificationService) Status(ctx context.Context, userID uint) (*StatusResult, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	verification, err := s.verificationRepo.FindLatestByUser(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &StatusResult{
				Status:       model.VerificationStatusNone,
				Message:      "No verification request found.",
				UserVerified: user.IsVerified,
			}, nil
		}
		return nil, fmt.Errorf("find latest verification: %w", err)
	}

	return &StatusResult{
		Status:          verification.Status,
		Score:           verification.AIConfidence,
		RejectionReason: verification.RejectionReason,
		Verification:    verification,
		UserVerified:    user.IsVerified,
	}, nil
}

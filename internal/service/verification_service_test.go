package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"campusshare/internal/errors"
	"campusshare/internal/model"
)

func newTestVerificationService(
	userRepo *MockUserRepository,
	verificationRepo *MockVerificationRepository,
	store *MockImageStore,
	bonus float64,
) VerificationService {
	scorer := NewTrustScorer(testEmailDomain, testIDPattern, testThreshold, fixedBonus(bonus))
	return NewVerificationService(userRepo, verificationRepo, store, scorer,
		fixedClock(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)))
}

func TestVerificationService_Submit_AlreadyVerified(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockUsers.On("FindByID", mock.Anything, uint(1)).Return(&model.User{
		ID:         1,
		IsVerified: true,
	}, nil)

	svc := newTestVerificationService(mockUsers, new(MockVerificationRepository), new(MockImageStore), 5.0)
	result, err := svc.Submit(context.Background(), 1, "id.jpg", []byte("image"))

	assert.NoError(t, err)
	assert.Equal(t, model.VerificationStatusApproved, result.Status)
	assert.Equal(t, "Your account is already verified.", result.Message)
	assert.Nil(t, result.Verification)
	mockUsers.AssertExpectations(t)
}

func TestVerificationService_Submit_InFlightConflict(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockUsers.On("FindByID", mock.Anything, uint(1)).Return(validUser(), nil)

	mockVerifications := new(MockVerificationRepository)
	mockVerifications.On("FindInFlightByUserTx", mock.Anything, nil, uint(1)).
		Return(&model.Verification{Status: model.VerificationStatusPending}, nil)

	svc := newTestVerificationService(mockUsers, mockVerifications, new(MockImageStore), 5.0)
	result, err := svc.Submit(context.Background(), 1, "id.jpg", []byte("image"))

	assert.ErrorIs(t, err, errors.ErrVerificationInFlight)
	assert.Nil(t, result)
	mockVerifications.AssertExpectations(t)
}

func TestVerificationService_Submit_Approved(t *testing.T) {
	user := validUser()
	user.ID = 1

	mockUsers := new(MockUserRepository)
	mockUsers.On("FindByID", mock.Anything, uint(1)).Return(user, nil)
	mockUsers.On("UpdateVerificationTx", mock.Anything, nil, uint(1), true, model.VerificationStatusApproved).Return(nil)

	mockVerifications := new(MockVerificationRepository)
	mockVerifications.On("FindInFlightByUserTx", mock.Anything, nil, uint(1)).
		Return(nil, gorm.ErrRecordNotFound)
	mockVerifications.On("CreateTx", mock.Anything, nil, mock.AnythingOfType("*model.Verification")).Return(nil)

	mockStore := new(MockImageStore)
	mockStore.On("Store", mock.Anything, "verifications", "id.jpg", mock.Anything).
		Return("verifications/abc.jpg", nil)

	// 250 KB of undecodable bytes: size check passes, dimension check is a
	// soft failure, total is 80 and clears the threshold.
	image := bytes.Repeat([]byte{0xAB}, 250_000)

	svc := newTestVerificationService(mockUsers, mockVerifications, mockStore, 5.0)
	result, err := svc.Submit(context.Background(), 1, "id.jpg", image)

	assert.NoError(t, err)
	assert.Equal(t, model.VerificationStatusApproved, result.Status)
	assert.InDelta(t, 80.0, result.Score, 0.001)
	assert.Equal(t, "Your campus ID has been verified successfully!", result.Message)
	assert.NotNil(t, result.Verification)
	assert.Equal(t, "verifications/abc.jpg", result.Verification.IDImagePath)
	assert.Empty(t, result.Verification.RejectionReason)
	assert.NotNil(t, result.Verification.ReviewedAt)
	mockUsers.AssertExpectations(t)
	mockVerifications.AssertExpectations(t)
	mockStore.AssertExpectations(t)
}

func TestVerificationService_Submit_Rejected(t *testing.T) {
	user := &model.User{
		ID:        2,
		Email:     "someone@example.com",
		StudentID: "abc",
		UserType:  "visitor",
	}

	mockUsers := new(MockUserRepository)
	mockUsers.On("FindByID", mock.Anything, uint(2)).Return(user, nil)
	mockUsers.On("UpdateVerificationTx", mock.Anything, nil, uint(2), false, model.VerificationStatusRejected).Return(nil)

	mockVerifications := new(MockVerificationRepository)
	mockVerifications.On("FindInFlightByUserTx", mock.Anything, nil, uint(2)).
		Return(nil, gorm.ErrRecordNotFound)
	mockVerifications.On("CreateTx", mock.Anything, nil, mock.AnythingOfType("*model.Verification")).Return(nil)

	mockStore := new(MockImageStore)
	mockStore.On("Store", mock.Anything, "verifications", "id.jpg", mock.Anything).
		Return("verifications/def.jpg", nil)

	svc := newTestVerificationService(mockUsers, mockVerifications, mockStore, 5.0)
	result, err := svc.Submit(context.Background(), 2, "id.jpg", []byte("tiny"))

	assert.NoError(t, err)
	assert.Equal(t, model.VerificationStatusRejected, result.Status)
	assert.InDelta(t, 5.0, result.Score, 0.001)
	assert.Contains(t, result.Message, "Verification failed.")
	assert.NotEmpty(t, result.Verification.RejectionReason)
	mockUsers.AssertExpectations(t)
	mockVerifications.AssertExpectations(t)
}

func TestVerificationService_Status(t *testing.T) {
	t.Run("no attempt yet", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)

		mockVerifications := new(MockVerificationRepository)
		mockVerifications.On("FindLatestByUser", mock.Anything, uint(1)).
			Return(nil, gorm.ErrRecordNotFound)

		svc := newTestVerificationService(mockUsers, mockVerifications, new(MockImageStore), 5.0)
		result, err := svc.Status(context.Background(), 1)

		assert.NoError(t, err)
		assert.Equal(t, model.VerificationStatusNone, result.Status)
		assert.False(t, result.UserVerified)
		assert.Equal(t, "No verification request found.", result.Message)
	})

	t.Run("latest attempt returned", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1, IsVerified: false}, nil)

		mockVerifications := new(MockVerificationRepository)
		mockVerifications.On("FindLatestByUser", mock.Anything, uint(1)).Return(&model.Verification{
			UserID:          1,
			Status:          model.VerificationStatusRejected,
			AIConfidence:    42.5,
			RejectionReason: "Email is not from the institutional domain (@minsu.edu.ph).",
		}, nil)

		svc := newTestVerificationService(mockUsers, mockVerifications, new(MockImageStore), 5.0)
		result, err := svc.Status(context.Background(), 1)

		assert.NoError(t, err)
		assert.Equal(t, model.VerificationStatusRejected, result.Status)
		assert.InDelta(t, 42.5, result.Score, 0.001)
		assert.NotEmpty(t, result.RejectionReason)
		assert.False(t, result.UserVerified)
	})

	t.Run("user not found", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("FindByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

		svc := newTestVerificationService(mockUsers, new(MockVerificationRepository), new(MockImageStore), 5.0)
		result, err := svc.Status(context.Background(), 99)

		assert.ErrorIs(t, err, errors.ErrUserNotFound)
		assert.Nil(t, result)
	})
}

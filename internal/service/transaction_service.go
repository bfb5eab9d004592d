package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campusshare/internal/errors"
	"campusshare/internal/model"
	"campusshare/internal/notify"
	"campusshare/internal/repository"
	"campusshare/internal/storage"
)

// Participant is the actor's role on a transaction, computed once per
// operation instead of repeating donor/receiver ID comparisons inline.
type Participant int

const (
	ParticipantNone Participant = iota
	ParticipantDonor
	ParticipantReceiver
)

func participantOf(t *model.Transaction, userID uint) Participant {
	switch userID {
	case t.DonorID:
		return ParticipantDonor
	case t.ReceiverID:
		return ParticipantReceiver
	default:
		return ParticipantNone
	}
}

// counterpartID returns the other party's user ID.
func counterpartID(t *model.Transaction, userID uint) uint {
	if userID == t.DonorID {
		return t.ReceiverID
	}
	return t.DonorID
}

// TransactionService drives the donor/receiver handoff state machine:
// requested -> approved -> meeting -> completed, with cancelled reachable
// from every non-terminal state.
type TransactionService interface {
	Request(ctx context.Context, receiverID uint, itemID uuid.UUID) (*model.Transaction, error)
	Get(ctx context.Context, actorID uint, id uuid.UUID) (*model.Transaction, error)
	Approve(ctx context.Context, actorID uint, id uuid.UUID) (*model.Transaction, error)
	StartMeeting(ctx context.Context, actorID uint, id uuid.UUID) (*model.Transaction, error)
	Complete(ctx context.Context, actorID uint, id uuid.UUID) (*model.Transaction, error)
	UploadProof(ctx context.Context, actorID uint, id uuid.UUID, filename string, image []byte) (*model.Transaction, error)
	Cancel(ctx context.Context, actorID uint, id uuid.UUID) (*model.Transaction, error)
	MyRequests(ctx context.Context, userID uint, page, perPage int) ([]model.Transaction, int64, error)
	MyDonations(ctx context.Context, userID uint, page, perPage int) ([]model.Transaction, int64, error)
}

type transactionService struct {
	transactionRepo repository.TransactionRepository
	itemRepo        repository.ItemRepository
	userRepo        repository.UserRepository
	rewards         RewardService
	store           storage.ImageStore
	sink            notify.Sink
	clock           Clock
	donorPoints     int
	receiverPoints  int
	// Mutex maps for per-item and per-transaction locking
	itemMutexes sync.Map
	txnMutexes  sync.Map
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(
	transactionRepo repository.TransactionRepository,
	itemRepo repository.ItemRepository,
	userRepo repository.UserRepository,
	rewards RewardService,
	store storage.ImageStore,
	sink notify.Sink,
	clock Clock,
	donorPoints, receiverPoints int,
) TransactionService {
	return &transactionService{
		transactionRepo: transactionRepo,
		itemRepo:        itemRepo,
		userRepo:        userRepo,
		rewards:         rewards,
		store:           store,
		sink:            sink,
		clock:           clock,
		donorPoints:     donorPoints,
		receiverPoints:  receiverPoints,
	}
}

func (s *transactionService) itemMutex(itemID uuid.UUID) *sync.Mutex {
	value, _ := s.itemMutexes.LoadOrStore(itemID.String(), &sync.Mutex{})
	return value.(*sync.Mutex)
}

func (s *transactionService) txnMutex(id uuid.UUID) *sync.Mutex {
	value, _ := s.txnMutexes.LoadOrStore(id.String(), &sync.Mutex{})
	return value.(*sync.Mutex)
}

// Request creates a transaction for an active item and reserves the item.
// The read-check-write on item status is serialized per item so concurrent
// requests cannot both win.
func (s *transactionService) Request(ctx context.Context, receiverID uint, itemID uuid.UUID) (*model.Transaction, error) {
	mutex := s.itemMutex(itemID)
	mutex.Lock()
	defer mutex.Unlock()

	var txn *model.Transaction
	err := s.transactionRepo.WithTransaction(ctx, func(ctx context.Context, tx interface{}) error {
		item, err := s.itemRepo.FindByIDForUpdateTx(ctx, tx, itemID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrItemNotFound
			}
			return fmt.Errorf("lock item: %w", err)
		}

		if item.UserID == receiverID {
			return errors.ErrCannotRequestOwnItem
		}

		exists, err := s.transactionRepo.ExistsOpenForItemAndReceiverTx(ctx, tx, itemID, receiverID)
		if err != nil {
			return fmt.Errorf("check existing request: %w", err)
		}
		if exists {
			return errors.ErrAlreadyRequested
		}

		if item.Status != model.ItemStatusActive {
			return errors.ErrItemNotAvailable
		}

		txn = &model.Transaction{
			ItemID:         itemID,
			DonorID:        item.UserID,
			ReceiverID:     receiverID,
			Status:         model.TransactionStatusRequested,
			MeetupLocation: item.MeetupLocation,
			RequestedAt:    s.clock(),
		}
		if err := s.transactionRepo.CreateTx(ctx, tx, txn); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}

		if err := s.itemRepo.UpdateStatusTx(ctx, tx, itemID, model.ItemStatusReserved); err != nil {
			return fmt.Errorf("reserve item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyUser(ctx, txn.DonorID, "item_request", "New Item Request",
		"Your item has received a new request.", txn)

	return s.transactionRepo.FindByID(ctx, txn.ID)
}

// Get returns a transaction. Only participants or an admin may view it.
func (s *transactionService) Get(ctx context.Context, actorID uint, id uuid.UUID) (*model.Transaction, error) {
	txn, err := s.findTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if participantOf(txn, actorID) == ParticipantNone {
		actor, err := s.userRepo.FindByID(ctx, actorID)
		if err != nil || !actor.IsAdmin() {
			return nil, errors.ErrForbidden
		}
	}
	return txn, nil
}

// Approve moves requested -> approved. Donor only.
func (s *transactionService) Approve(ctx context.Context, actorID uint, id uuid.UUID) (*model.Transaction, error) {
	txn, err := s.transition(ctx, id, "approve", func(t *model.Transaction) error {
		if participantOf(t, actorID) != ParticipantDonor {
			return errors.ErrForbidden
		}
		if t.Status != model.TransactionStatusRequested {
			return &errors.InvalidTransitionError{Status: string(t.Status), Action: "approve"}
		}
		now := s.clock()
		t.Status = model.TransactionStatusApproved
		t.ApprovedAt = &now
		return nil
	}, nil)
	if err != nil {
		return nil, err
	}

	s.notifyUser(ctx, txn.ReceiverID, "request_approved", "Request Approved",
		"Your item request has been approved!", txn)
	return txn, nil
}

// StartMeeting moves approved -> meeting. Either participant.
func (s *transactionService) StartMeeting(ctx context.Context, actorID uint, id uuid.UUID) (*model.Transaction, error) {
	return s.transition(ctx, id, "start meeting", func(t *model.Transaction) error {
		if participantOf(t, actorID) == ParticipantNone {
			return errors.ErrForbidden
		}
		if t.Status != model.TransactionStatusApproved {
			return &errors.InvalidTransitionError{Status: string(t.Status), Action: "start meeting"}
		}
		t.Status = model.TransactionStatusMeeting
		return nil
	}, nil)
}

// Complete moves approved/meeting -> completed, marks the item completed and
// awards points to both parties. The check-and-set plus the coupled writes
// run in one database transaction, so a concurrent second complete observes
// the terminal state and points are awarded exactly once.
func (s *transactionService) Complete(ctx context.Context, actorID uint, id uuid.UUID) (*model.Transaction, error) {
	txn, err := s.transition(ctx, id, "complete", func(t *model.Transaction) error {
		if participantOf(t, actorID) == ParticipantNone {
			return errors.ErrForbidden
		}
		if t.Status != model.TransactionStatusApproved && t.Status != model.TransactionStatusMeeting {
			return &errors.InvalidTransitionError{Status: string(t.Status), Action: "complete"}
		}
		now := s.clock()
		t.Status = model.TransactionStatusCompleted
		t.CompletedAt = &now
		return nil
	}, func(ctx context.Context, tx interface{}, t *model.Transaction) error {
		if err := s.itemRepo.UpdateStatusTx(ctx, tx, t.ItemID, model.ItemStatusCompleted); err != nil {
			return fmt.Errorf("complete item: %w", err)
		}
		if _, err := s.rewards.AwardTx(ctx, tx, t.DonorID, s.donorPoints); err != nil {
			return fmt.Errorf("award donor: %w", err)
		}
		if _, err := s.rewards.AwardTx(ctx, tx, t.ReceiverID, s.receiverPoints); err != nil {
			return fmt.Errorf("award receiver: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyUser(ctx, counterpartID(txn, actorID), "transaction_completed", "Transaction Completed",
		"The transaction has been completed.", txn)
	return txn, nil
}

// UploadProof attaches a proof photo. Either participant, while the
// transaction is approved or meeting; no state change.
func (s *transactionService) UploadProof(ctx context.Context, actorID uint, id uuid.UUID, filename string, image []byte) (*model.Transaction, error) {
	txn, err := s.findTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if participantOf(txn, actorID) == ParticipantNone {
		return nil, errors.ErrForbidden
	}
	if txn.Status != model.TransactionStatusApproved && txn.Status != model.TransactionStatusMeeting {
		return nil, &errors.InvalidTransitionError{Status: string(txn.Status), Action: "upload proof"}
	}

	path, err := s.store.Store(ctx, "proofs", filename, image)
	if err != nil {
		return nil, fmt.Errorf("store proof photo: %w", err)
	}

	txn.ProofPhotoPath = path
	if err := s.transactionRepo.Update(ctx, txn); err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return txn, nil
}

// Cancel moves any non-terminal state -> cancelled and makes the item
// available again.
func (s *transactionService) Cancel(ctx context.Context, actorID uint, id uuid.UUID) (*model.Transaction, error) {
	txn, err := s.transition(ctx, id, "cancel", func(t *model.Transaction) error {
		if participantOf(t, actorID) == ParticipantNone {
			return errors.ErrForbidden
		}
		if t.Status.Terminal() {
			return &errors.InvalidTransitionError{Status: string(t.Status), Action: "cancel"}
		}
		t.Status = model.TransactionStatusCancelled
		return nil
	}, func(ctx context.Context, tx interface{}, t *model.Transaction) error {
		if err := s.itemRepo.UpdateStatusTx(ctx, tx, t.ItemID, model.ItemStatusActive); err != nil {
			return fmt.Errorf("release item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyUser(ctx, counterpartID(txn, actorID), "transaction_cancelled", "Transaction Cancelled",
		"The transaction has been cancelled.", txn)
	return txn, nil
}

// MyRequests lists the user's requests as receiver.
func (s *transactionService) MyRequests(ctx context.Context, userID uint, page, perPage int) ([]model.Transaction, int64, error) {
	return s.transactionRepo.ListByReceiver(ctx, userID, page, perPage)
}

// MyDonations lists the user's donations as donor.
func (s *transactionService) MyDonations(ctx context.Context, userID uint, page, perPage int) ([]model.Transaction, int64, error) {
	return s.transactionRepo.ListByDonor(ctx, userID, page, perPage)
}

// transition serializes a guarded state change per transaction: it locks the
// row, applies the guard mutation, persists it, and runs optional coupled
// effects inside the same database transaction.
func (s *transactionService) transition(
	ctx context.Context,
	id uuid.UUID,
	action string,
	mutate func(t *model.Transaction) error,
	effects func(ctx context.Context, tx interface{}, t *model.Transaction) error,
) (*model.Transaction, error) {
	mutex := s.txnMutex(id)
	mutex.Lock()
	defer mutex.Unlock()

	var txn *model.Transaction
	err := s.transactionRepo.WithTransaction(ctx, func(ctx context.Context, tx interface{}) error {
		t, err := s.transactionRepo.FindByIDForUpdateTx(ctx, tx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrTransactionNotFound
			}
			return fmt.Errorf("lock transaction: %w", err)
		}

		if err := mutate(t); err != nil {
			return err
		}

		if err := s.transactionRepo.UpdateTx(ctx, tx, t); err != nil {
			return fmt.Errorf("%s transaction: %w", action, err)
		}

		if effects != nil {
			if err := effects(ctx, tx, t); err != nil {
				return err
			}
		}

		txn = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *transactionService) findTransaction(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	txn, err := s.transactionRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return txn, nil
}

// notifyUser emits a fire-and-forget notification; failures never roll back
// the transition they accompany.
func (s *transactionService) notifyUser(ctx context.Context, userID uint, eventType, title, body string, txn *model.Transaction) {
	s.sink.Notify(ctx, notify.Event{
		UserID:      userID,
		Type:        eventType,
		Title:       title,
		Body:        body,
		DeepLink:    "/browseitem/" + txn.ItemID.String(),
		RelatedID:   txn.ID.String(),
		RelatedType: "transaction",
	})
}

// Package notify delivers user notifications. Delivery is fire-and-forget:
// a failed write must never roll back the state transition it accompanies.
package notify

import (
	"context"
	"encoding/json"
	"log"

	"campusshare/internal/model"
	"campusshare/internal/repository"
)

// Event is one notification to a user.
type Event struct {
	UserID      uint   `json:"user_id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	DeepLink    string `json:"deep_link,omitempty"`
	RelatedID   string `json:"related_id,omitempty"`
	RelatedType string `json:"related_type,omitempty"`
}

// Sink accepts notification events. Implementations swallow their own errors.
type Sink interface {
	Notify(ctx context.Context, ev Event)
}

// Service writes notifications to the database and mirrors them onto a
// Kafka topic when a producer is configured.
type Service struct {
	repo     repository.NotificationRepository
	producer *Producer
}

// NewSink creates the default notification sink. producer may be nil.
func NewSink(repo repository.NotificationRepository, producer *Producer) *Service {
	return &Service{repo: repo, producer: producer}
}

// Notify persists the notification row and publishes the event. Errors are
// logged and dropped.
func (s *Service) Notify(ctx context.Context, ev Event) {
	n := &model.Notification{
		UserID:      ev.UserID,
		Type:        ev.Type,
		Title:       ev.Title,
		Body:        ev.Body,
		DeepLink:    ev.DeepLink,
		RelatedID:   ev.RelatedID,
		RelatedType: ev.RelatedType,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		log.Printf("notify: store notification for user %d: %v", ev.UserID, err)
	}

	if s.producer == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("notify: marshal event: %v", err)
		return
	}
	if err := s.producer.Publish([]byte(ev.Type), payload); err != nil {
		log.Printf("notify: publish event: %v", err)
	}
}

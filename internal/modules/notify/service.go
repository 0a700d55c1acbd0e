package notify

import (
	"context"
	"log"

	"github.com/google/uuid"

	"cutline/internal/domain"
	"cutline/internal/pkg/push"
)

// DispatchResult summarizes one notify call. NoRecipients means the
// account resolved but had no usable tokens; it is an outcome, not an
// error.
type DispatchResult struct {
	Delivered    int
	Failed       int
	Recorded     int
	NoRecipients bool
}

// Service is the notification dispatcher. Every failure inside it is
// logged and contained: a lost push must never fail the state
// transition that requested it.
type Service struct {
	users   UserGetter
	records Recorder
	pusher  Pusher
	pruner  TokenPruner
}

func NewService(users UserGetter, records Recorder, pusher Pusher, pruner TokenPruner) *Service {
	return &Service{
		users:   users,
		records: records,
		pusher:  pusher,
		pruner:  pruner,
	}
}

// Dispatch resolves the recipient's tokens, persists the in-app
// record, multicasts the push and feeds dead tokens back for pruning.
func (s *Service) Dispatch(ctx context.Context, recipientID string, event Event) DispatchResult {
	user, err := s.users.GetByID(ctx, recipientID)
	if err != nil {
		log.Printf("notify: recipient not found user_id=%s type=%s err=%v", recipientID, event.Type, err)
		return DispatchResult{NoRecipients: true}
	}

	tokens := user.ValidPushTokens()
	if len(tokens) == 0 {
		log.Printf("notify: no valid tokens user_id=%s type=%s", recipientID, event.Type)
		return DispatchResult{NoRecipients: true}
	}

	result := DispatchResult{}

	record := &domain.Notification{
		ID:           uuid.NewString(),
		UserID:       recipientID,
		Type:         event.Type,
		Title:        event.Title,
		Body:         event.Body,
		BookingID:    event.BookingID,
		SalonID:      event.SalonID,
		CustomerName: event.CustomerName,
	}
	if err := s.records.Create(ctx, record); err != nil {
		log.Printf("notify: recording failed user_id=%s type=%s err=%v", recipientID, event.Type, err)
	} else {
		result.Recorded = 1
	}

	responses, err := s.pusher.SendMulticast(ctx, tokens, push.Message{
		Title: event.Title,
		Body:  event.Body,
		Data:  event.payload(),
	})
	if err != nil {
		log.Printf("notify: push send failed user_id=%s type=%s tokens=%d err=%v",
			recipientID, event.Type, len(tokens), err)
		result.Failed = len(tokens)
		return result
	}

	var dead []string
	for _, r := range responses {
		if r.Success {
			result.Delivered++
			continue
		}
		result.Failed++
		if r.ShouldPrune() && r.Token != "" {
			dead = append(dead, r.Token)
		}
	}

	if len(dead) > 0 {
		if err := s.pruner.PruneInvalid(ctx, recipientID, dead); err != nil {
			log.Printf("notify: token pruning failed user_id=%s tokens=%d err=%v", recipientID, len(dead), err)
		}
	}

	log.Printf("notify: dispatched user_id=%s type=%s delivered=%d failed=%d",
		recipientID, event.Type, result.Delivered, result.Failed)
	return result
}

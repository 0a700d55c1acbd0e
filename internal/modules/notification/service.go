package notification

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"cutline/internal/domain"
)

var ErrNotFound = errors.New("notification not found")

const defaultListLimit = 50

// Store is the slice of the notification repository the API needs.
type Store interface {
	GetByUserID(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, id, userID string) error
	MarkAllAsRead(ctx context.Context, userID string) error
}

// Service serves a user's in-app notification feed. Records are
// written by the dispatcher; this side only reads and flips the read
// flag.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	return s.store.GetByUserID(ctx, userID, limit)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.store.CountUnread(ctx, userID)
}

// MarkRead flips one notification to read. The user id scopes the
// write, so one user cannot mark another's notifications.
func (s *Service) MarkRead(ctx context.Context, id, userID string) error {
	err := s.store.MarkAsRead(ctx, id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.store.MarkAllAsRead(ctx, userID)
}

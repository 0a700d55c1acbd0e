package notify

import (
	"context"

	"cutline/internal/domain"
	"cutline/internal/pkg/push"
)

// UserGetter loads the recipient account with its token fields.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Recorder persists the in-app notification record.
type Recorder interface {
	Create(ctx context.Context, n *domain.Notification) error
}

// Pusher is the push delivery gateway capability.
type Pusher interface {
	SendMulticast(ctx context.Context, tokens []string, msg push.Message) ([]push.SendResult, error)
}

// TokenPruner removes tokens the gateway reported as dead.
type TokenPruner interface {
	PruneInvalid(ctx context.Context, userID string, tokens []string) error
}

package tokens

import (
	"context"

	"cutline/internal/domain"
	"cutline/internal/repository"
)

// UserStore is the slice of the user repository the registry needs.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	FindByToken(ctx context.Context, token string) ([]domain.User, error)
	UpdateTokens(ctx context.Context, userID string, single *string, set domain.StringList) error
	RemoveTokens(ctx context.Context, removals []repository.TokenRemoval) error
}

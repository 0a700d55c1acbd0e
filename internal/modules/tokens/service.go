package tokens

import (
	"context"
	"errors"
	"log"
	"strings"

	"cutline/internal/domain"
	"cutline/internal/repository"
)

var ErrUserNotFound = errors.New("user not found")

// Service enforces the one-token-one-account invariant. Registration
// is idempotent and self-healing: if two accounts race on the same
// token, the later write wins and the next registration re-converges,
// so no lock spans accounts.
type Service struct {
	users UserStore
}

func NewService(users UserStore) *Service {
	return &Service{users: users}
}

// RegisterToken adds a token to the account's set (most recent first,
// capped) and strips the token from every other account holding it in
// either field, as one batch update.
func (s *Service) RegisterToken(ctx context.Context, userID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("empty token")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	set := make(domain.StringList, 0, domain.MaxPushTokens)
	set = append(set, token)
	for _, t := range user.FcmTokens {
		if t == token || strings.TrimSpace(t) == "" {
			continue
		}
		set = append(set, t)
		if len(set) == domain.MaxPushTokens {
			break
		}
	}

	if err := s.users.UpdateTokens(ctx, userID, user.FcmToken, set); err != nil {
		return err
	}

	return s.Reconcile(ctx, userID, set)
}

// Reconcile scans all other accounts for the given tokens and removes
// every collision. Safe to call on any token write; finding nothing is
// the common case and not an error.
func (s *Service) Reconcile(ctx context.Context, userID string, tokens []string) error {
	// otherUserID -> removal being built
	removals := map[string]*repository.TokenRemoval{}

	for _, token := range tokens {
		if strings.TrimSpace(token) == "" {
			continue
		}
		holders, err := s.users.FindByToken(ctx, token)
		if err != nil {
			return err
		}
		for i := range holders {
			other := &holders[i]
			if other.ID == userID {
				continue
			}
			rm, ok := removals[other.ID]
			if !ok {
				rm = &repository.TokenRemoval{UserID: other.ID}
				removals[other.ID] = rm
			}
			rm.Remove = append(rm.Remove, token)
			if other.FcmToken != nil && *other.FcmToken == token {
				rm.ClearSingle = true
			}
		}
	}

	if len(removals) == 0 {
		return nil
	}

	batch := make([]repository.TokenRemoval, 0, len(removals))
	for _, rm := range removals {
		batch = append(batch, *rm)
	}

	if err := s.users.RemoveTokens(ctx, batch); err != nil {
		return err
	}

	log.Printf("tokens: deduped user_id=%s cleaned=%d", userID, len(batch))
	return nil
}

// PruneInvalid removes gateway-rejected tokens from one account. This
// is the delivery-failure pruning path, distinct from collision
// cleanup: the singular legacy field is cleared too when it held a
// dead token.
func (s *Service) PruneInvalid(ctx context.Context, userID string, deadTokens []string) error {
	if len(deadTokens) == 0 {
		return nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	dead := make(map[string]bool, len(deadTokens))
	for _, t := range deadTokens {
		dead[t] = true
	}

	kept := make(domain.StringList, 0, len(user.FcmTokens))
	for _, t := range user.FcmTokens {
		if !dead[t] {
			kept = append(kept, t)
		}
	}

	single := user.FcmToken
	if single != nil && dead[*single] {
		single = nil
	}

	if err := s.users.UpdateTokens(ctx, userID, single, kept); err != nil {
		return err
	}

	log.Printf("tokens: pruned user_id=%s removed=%d", userID, len(deadTokens))
	return nil
}

// RemoveToken drops a token from the account on explicit logout.
func (s *Service) RemoveToken(ctx context.Context, userID, token string) error {
	return s.PruneInvalid(ctx, userID, []string{token})
}

package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"cutline/internal/domain"
)

// Resolver finds the owner and barber accounts behind a salon.
// Resolution is read-only: every step either yields verified owner
// users or a reason string for the log, never a write.
type Resolver struct {
	salons SalonGetter
	users  UserDirectory
}

func NewResolver(salons SalonGetter, users UserDirectory) *Resolver {
	return &Resolver{salons: salons, users: users}
}

// ResolveOwners walks the lookup chain for a salon's owner accounts:
//
//  1. the salon document's explicit owner id
//  2. the salon id itself as a user id (legacy single-doc salons)
//  3. users whose salon_id points back at the salon
//
// Each candidate is verified to exist and to carry the owner role
// before it counts. The returned step names which rung matched, for
// the log.
func (r *Resolver) ResolveOwners(ctx context.Context, salonID string) ([]domain.User, string, error) {
	salon, err := r.salons.GetByID(ctx, salonID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("resolve owners: load salon %s: %w", salonID, err)
		}
		// legacy single-doc salons have no salon row at all; the
		// remaining rungs still get their turn
		log.Printf("level=warn msg=\"salon row missing\" salon_id=%s", salonID)
		salon = nil
	}

	if salon != nil && salon.OwnerID != "" {
		if owner := r.verifiedOwner(ctx, salon.OwnerID); owner != nil {
			return []domain.User{*owner}, "salon_owner_field", nil
		}
		log.Printf("level=warn msg=\"owner field did not resolve\" salon_id=%s owner_id=%s", salonID, salon.OwnerID)
	}

	if owner := r.verifiedOwner(ctx, salonID); owner != nil {
		return []domain.User{*owner}, "salon_id_as_owner", nil
	}

	users, err := r.users.OwnersBySalonID(ctx, salonID)
	if err != nil {
		return nil, "", fmt.Errorf("resolve owners: legacy query for salon %s: %w", salonID, err)
	}
	if len(users) > 0 {
		return users, "legacy_salon_query", nil
	}
	return nil, "", nil
}

// verifiedOwner loads a candidate id and keeps it only if the account
// exists and is an owner. Lookup errors count as no match; the legacy
// query still gets its turn.
func (r *Resolver) verifiedOwner(ctx context.Context, userID string) *domain.User {
	u, err := r.users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil
	}
	if !u.IsOwner() {
		log.Printf("level=warn msg=\"owner candidate has wrong role\" user_id=%s role=%s", userID, u.Role)
		return nil
	}
	return u
}

// ResolveBarber matches a booking's requested barber name against the
// owner's staff, case-insensitively and ignoring surrounding
// whitespace. Returns nil when the booking asks for any barber or when
// no staff member matches.
func (r *Resolver) ResolveBarber(ctx context.Context, salonID string, b *domain.Booking) (*domain.User, error) {
	if !b.WantsBarber() {
		return nil, nil
	}

	ownerID := salonID
	if salon, err := r.salons.GetByID(ctx, salonID); err == nil && salon != nil && salon.OwnerID != "" {
		ownerID = salon.OwnerID
	}

	staff, err := r.users.BarbersByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("resolve barber: staff for owner %s: %w", ownerID, err)
	}

	want := strings.ToLower(strings.TrimSpace(b.BarberName))
	for i := range staff {
		if strings.ToLower(strings.TrimSpace(staff[i].Name)) == want {
			return &staff[i], nil
		}
	}
	return nil, nil
}

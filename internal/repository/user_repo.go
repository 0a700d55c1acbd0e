package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"cutline/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	tx := r.db.WithContext(ctx).First(&u, "id = ?", id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	tx := r.db.WithContext(ctx).First(&u, "email = ?", email)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &u, nil
}

// FindByToken returns every user holding the token in either the
// legacy singular field or the token set. The set is a JSON-encoded
// text column, so membership is a substring match on the quoted token.
func (r *UserRepository) FindByToken(ctx context.Context, token string) ([]domain.User, error) {
	var out []domain.User
	err := r.db.WithContext(ctx).
		Where(`fcm_token = ? OR fcm_tokens LIKE ?`, token, `%"`+token+`"%`).
		Find(&out).Error
	return out, err
}

// OwnersBySalonID is the legacy owner lookup: users whose salon_id
// field points at the salon and who hold the owner role. Last resort
// only, because the field can be stale.
func (r *UserRepository) OwnersBySalonID(ctx context.Context, salonID string) ([]domain.User, error) {
	var out []domain.User
	err := r.db.WithContext(ctx).
		Where("salon_id = ? AND role = ?", salonID, domain.RoleOwner).
		Find(&out).Error
	return out, err
}

// BarbersByOwner lists the barber accounts working for an owner.
func (r *UserRepository) BarbersByOwner(ctx context.Context, ownerID string) ([]domain.User, error) {
	var out []domain.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND owner_id = ?", domain.RoleBarber, ownerID).
		Find(&out).Error
	return out, err
}

// UpdateTokens replaces both token fields on one account.
func (r *UserRepository) UpdateTokens(ctx context.Context, userID string, single *string, set domain.StringList) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"fcm_token":  single,
			"fcm_tokens": set,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// TokenRemoval describes one account to strip during collision
// cleanup: which tokens leave the set and whether the singular field
// must be cleared.
type TokenRemoval struct {
	UserID      string
	Remove      []string
	ClearSingle bool
}

// RemoveTokens applies all collision removals as one transaction, the
// batch-write the registry contract requires.
func (r *UserRepository) RemoveTokens(ctx context.Context, removals []TokenRemoval) error {
	if len(removals) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rm := range removals {
			var u domain.User
			if err := tx.First(&u, "id = ?", rm.UserID).Error; err != nil {
				return err
			}

			drop := make(map[string]bool, len(rm.Remove))
			for _, t := range rm.Remove {
				drop[t] = true
			}

			kept := make(domain.StringList, 0, len(u.FcmTokens))
			for _, t := range u.FcmTokens {
				if !drop[t] {
					kept = append(kept, t)
				}
			}

			updates := map[string]any{
				"fcm_tokens": kept,
				"updated_at": time.Now(),
			}
			if rm.ClearSingle {
				updates["fcm_token"] = nil
			}

			if err := tx.Model(&domain.User{}).Where("id = ?", rm.UserID).Updates(updates).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateSalonID backfills an owner's salon reference.
func (r *UserRepository) UpdateSalonID(ctx context.Context, userID, salonID string) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{"salon_id": salonID, "updated_at": time.Now()}).Error
}

// OwnersPage pages through owner accounts in id order for backfills.
func (r *UserRepository) OwnersPage(ctx context.Context, limit, offset int) ([]domain.User, error) {
	var out []domain.User
	err := r.db.WithContext(ctx).
		Where("role = ?", domain.RoleOwner).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	return out, err
}

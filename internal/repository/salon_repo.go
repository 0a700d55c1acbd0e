package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cutline/internal/domain"
)

type SalonRepository struct {
	db *gorm.DB
}

func NewSalonRepository(db *gorm.DB) *SalonRepository {
	return &SalonRepository{db: db}
}

func (r *SalonRepository) Create(ctx context.Context, s *domain.Salon) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SalonRepository) GetByID(ctx context.Context, id string) (*domain.Salon, error) {
	var s domain.Salon
	tx := r.db.WithContext(ctx).First(&s, "id = ?", id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &s, nil
}

// IDByOwner finds the salon whose owner_id field points at the user.
// Empty string when no salon carries the reference.
func (r *SalonRepository) IDByOwner(ctx context.Context, ownerID string) (string, error) {
	var s domain.Salon
	tx := r.db.WithContext(ctx).First(&s, "owner_id = ?", ownerID)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", tx.Error
	}
	return s.ID, nil
}

func (r *SalonRepository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&domain.Salon{}).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// UpsertDailyStats writes one day's recomputed aggregates, replacing
// any previous row for the same salon and date.
func (r *SalonRepository) UpsertDailyStats(ctx context.Context, stats *domain.DailyStats) error {
	stats.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "salon_id"}, {Name: "date_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_bookings", "completed_bookings", "revenue", "tips", "service_charge", "updated_at",
		}),
	}).Create(stats).Error
}

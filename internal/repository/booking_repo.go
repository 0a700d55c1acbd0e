package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cutline/internal/domain"
)

// ErrTurnSlotTaken reports that another booking already holds the
// salon's single turn_ready slot. Raised by the partial unique index
// on queue_entries when two promotions race.
var ErrTurnSlotTaken = errors.New("turn_ready slot already taken")

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookingRepository) GetByID(ctx context.Context, salonID, bookingID string) (*domain.Booking, error) {
	var b domain.Booking
	tx := r.db.WithContext(ctx).
		Where("salon_id = ? AND id = ?", salonID, bookingID).
		First(&b)
	if tx.Error != nil {
		return nil, tx.Error
	}
	b.Normalize()
	return &b, nil
}

// EnsureMirror inserts the queue entry and customer mirror for a newly
// created booking. Returns false when the entry already exists, which
// marks the create event as a replay.
func (r *BookingRepository) EnsureMirror(ctx context.Context, b *domain.Booking) (bool, error) {
	claimed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&domain.QueueEntry{
			SalonID:      b.SalonID,
			BookingID:    b.ID,
			CustomerName: b.CustomerName,
			BarberName:   b.BarberName,
			Status:       b.Status,
			ScheduledAt:  b.ScheduledAt,
			UpdatedAt:    time.Now(),
		})
		if res.Error != nil {
			return res.Error
		}
		claimed = res.RowsAffected > 0
		if !claimed {
			return nil
		}
		return upsertCustomerMirror(tx, b)
	})
	return claimed, err
}

// MarkWaiting advances the queue entry upcoming -> waiting. The mirror
// status doubles as the idempotence guard for this transition: a
// replayed update event finds the entry already waiting and claims
// nothing, so notifications fire once.
func (r *BookingRepository) MarkWaiting(ctx context.Context, b *domain.Booking) (bool, error) {
	claimed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.QueueEntry{}).
			Where("salon_id = ? AND booking_id = ? AND status = ?", b.SalonID, b.ID, domain.BookingUpcoming).
			Updates(map[string]any{"status": domain.BookingWaiting, "updated_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}
		claimed = res.RowsAffected > 0
		if !claimed {
			return nil
		}
		return upsertCustomerMirror(tx, b)
	})
	return claimed, err
}

// ClaimTurnReady stamps turn_ready_at on a booking that the external
// writer already moved to turn_ready, and mirrors the new status. The
// null check on turn_ready_at makes replays no-ops.
func (r *BookingRepository) ClaimTurnReady(ctx context.Context, salonID, bookingID string, now time.Time) (bool, error) {
	claimed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Booking{}).
			Where("salon_id = ? AND id = ? AND status = ? AND turn_ready_at IS NULL",
				salonID, bookingID, domain.BookingTurnReady).
			Updates(map[string]any{"turn_ready_at": now, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		claimed = res.RowsAffected > 0
		if !claimed {
			return nil
		}
		return setMirrorStatus(tx, salonID, bookingID, domain.BookingTurnReady, now)
	})
	if isUniqueViolation(err) {
		return false, ErrTurnSlotTaken
	}
	return claimed, err
}

// PromoteToTurnReady drives the earliest waiting booking through the
// waiting -> turn_ready transition itself: status, timestamp and both
// mirrors in one transaction. The partial unique index rejects a
// second turn_ready entry for the salon; that race reports
// ErrTurnSlotTaken and the caller skips promotion.
func (r *BookingRepository) PromoteToTurnReady(ctx context.Context, salonID, bookingID string, now time.Time) (bool, error) {
	claimed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Booking{}).
			Where("salon_id = ? AND id = ? AND status = ?", salonID, bookingID, domain.BookingWaiting).
			Updates(map[string]any{
				"status":        domain.BookingTurnReady,
				"turn_ready_at": now,
				"updated_at":    now,
			})
		if res.Error != nil {
			return res.Error
		}
		claimed = res.RowsAffected > 0
		if !claimed {
			return nil
		}
		return setMirrorStatus(tx, salonID, bookingID, domain.BookingTurnReady, now)
	})
	if isUniqueViolation(err) {
		return false, ErrTurnSlotTaken
	}
	return claimed, err
}

// ClaimArrival records arrival on a booking the external writer moved
// to arrived. Guarded by arrived = false so replays claim nothing.
func (r *BookingRepository) ClaimArrival(ctx context.Context, salonID, bookingID string, now time.Time) (bool, error) {
	claimed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Booking{}).
			Where("salon_id = ? AND id = ? AND status = ? AND arrived = ?",
				salonID, bookingID, domain.BookingArrived, false).
			Updates(map[string]any{"arrived": true, "arrival_time": now, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		claimed = res.RowsAffected > 0
		if !claimed {
			return nil
		}
		return setMirrorStatus(tx, salonID, bookingID, domain.BookingArrived, now)
	})
	return claimed, err
}

// ClaimNoShow force-cancels an expired booking. The status, flag and
// deadline conditions are all in the WHERE clause, so a booking that
// moved on since the sweep selected it is left alone.
func (r *BookingRepository) ClaimNoShow(ctx context.Context, b *domain.Booking, cutoff, now time.Time) (bool, error) {
	if b.Status != domain.BookingTurnReady && b.Status != domain.BookingArrived {
		return false, nil
	}

	claimed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&domain.Booking{}).
			Where("salon_id = ? AND id = ?", b.SalonID, b.ID)
		if b.Status == domain.BookingTurnReady {
			q = q.Where("status = ? AND arrived = ? AND turn_ready_at < ?", domain.BookingTurnReady, false, cutoff)
		} else {
			q = q.Where("status = ? AND served = ? AND arrival_time < ?", domain.BookingArrived, false, cutoff)
		}
		res := q.Updates(map[string]any{
			"status":              domain.BookingNoShow,
			"cancelled_at":        now,
			"cancellation_reason": string(domain.BookingNoShow),
			"updated_at":          now,
		})
		if res.Error != nil {
			return res.Error
		}
		claimed = res.RowsAffected > 0
		if !claimed {
			return nil
		}
		return setMirrorStatus(tx, b.SalonID, b.ID, domain.BookingNoShow, now)
	})
	return claimed, err
}

// SyncMirror copies the booking's current status onto both mirrors.
// Used for transitions that carry no extra effects (same-state writes,
// completions, manual entries) so the mirrors never drift.
func (r *BookingRepository) SyncMirror(ctx context.Context, b *domain.Booking) error {
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := setMirrorStatus(tx, b.SalonID, b.ID, b.Status, now); err != nil {
			return err
		}
		return upsertCustomerMirror(tx, b)
	})
}

// NextWaiting returns the salon's earliest waiting booking, or nil.
// Order is scheduled time, then creation time, then id, which makes
// promotion deterministic for bookings scheduled at the same minute.
func (r *BookingRepository) NextWaiting(ctx context.Context, salonID string) (*domain.Booking, error) {
	var b domain.Booking
	tx := r.db.WithContext(ctx).
		Where("salon_id = ? AND status = ?", salonID, domain.BookingWaiting).
		Order("scheduled_at ASC, created_at ASC, id ASC").
		First(&b)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	b.Normalize()
	return &b, nil
}

// ExpiredTurnReady lists turn_ready bookings past the confirmation
// deadline, across all salons, in salon order.
func (r *BookingRepository) ExpiredTurnReady(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("status = ? AND arrived = ? AND turn_ready_at IS NOT NULL AND turn_ready_at < ?",
			domain.BookingTurnReady, false, cutoff).
		Order("salon_id ASC, id ASC").
		Find(&out).Error
	return out, err
}

// ExpiredArrived lists arrived bookings past the service deadline.
func (r *BookingRepository) ExpiredArrived(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("status = ? AND served = ? AND arrival_time IS NOT NULL AND arrival_time < ?",
			domain.BookingArrived, false, cutoff).
		Order("salon_id ASC, id ASC").
		Find(&out).Error
	return out, err
}

// QueueEntries returns the salon's active queue, ordered.
func (r *BookingRepository) QueueEntries(ctx context.Context, salonID string) ([]domain.QueueEntry, error) {
	var out []domain.QueueEntry
	err := r.db.WithContext(ctx).
		Where("salon_id = ? AND status IN ?", salonID, []domain.BookingStatus{
			domain.BookingUpcoming, domain.BookingWaiting, domain.BookingTurnReady, domain.BookingArrived,
		}).
		Order("scheduled_at ASC, booking_id ASC").
		Find(&out).Error
	return out, err
}

// ListBySalon pages through a salon's bookings in id order, for the
// offline backfill utilities.
func (r *BookingRepository) ListBySalon(ctx context.Context, salonID string, limit, offset int) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("salon_id = ?", salonID).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	return out, err
}

func upsertCustomerMirror(tx *gorm.DB, b *domain.Booking) error {
	if b.CustomerID == "" {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "customer_id"}, {Name: "booking_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "scheduled_at", "updated_at"}),
	}).Create(&domain.CustomerBooking{
		CustomerID:  b.CustomerID,
		BookingID:   b.ID,
		SalonID:     b.SalonID,
		Status:      b.Status,
		ScheduledAt: b.ScheduledAt,
		UpdatedAt:   time.Now(),
	}).Error
}

func setMirrorStatus(tx *gorm.DB, salonID, bookingID string, status domain.BookingStatus, now time.Time) error {
	if err := tx.Model(&domain.QueueEntry{}).
		Where("salon_id = ? AND booking_id = ?", salonID, bookingID).
		Updates(map[string]any{"status": status, "updated_at": now}).Error; err != nil {
		return err
	}
	return tx.Model(&domain.CustomerBooking{}).
		Where("booking_id = ?", bookingID).
		Updates(map[string]any{"status": status, "updated_at": now}).Error
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// modernc sqlite reports constraint violations by message only
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

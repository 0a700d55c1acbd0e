package queue

import (
	"context"
	"time"

	"cutline/internal/domain"
	"cutline/internal/modules/notify"
)

// BookingStore is the slice of the booking repository the queue needs.
type BookingStore interface {
	GetByID(ctx context.Context, salonID, bookingID string) (*domain.Booking, error)
	EnsureMirror(ctx context.Context, b *domain.Booking) (bool, error)
	MarkWaiting(ctx context.Context, b *domain.Booking) (bool, error)
	ClaimTurnReady(ctx context.Context, salonID, bookingID string, now time.Time) (bool, error)
	PromoteToTurnReady(ctx context.Context, salonID, bookingID string, now time.Time) (bool, error)
	ClaimArrival(ctx context.Context, salonID, bookingID string, now time.Time) (bool, error)
	ClaimNoShow(ctx context.Context, b *domain.Booking, cutoff, now time.Time) (bool, error)
	SyncMirror(ctx context.Context, b *domain.Booking) error
	NextWaiting(ctx context.Context, salonID string) (*domain.Booking, error)
	ExpiredTurnReady(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)
	ExpiredArrived(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)
	QueueEntries(ctx context.Context, salonID string) ([]domain.QueueEntry, error)
}

// SalonGetter resolves salons for owner lookup.
type SalonGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Salon, error)
}

// UserDirectory is the slice of the user repository recipient
// resolution needs.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	OwnersBySalonID(ctx context.Context, salonID string) ([]domain.User, error)
	BarbersByOwner(ctx context.Context, ownerID string) ([]domain.User, error)
}

// Dispatcher delivers one event to one recipient, best effort.
type Dispatcher interface {
	Dispatch(ctx context.Context, recipientID string, ev notify.Event) notify.DispatchResult
}

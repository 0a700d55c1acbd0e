package domain

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingUpcoming  BookingStatus = "upcoming"
	BookingWaiting   BookingStatus = "waiting"
	BookingTurnReady BookingStatus = "turn_ready"
	BookingArrived   BookingStatus = "arrived"
	BookingCompleted BookingStatus = "completed"
	BookingNoShow    BookingStatus = "no_show"
	BookingCancelled BookingStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingNoShow || s == BookingCancelled
}

type EntrySource string

const (
	EntryApp    EntrySource = "app"
	EntryManual EntrySource = "manual"
)

// AnyBarber is the sentinel barber name meaning "no preference".
const AnyBarber = "any"

type Booking struct {
	ID           string      `json:"id" gorm:"primaryKey;type:varchar(64)"`
	SalonID      string      `json:"salon_id" gorm:"index;type:varchar(64)"`
	CustomerID   string      `json:"customer_id" gorm:"index;type:varchar(64)"`
	CustomerName string      `json:"customer_name"`
	BarberID     string      `json:"barber_id,omitempty" gorm:"type:varchar(64)"`
	BarberName   string      `json:"barber_name,omitempty"`
	EntrySource  EntrySource `json:"entry_source"`

	Status      BookingStatus `json:"status" gorm:"index:idx_bookings_salon_status,composite:salon_status;type:varchar(16)"`
	ScheduledAt time.Time     `json:"scheduled_at"`
	RequestedAt time.Time     `json:"requested_at"`
	TurnReadyAt *time.Time    `json:"turn_ready_at,omitempty"`
	ArrivalTime *time.Time    `json:"arrival_time,omitempty"`
	Arrived     bool          `json:"arrived"`
	Served      bool          `json:"served"`

	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty" gorm:"type:text"`

	Total         float64 `json:"total"`
	TipAmount     float64 `json:"tip_amount,omitempty"`
	ServiceCharge float64 `json:"service_charge,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Manual reports whether the booking was entered by staff at the desk.
// Manual entries keep the queue mirrors current but never produce push
// notifications.
func (b *Booking) Manual() bool {
	return EntrySource(strings.ToLower(string(b.EntrySource))) == EntryManual
}

// WantsBarber reports whether a specific barber was requested. The
// "any" sentinel (any casing) and empty names mean no preference.
func (b *Booking) WantsBarber() bool {
	name := strings.TrimSpace(b.BarberName)
	return name != "" && !strings.EqualFold(name, AnyBarber)
}

// Normalize repairs the loosely-typed fields once at the ingestion
// boundary so the core never re-checks them: statuses and entry
// sources are lower-cased, names trimmed.
func (b *Booking) Normalize() {
	b.Status = BookingStatus(strings.ToLower(strings.TrimSpace(string(b.Status))))
	b.EntrySource = EntrySource(strings.ToLower(strings.TrimSpace(string(b.EntrySource))))
	if b.EntrySource == "" {
		b.EntrySource = EntryApp
	}
	b.BarberName = strings.TrimSpace(b.BarberName)
	b.CustomerName = strings.TrimSpace(b.CustomerName)
}

// QueueEntry is the denormalized per-salon view of an active booking,
// written in the same transaction as the booking status change.
type QueueEntry struct {
	SalonID      string        `json:"salon_id" gorm:"primaryKey;type:varchar(64)"`
	BookingID    string        `json:"booking_id" gorm:"primaryKey;type:varchar(64)"`
	CustomerName string        `json:"customer_name"`
	BarberName   string        `json:"barber_name,omitempty"`
	Status       BookingStatus `json:"status" gorm:"type:varchar(16)"`
	ScheduledAt  time.Time     `json:"scheduled_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (QueueEntry) TableName() string {
	return "queue_entries"
}

// CustomerBooking mirrors a booking into the customer's own history so
// "my bookings" reads never scan salon subtrees.
type CustomerBooking struct {
	CustomerID  string        `json:"customer_id" gorm:"primaryKey;type:varchar(64)"`
	BookingID   string        `json:"booking_id" gorm:"primaryKey;type:varchar(64)"`
	SalonID     string        `json:"salon_id" gorm:"type:varchar(64)"`
	Status      BookingStatus `json:"status" gorm:"type:varchar(16)"`
	ScheduledAt time.Time     `json:"scheduled_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (CustomerBooking) TableName() string {
	return "customer_bookings"
}

package domain

import "time"

// NotificationType identifies the queue event a notification reports.
type NotificationType string

const (
	NotifBookingRequest  NotificationType = "booking_request"  // owner: new booking created
	NotifBookingAccepted NotificationType = "booking_accepted" // customer: moved to waiting
	NotifBarberWaiting   NotificationType = "barber_waiting"   // barber: assigned customer waiting
	NotifTurnReady       NotificationType = "turn_ready"       // customer: called, confirmation window running
)

// Notification is an append-only in-app record, created once per
// dispatch attempt regardless of push delivery outcome. Only IsRead is
// ever mutated, by the client.
type Notification struct {
	ID           string           `json:"id" gorm:"primaryKey;type:varchar(64)"`
	UserID       string           `json:"user_id" gorm:"index:idx_notifications_user_unread;type:varchar(64)"`
	Type         NotificationType `json:"type" gorm:"type:varchar(32)"`
	Title        string           `json:"title"`
	Body         string           `json:"body" gorm:"type:text"`
	BookingID    string           `json:"booking_id,omitempty" gorm:"type:varchar(64)"`
	SalonID      string           `json:"salon_id,omitempty" gorm:"type:varchar(64)"`
	CustomerName string           `json:"customer_name,omitempty"`
	IsRead       bool             `json:"is_read" gorm:"index:idx_notifications_user_unread"`
	CreatedAt    time.Time        `json:"created_at" gorm:"index"`
}

func (Notification) TableName() string {
	return "notifications"
}

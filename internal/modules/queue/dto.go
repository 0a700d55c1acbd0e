package queue

// BookingCreatedEvent is the trigger payload the booking store posts
// after inserting a booking.
type BookingCreatedEvent struct {
	SalonID   string `json:"salon_id" binding:"required"`
	BookingID string `json:"booking_id" binding:"required"`
}

// BookingUpdatedEvent carries the before/after status snapshot of a
// booking write. Statuses are normalized server-side, so casing from
// old clients is fine.
type BookingUpdatedEvent struct {
	SalonID      string `json:"salon_id" binding:"required"`
	BookingID    string `json:"booking_id" binding:"required"`
	BeforeStatus string `json:"before_status" binding:"required"`
	AfterStatus  string `json:"after_status" binding:"required"`
}

// SweepResponse reports one manual sweep run.
type SweepResponse struct {
	Forced int `json:"forced"`
}

package notify

import (
	"fmt"
	"strconv"

	"cutline/internal/domain"
)

// Event is one typed queue notification: the in-app record fields plus
// the push data payload the client app routes on.
type Event struct {
	Type         domain.NotificationType
	Title        string
	Body         string
	BookingID    string
	SalonID      string
	CustomerName string
	Data         map[string]string
}

func (e Event) payload() map[string]string {
	data := map[string]string{
		"type":      string(e.Type),
		"bookingId": e.BookingID,
		"salonId":   e.SalonID,
	}
	if e.CustomerName != "" {
		data["customerName"] = e.CustomerName
	}
	for k, v := range e.Data {
		data[k] = v
	}
	return data
}

// BookingRequest tells a salon owner a customer asked for a booking.
func BookingRequest(bookingID, salonID, customerName string) Event {
	name := customerName
	if name == "" {
		name = "A customer"
	}
	return Event{
		Type:         domain.NotifBookingRequest,
		Title:        "New Booking Request",
		Body:         fmt.Sprintf("%s has requested a booking", name),
		BookingID:    bookingID,
		SalonID:      salonID,
		CustomerName: customerName,
	}
}

// BookingAccepted tells a customer their booking moved to the queue.
func BookingAccepted(bookingID, salonID string) Event {
	return Event{
		Type:      domain.NotifBookingAccepted,
		Title:     "Booking Accepted",
		Body:      "Your booking has been accepted!",
		BookingID: bookingID,
		SalonID:   salonID,
	}
}

// BarberWaiting tells an assigned barber their customer is in the queue.
func BarberWaiting(bookingID, salonID string) Event {
	return Event{
		Type:      domain.NotifBarberWaiting,
		Title:     "New Customer Waiting",
		Body:      "A customer is waiting for you",
		BookingID: bookingID,
		SalonID:   salonID,
	}
}

// TurnReady tells a customer they have been called and how long the
// confirmation window is.
func TurnReady(bookingID, salonID string, windowSeconds int) Event {
	minutes := windowSeconds / 60
	return Event{
		Type:      domain.NotifTurnReady,
		Title:     "It's Your Turn",
		Body:      fmt.Sprintf("Please arrive within %d minutes to keep your spot", minutes),
		BookingID: bookingID,
		SalonID:   salonID,
		Data: map[string]string{
			"windowSeconds": strconv.Itoa(windowSeconds),
		},
	}
}

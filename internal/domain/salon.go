package domain

import "time"

type Salon struct {
	ID string `json:"id" gorm:"primaryKey;type:varchar(64)"`
	// OwnerID may be empty on legacy rows where the salon id itself is
	// the owner's account id.
	OwnerID   string    `json:"owner_id,omitempty" gorm:"index;type:varchar(64)"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DailyStats holds per-day revenue and booking aggregates for a salon,
// recomputed offline from completed bookings.
type DailyStats struct {
	SalonID           string    `json:"salon_id" gorm:"primaryKey;type:varchar(64)"`
	DateKey           string    `json:"date_key" gorm:"primaryKey;type:varchar(10)"` // YYYY-MM-DD
	TotalBookings     int       `json:"total_bookings"`
	CompletedBookings int       `json:"completed_bookings"`
	Revenue           float64   `json:"revenue"`
	Tips              float64   `json:"tips"`
	ServiceCharge     float64   `json:"service_charge"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (DailyStats) TableName() string {
	return "daily_stats"
}

package domain

import (
	"strings"
	"time"
)

type UserRole string

const (
	RoleOwner    UserRole = "owner"
	RoleBarber   UserRole = "barber"
	RoleCustomer UserRole = "customer"
)

// MaxPushTokens caps the token set per account; older devices fall off
// the end on registration.
const MaxPushTokens = 5

type User struct {
	ID           string   `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Email        string   `json:"email" gorm:"uniqueIndex" validate:"required,email"`
	PasswordHash string   `json:"-"`
	Role         UserRole `json:"role" gorm:"index;type:varchar(16)"`
	Name         string   `json:"name"`
	Phone        string   `json:"phone,omitempty"`

	// SalonID links an owner to their salon. Historically written by
	// the client and may be missing or stale, so it is only the
	// last-resort owner resolution step.
	SalonID string `json:"salon_id,omitempty" gorm:"index;type:varchar(64)"`
	// OwnerID links a barber to the owner account they work for.
	OwnerID string `json:"owner_id,omitempty" gorm:"index;type:varchar(64)"`

	// FcmToken is the deprecated singular token field. It may coexist
	// with FcmTokens on old accounts and is treated as independently
	// authoritative when pruning.
	FcmToken  *string    `json:"fcm_token,omitempty"`
	FcmTokens StringList `json:"fcm_tokens,omitempty" gorm:"type:text;serializer:json"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StringList is a JSON-encoded string array column.
type StringList []string

// ValidPushTokens returns the usable push tokens for this account:
// non-empty entries of the token set, capped at MaxPushTokens; the
// legacy singular field is consulted only when the set is empty.
func (u *User) ValidPushTokens() []string {
	out := make([]string, 0, len(u.FcmTokens))
	for _, t := range u.FcmTokens {
		if strings.TrimSpace(t) == "" {
			continue
		}
		out = append(out, t)
		if len(out) == MaxPushTokens {
			break
		}
	}
	if len(out) == 0 && u.FcmToken != nil && strings.TrimSpace(*u.FcmToken) != "" {
		out = append(out, *u.FcmToken)
	}
	return out
}

// HasToken reports whether the token appears in either token field.
func (u *User) HasToken(token string) bool {
	if u.FcmToken != nil && *u.FcmToken == token {
		return true
	}
	for _, t := range u.FcmTokens {
		if t == token {
			return true
		}
	}
	return false
}

// IsOwner reports whether the account holds the owner role, tolerating
// legacy mixed-case role values.
func (u *User) IsOwner() bool {
	return UserRole(strings.ToLower(string(u.Role))) == RoleOwner
}

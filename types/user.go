package types

import "time"

// Role values assignable to a user account.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account in the system.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Email is the user's email address. Globally unique.
	Email string `json:"email" db:"email"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// Role indicates the user's authorization level within the
	// system ("user" or "admin").
	Role string `json:"role" db:"role"`

	// PhoneE164 is the user's phone number in E.164 format, used as
	// the destination for SMS notifications.
	PhoneE164 string `json:"phoneE164" db:"phone_e164"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

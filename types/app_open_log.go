package types

import "time"

// AppOpenLog tracks the last time a user was notified after opening the
// app. There is at most one row per user.
type AppOpenLog struct {
	// ID is the unique identifier of the log row.
	ID int `json:"id" db:"id"`

	// UserID identifies the user this log belongs to. Unique.
	UserID int `json:"userId" db:"user_id"`

	// LastSentAt is the timestamp of the last eligible notification
	// attempt. Nil when no attempt has been made yet.
	LastSentAt *time.Time `json:"lastSentAt" db:"last_sent_at"`

	// CreatedAt is the timestamp at which the log row was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the log row.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

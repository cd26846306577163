package types

import "time"

// Application status values.
const (
	StatusRemaining = "remaining"
	StatusApplied   = "applied"
)

// ValidStatus reports whether s is one of the accepted status values.
func ValidStatus(s string) bool {
	return s == StatusRemaining || s == StatusApplied
}

// Application represents one job application tracked by a user.
type Application struct {
	// ID is the unique identifier of the application.
	ID int `json:"id" db:"id"`

	// UserID is the identifier of the user who owns this application.
	// Every non-admin operation is scoped to it.
	UserID int `json:"userId" db:"user_id"`

	// CompanyName is the name of the company applied to.
	CompanyName string `json:"companyName" db:"company_name"`

	// WebsiteUrl is the URL of the company or job posting.
	WebsiteUrl string `json:"websiteUrl" db:"website_url"`

	// AppliedAt is the date the user applied (or plans to apply).
	AppliedAt time.Time `json:"appliedAt" db:"applied_at"`

	// ImageUrl optionally points to an uploaded logo or screenshot.
	ImageUrl string `json:"imageUrl,omitempty" db:"image_url"`

	// Status is either "remaining" or "applied".
	Status string `json:"status" db:"status"`

	// Notes holds free-form text attached by the user.
	Notes string `json:"notes,omitempty" db:"notes"`

	// CreatedAt is the timestamp at which the record was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the record.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ApplicationPatch carries a partial update for an application.
// Nil fields are left unchanged.
type ApplicationPatch struct {
	CompanyName *string    `json:"companyName"`
	WebsiteUrl  *string    `json:"websiteUrl"`
	AppliedAt   *time.Time `json:"appliedAt"`
	ImageUrl    *string    `json:"imageUrl"`
	Status      *string    `json:"status"`
	Notes       *string    `json:"notes"`
}

// ApplicationFilter narrows application listings. A zero UserID or an
// empty Status means "no filter" for that dimension.
type ApplicationFilter struct {
	UserID int
	Status string
}

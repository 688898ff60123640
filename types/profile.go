package types

import "time"

// Role values stored in the profiles table.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Profile represents an account in the system. It is both the
// authenticated identity (email + password hash) and the application-level
// metadata attached to it (display fields and role).
type Profile struct {
	// ID is the unique identifier of the profile.
	ID int `json:"id" db:"id"`

	// Email is the sign-in address. Unique across profiles.
	Email string `json:"email" db:"email"`

	// Username is an optional public handle.
	Username string `json:"username" db:"username"`

	// FullName is the user's display name.
	FullName string `json:"full_name" db:"full_name"`

	// AvatarURL points at the user's avatar image.
	AvatarURL string `json:"avatar_url" db:"avatar_url"`

	// Website is an optional personal link.
	Website string `json:"website" db:"website"`

	// Role is the authorization level, RoleAdmin or RoleUser. Admins may
	// read rows across all users and access user management.
	Role string `json:"role" db:"role"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the profile was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

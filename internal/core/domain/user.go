package domain

import "time"

// UserRole gates access to the admin surface.
type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"
)

// IsValid reports whether r is one of the known roles.
func (r UserRole) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents a storefront customer or administrator.
type User struct {
	UserID             string     `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	PasswordHash       *string    `json:"-"` // nil for OAuth-only users
	EmailVerified      *time.Time `json:"emailVerified,omitempty"`
	Image              *string    `json:"image,omitempty"`
	Role               UserRole   `json:"role"`
	IsTwoFactorEnabled bool       `json:"isTwoFactorEnabled"`
	Timestamps
}

// HasPassword reports whether the user can sign in with credentials.
func (u User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// IsVerified reports whether the user has proven control of their email.
func (u User) IsVerified() bool {
	return u.EmailVerified != nil
}

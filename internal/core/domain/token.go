package domain

import "time"

// TokenKind distinguishes the three emailed token types. They share one table
// and the one-active-token-per-email rule.
type TokenKind string

const (
	TokenKindVerification  TokenKind = "verification"
	TokenKindPasswordReset TokenKind = "password_reset"
	TokenKindTwoFactor     TokenKind = "two_factor"
)

// EmailToken is a random value with an expiry that proves control of an email.
type EmailToken struct {
	ID        string    `json:"id"`
	Kind      TokenKind `json:"kind"`
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	UserID    *string   `json:"userId,omitempty"` // set when verifying an email change
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsExpired reports whether the token is no longer usable at now.
func (t EmailToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// TwoFactorConfirmation records that a valid two-factor code was entered
// during the current sign-in attempt. It is consumed by the sign-in gate.
type TwoFactorConfirmation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

package domain

import "time"

// SessionClaims are the claims carried by a session token. Everything but
// Subject and ExpiresAt is filled in by claim enrichment.
type SessionClaims struct {
	Subject            string
	Name               string
	Email              string
	Role               UserRole
	IsTwoFactorEnabled bool
	IsOAuth            bool
	ExpiresAt          time.Time
}

// SessionUser is the public view of the signed-in user.
type SessionUser struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	Role               UserRole `json:"role"`
	IsTwoFactorEnabled bool     `json:"isTwoFactorEnabled"`
	IsOAuth            bool     `json:"isOAuth"`
}

// Session is what clients see about their sign-in.
type Session struct {
	User    SessionUser `json:"user"`
	Expires time.Time   `json:"expires"`
}

// IssuedSession is a freshly signed session token together with its projection.
type IssuedSession struct {
	Token     string
	ExpiresAt time.Time
	Session   Session
}

// LoginStatus is the outcome of a credential sign-in attempt that did not fail.
type LoginStatus string

const (
	LoginSignedIn          LoginStatus = "signed_in"
	LoginConfirmationSent  LoginStatus = "confirmation_sent"
	LoginTwoFactorRequired LoginStatus = "two_factor_required"
)

// LoginResult is returned by the credential login flow. Issued is only set
// when Status is LoginSignedIn.
type LoginResult struct {
	Status  LoginStatus
	Message string
	Issued  *IssuedSession
}

// OAuthProfile is the identity asserted by an OAuth provider.
type OAuthProfile struct {
	Provider          string
	ProviderAccountID string
	Email             string
	Name              string
	Image             string
	EmailVerified     bool
}

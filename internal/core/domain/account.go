package domain

import "time"

// Provider names as stored on linked accounts and passed to the sign-in gate.
const (
	ProviderCredentials = "credentials"
	ProviderGoogle      = "google"
)

// Account links a user to an external identity provider.
type Account struct {
	AccountID         string    `json:"id"`
	UserID            string    `json:"userId"`
	Type              string    `json:"type"` // "oauth" for every provider we support
	Provider          string    `json:"provider"`
	ProviderAccountID string    `json:"providerAccountId"`
	CreatedAt         time.Time `json:"createdAt"`
}

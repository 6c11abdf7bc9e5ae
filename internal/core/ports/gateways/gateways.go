// Package gateways declares the outbound integrations the services depend on:
// mail delivery, object storage and the escrow API.
package gateways

import (
	"context"
	"io"
)

// Mailer delivers the transactional emails of the auth flows.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, token string) error
	SendPasswordResetEmail(ctx context.Context, to, token string) error
	SendTwoFactorTokenEmail(ctx context.Context, to, code string) error
}

// ProgressFunc receives the cumulative number of bytes uploaded so far.
type ProgressFunc func(uploaded, total int64)

// ObjectStorage stores uploaded files.
type ObjectStorage interface {
	// Upload stores body under key and returns a reference to the stored object.
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string, progress ProgressFunc) (string, error)

	// ResolveDownloadURL returns an absolute URL the object can be downloaded from.
	ResolveDownloadURL(ctx context.Context, reference string) (string, error)
}

// EscrowResponse is the upstream status and raw JSON body of an escrow call.
type EscrowResponse struct {
	StatusCode int
	Body       []byte
}

// EscrowClient relays create-escrow requests to the escrow API.
type EscrowClient interface {
	CreateEscrow(ctx context.Context, payload []byte) (*EscrowResponse, error)
}

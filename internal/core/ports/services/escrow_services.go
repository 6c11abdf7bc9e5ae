package services

import (
	"context"

	"github.com/neptunetech/storefront/internal/core/ports/gateways"
)

// EscrowSvcFacade relays create-escrow requests.
type EscrowSvcFacade interface {
	CreateEscrow(ctx context.Context, payload []byte) (*gateways.EscrowResponse, error)
}

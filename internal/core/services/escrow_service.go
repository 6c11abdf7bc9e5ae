package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neptunetech/storefront/internal/core/ports/gateways"
	portssvc "github.com/neptunetech/storefront/internal/core/ports/services"
)

type escrowService struct {
	BaseService
	client gateways.EscrowClient
}

func NewEscrowService(client gateways.EscrowClient) portssvc.EscrowSvcFacade {
	return &escrowService{client: client}
}

// CreateEscrow relays payload unchanged. There is no retry.
func (s *escrowService) CreateEscrow(ctx context.Context, payload []byte) (*gateways.EscrowResponse, error) {
	resp, err := s.client.CreateEscrow(ctx, payload)
	if err != nil {
		s.LogError(ctx, err, "Escrow creation error")
		return nil, fmt.Errorf("escrow relay: %w", err)
	}
	s.LogInfo(ctx, "Escrow relayed", slog.Int("status", resp.StatusCode))
	return resp, nil
}

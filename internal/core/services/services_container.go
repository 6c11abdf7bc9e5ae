package services

import (
	"github.com/neptunetech/storefront/internal/core/ports/gateways"
	portsrepo "github.com/neptunetech/storefront/internal/core/ports/repositories"
	portssvc "github.com/neptunetech/storefront/internal/core/ports/services"
	"github.com/neptunetech/storefront/internal/platform/config"
)

// Gateways bundles the outbound adapters built in main.
type Gateways struct {
	Mailer  gateways.Mailer
	Storage gateways.ObjectStorage
	Escrow  gateways.EscrowClient
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, gw Gateways) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Token service first; auth and settings both issue tokens through it.
	container.TokenService = NewTokenService(cfg, repos.UserRepo, repos.AccountRepo, repos.TokenRepo)
	container.GoogleOAuthHandler = NewGoogleOAuthHandlerService(cfg)

	container.Auth = NewAuthService(repos, container.TokenService, gw.Mailer)
	container.User = NewUserService(
		repos.UserRepo,
		repos.AccountRepo,
		WithUserTokenService(container.TokenService),
		WithUserMailer(gw.Mailer),
	)

	container.Product = NewProductService(repos.ProductRepo)
	container.Image = NewImageService(gw.Storage)
	container.Escrow = NewEscrowService(gw.Escrow)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AuthSvcFacade    = (*authService)(nil)
	_ portssvc.TokenSvcFacade   = (*tokenService)(nil)
	_ portssvc.UserSvcFacade    = (*userService)(nil)
	_ portssvc.ProductSvcFacade = (*productService)(nil)
	_ portssvc.ImageSvcFacade   = (*imageService)(nil)
	_ portssvc.EscrowSvcFacade  = (*escrowService)(nil)
)

package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	UserRepo      UserRepositoryFacade
	AccountRepo   AccountRepositoryFacade
	TokenRepo     EmailTokenRepository
	TwoFactorRepo TwoFactorConfirmationRepository
	ProductRepo   ProductRepositoryFacade
}

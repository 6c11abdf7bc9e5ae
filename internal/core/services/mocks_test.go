package services_test

import (
	"context"
	"io"
	"time"

	"github.com/neptunetech/storefront/internal/core/domain"
	"github.com/neptunetech/storefront/internal/core/ports/gateways"
	"github.com/stretchr/testify/mock"
)

// --- Repository mocks ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) MarkEmailVerified(ctx context.Context, userID string, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByProvider(ctx context.Context, provider, providerAccountID string) (*domain.Account, error) {
	args := m.Called(ctx, provider, providerAccountID)
	var account *domain.Account
	if args.Get(0) != nil {
		account = args.Get(0).(*domain.Account)
	}
	return account, args.Error(1)
}

func (m *MockAccountRepository) HasLinkedAccount(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) SaveUserWithAccount(ctx context.Context, user domain.User, account domain.Account) error {
	args := m.Called(ctx, user, account)
	return args.Error(0)
}

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) SaveToken(ctx context.Context, token domain.EmailToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) FindTokenByHash(ctx context.Context, kind domain.TokenKind, tokenHash string) (*domain.EmailToken, error) {
	args := m.Called(ctx, kind, tokenHash)
	var token *domain.EmailToken
	if args.Get(0) != nil {
		token = args.Get(0).(*domain.EmailToken)
	}
	return token, args.Error(1)
}

func (m *MockTokenRepository) FindTokenByEmail(ctx context.Context, kind domain.TokenKind, email string) (*domain.EmailToken, error) {
	args := m.Called(ctx, kind, email)
	var token *domain.EmailToken
	if args.Get(0) != nil {
		token = args.Get(0).(*domain.EmailToken)
	}
	return token, args.Error(1)
}

func (m *MockTokenRepository) DeleteToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

type MockTwoFactorRepository struct {
	mock.Mock
}

func (m *MockTwoFactorRepository) ReplaceTwoFactorConfirmation(ctx context.Context, confirmation domain.TwoFactorConfirmation) error {
	args := m.Called(ctx, confirmation)
	return args.Error(0)
}

func (m *MockTwoFactorRepository) ConsumeTwoFactorConfirmation(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	var products []domain.Product
	if args.Get(0) != nil {
		products = args.Get(0).([]domain.Product)
	}
	return products, args.Error(1)
}

func (m *MockProductRepository) FindProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	var product *domain.Product
	if args.Get(0) != nil {
		product = args.Get(0).(*domain.Product)
	}
	return product, args.Error(1)
}

func (m *MockProductRepository) SaveProduct(ctx context.Context, product domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

// --- Service and gateway mocks ---

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) IssueSession(ctx context.Context, userID string) (*domain.IssuedSession, error) {
	args := m.Called(ctx, userID)
	var issued *domain.IssuedSession
	if args.Get(0) != nil {
		issued = args.Get(0).(*domain.IssuedSession)
	}
	return issued, args.Error(1)
}

func (m *MockTokenService) ParseSessionToken(ctx context.Context, token string) (domain.SessionClaims, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(domain.SessionClaims), args.Error(1)
}

func (m *MockTokenService) GenerateVerificationToken(ctx context.Context, email string, userID *string) (string, error) {
	args := m.Called(ctx, email, userID)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) GeneratePasswordResetToken(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) GenerateTwoFactorToken(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendVerificationEmail(ctx context.Context, to, token string) error {
	return m.Called(ctx, to, token).Error(0)
}

func (m *MockMailer) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	return m.Called(ctx, to, token).Error(0)
}

func (m *MockMailer) SendTwoFactorTokenEmail(ctx context.Context, to, code string) error {
	return m.Called(ctx, to, code).Error(0)
}

type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string, progress gateways.ProgressFunc) (string, error) {
	if progress != nil {
		progress(size, size)
	}
	args := m.Called(ctx, key, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) ResolveDownloadURL(ctx context.Context, reference string) (string, error) {
	args := m.Called(ctx, reference)
	return args.String(0), args.Error(1)
}

type MockEscrowClient struct {
	mock.Mock
}

func (m *MockEscrowClient) CreateEscrow(ctx context.Context, payload []byte) (*gateways.EscrowResponse, error) {
	args := m.Called(ctx, payload)
	var resp *gateways.EscrowResponse
	if args.Get(0) != nil {
		resp = args.Get(0).(*gateways.EscrowResponse)
	}
	return resp, args.Error(1)
}

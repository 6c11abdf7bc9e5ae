package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/neptunetech/storefront/internal/apperrors"
	"github.com/neptunetech/storefront/internal/core/domain"
	portssvc "github.com/neptunetech/storefront/internal/core/ports/services"
	"github.com/neptunetech/storefront/internal/core/services"
	"github.com/neptunetech/storefront/internal/dto"
	"github.com/neptunetech/storefront/internal/utils"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type UserServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	now      time.Time
	users    *MockUserRepository
	accounts *MockAccountRepository
	tokenSvc *MockTokenService
	mailer   *MockMailer
	service  portssvc.UserSvcFacade
	hash     string
}

func (suite *UserServiceTestSuite) SetupSuite() {
	hash, err := utils.HashPassword("secret123")
	suite.Require().NoError(err)
	suite.hash = hash
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.now = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	suite.users = new(MockUserRepository)
	suite.accounts = new(MockAccountRepository)
	suite.tokenSvc = new(MockTokenService)
	suite.mailer = new(MockMailer)
	suite.service = services.NewUserService(suite.users, suite.accounts,
		services.WithUserTokenService(suite.tokenSvc),
		services.WithUserMailer(suite.mailer),
		services.WithUserClock(func() time.Time { return suite.now }),
	)
}

func (suite *UserServiceTestSuite) TearDownTest() {
	suite.users.AssertExpectations(suite.T())
	suite.accounts.AssertExpectations(suite.T())
	suite.tokenSvc.AssertExpectations(suite.T())
	suite.mailer.AssertExpectations(suite.T())
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func (suite *UserServiceTestSuite) user(role domain.UserRole) *domain.User {
	hash := suite.hash
	verified := suite.now.Add(-time.Hour)
	return &domain.User{
		UserID:        "u1",
		Name:          "Ada",
		Email:         "ada@example.com",
		PasswordHash:  &hash,
		EmailVerified: &verified,
		Role:          role,
	}
}

func (suite *UserServiceTestSuite) expectLoad(u *domain.User, linked bool) {
	suite.users.On("FindUserByID", mock.Anything, "u1").Return(u, nil).Once()
	suite.accounts.On("HasLinkedAccount", mock.Anything, "u1").Return(linked, nil).Once()
}

func (suite *UserServiceTestSuite) TestGetUserByID_NotFound() {
	suite.users.On("FindUserByID", mock.Anything, "ghost").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetUserByID(suite.ctx, "ghost")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *UserServiceTestSuite) TestUpdateSettings_NameAndTwoFactor() {
	suite.expectLoad(suite.user(domain.RoleUser), false)
	suite.users.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Name == "Grace" && u.IsTwoFactorEnabled && u.UpdatedAt.Equal(suite.now)
	})).Return(nil).Once()

	msg, err := suite.service.UpdateSettings(suite.ctx, "u1", dto.SettingsRequest{
		Name:               strPtr("Grace"),
		IsTwoFactorEnabled: boolPtr(true),
	})

	suite.Require().NoError(err)
	suite.Equal("Settings Updated!", msg)
}

func (suite *UserServiceTestSuite) TestUpdateSettings_EmailChangeSendsVerificationOnly() {
	suite.expectLoad(suite.user(domain.RoleUser), false)
	suite.users.On("FindUserByEmail", mock.Anything, "new@example.com").Return(nil, apperrors.ErrNotFound).Once()
	suite.tokenSvc.On("GenerateVerificationToken", mock.Anything, "new@example.com", mock.MatchedBy(func(id *string) bool {
		return id != nil && *id == "u1"
	})).Return("tok", nil).Once()
	suite.mailer.On("SendVerificationEmail", mock.Anything, "new@example.com", "tok").Return(nil).Once()

	msg, err := suite.service.UpdateSettings(suite.ctx, "u1", dto.SettingsRequest{
		Email: strPtr("new@example.com"),
		Name:  strPtr("Grace"),
	})

	suite.Require().NoError(err)
	suite.Equal("Verification email sent!", msg)
	suite.users.AssertNotCalled(suite.T(), "UpdateUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestUpdateSettings_EmailTaken() {
	suite.expectLoad(suite.user(domain.RoleUser), false)
	other := suite.user(domain.RoleUser)
	other.UserID = "u2"
	suite.users.On("FindUserByEmail", mock.Anything, "taken@example.com").Return(other, nil).Once()

	_, err := suite.service.UpdateSettings(suite.ctx, "u1", dto.SettingsRequest{Email: strPtr("taken@example.com")})

	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *UserServiceTestSuite) TestUpdateSettings_OAuthUserFieldsIgnored() {
	suite.expectLoad(suite.user(domain.RoleUser), true)
	suite.users.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Email == "ada@example.com" && !u.IsTwoFactorEnabled && u.Name == "Grace"
	})).Return(nil).Once()

	msg, err := suite.service.UpdateSettings(suite.ctx, "u1", dto.SettingsRequest{
		Name:               strPtr("Grace"),
		Email:              strPtr("new@example.com"),
		Password:           strPtr("secret123"),
		NewPassword:        strPtr("another1"),
		IsTwoFactorEnabled: boolPtr(true),
	})

	suite.Require().NoError(err)
	suite.Equal("Settings Updated!", msg)
}

func (suite *UserServiceTestSuite) TestUpdateSettings_PasswordChange() {
	suite.expectLoad(suite.user(domain.RoleUser), false)
	suite.users.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return utils.MatchesPassword(u.PasswordHash, "another1")
	})).Return(nil).Once()

	_, err := suite.service.UpdateSettings(suite.ctx, "u1", dto.SettingsRequest{
		Password:    strPtr("secret123"),
		NewPassword: strPtr("another1"),
	})

	suite.NoError(err)
}

func (suite *UserServiceTestSuite) TestUpdateSettings_PasswordChangeWrongCurrent() {
	suite.expectLoad(suite.user(domain.RoleUser), false)

	_, err := suite.service.UpdateSettings(suite.ctx, "u1", dto.SettingsRequest{
		Password:    strPtr("wrong-one"),
		NewPassword: strPtr("another1"),
	})

	suite.ErrorIs(err, apperrors.ErrAuthDenied)
	suite.Equal("Incorrect password!", apperrors.Message(err, ""))
}

func (suite *UserServiceTestSuite) TestUpdateSettings_PasswordWithoutNewPassword() {
	suite.expectLoad(suite.user(domain.RoleUser), false)

	_, err := suite.service.UpdateSettings(suite.ctx, "u1", dto.SettingsRequest{Password: strPtr("secret123")})

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *UserServiceTestSuite) TestUpdateSettings_NonAdminCannotChangeRole() {
	suite.expectLoad(suite.user(domain.RoleUser), false)
	admin := domain.RoleAdmin

	_, err := suite.service.UpdateSettings(suite.ctx, "u1", dto.SettingsRequest{Role: &admin})

	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *UserServiceTestSuite) TestUpdateSettings_AdminCanChangeRole() {
	suite.expectLoad(suite.user(domain.RoleAdmin), false)
	suite.users.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Role == domain.RoleUser
	})).Return(nil).Once()
	role := domain.RoleUser

	_, err := suite.service.UpdateSettings(suite.ctx, "u1", dto.SettingsRequest{Role: &role})

	suite.NoError(err)
}

func (suite *UserServiceTestSuite) TestUpdateSettings_InvalidRole() {
	role := domain.UserRole("ROOT")

	_, err := suite.service.UpdateSettings(suite.ctx, "u1", dto.SettingsRequest{Role: &role})

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Equal("Invalid role", apperrors.Message(err, ""))
}

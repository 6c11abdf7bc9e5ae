package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/neptunetech/storefront/internal/core/domain"
	portssvc "github.com/neptunetech/storefront/internal/core/ports/services"
	"github.com/neptunetech/storefront/internal/platform/config"
	"github.com/neptunetech/storefront/internal/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// IDTokenValidator validates a Google ID token for the given audience.
type IDTokenValidator func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// googleOAuthHandlerService implements the GoogleOAuthHandlerSvcFacade.
type googleOAuthHandlerService struct {
	BaseService
	cfg          *config.Config
	oauth2Config *oauth2.Config
	validate     IDTokenValidator
}

// GoogleOAuthOption configures the Google OAuth service.
type GoogleOAuthOption func(*googleOAuthHandlerService)

// WithOAuthEndpoint replaces Google's authorization and token endpoints.
func WithOAuthEndpoint(endpoint oauth2.Endpoint) GoogleOAuthOption {
	return func(s *googleOAuthHandlerService) {
		s.oauth2Config.Endpoint = endpoint
	}
}

// WithIDTokenValidator replaces idtoken.Validate.
func WithIDTokenValidator(v IDTokenValidator) GoogleOAuthOption {
	return func(s *googleOAuthHandlerService) {
		s.validate = v
	}
}

// NewGoogleOAuthHandlerService creates a new instance of googleOAuthHandlerService.
func NewGoogleOAuthHandlerService(cfg *config.Config, options ...GoogleOAuthOption) portssvc.GoogleOAuthHandlerSvcFacade {
	s := &googleOAuthHandlerService{
		cfg: cfg,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
			Endpoint:     google.Endpoint,
		},
		validate: idtoken.Validate,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// GenerateStateString creates a secure random string to be used as a CSRF token for OAuth flow.
func (s *googleOAuthHandlerService) GenerateStateString(ctx context.Context) (string, error) {
	state, err := utils.GenerateSecureRandomString(16)
	if err != nil {
		return "", fmt.Errorf("failed to generate state string for OAuth: %w", err)
	}
	return state, nil
}

// GetGoogleLoginURL returns the URL to redirect the user to for Google login.
func (s *googleOAuthHandlerService) GetGoogleLoginURL(ctx context.Context, state string) string {
	return s.oauth2Config.AuthCodeURL(state)
}

// ExchangeCodeForToken exchanges an OAuth authorization code for a token.
func (s *googleOAuthHandlerService) ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code for token: %w", err)
	}
	return token, nil
}

// ValidateGoogleIDToken validates an ID token received from Google and returns the payload if valid.
func (s *googleOAuthHandlerService) ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error) {
	if s.cfg.GoogleClientID == "" {
		return nil, errors.New("google client ID is not configured in the application")
	}

	payload, err := s.validate(ctx, idTokenString, s.cfg.GoogleClientID)
	if err != nil {
		return nil, fmt.Errorf("google ID token validation failed: %w", err)
	}
	return payload, nil
}

func (s *googleOAuthHandlerService) ProfileFromCode(ctx context.Context, code string) (*domain.OAuthProfile, error) {
	token, err := s.ExchangeCodeForToken(ctx, code)
	if err != nil {
		return nil, err
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("google token response has no id_token")
	}

	payload, err := s.ValidateGoogleIDToken(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}

	return profileFromPayload(payload)
}

func profileFromPayload(payload *idtoken.Payload) (*domain.OAuthProfile, error) {
	if payload.Subject == "" {
		return nil, errors.New("google ID token has no subject")
	}
	str := func(key string) string {
		v, _ := payload.Claims[key].(string)
		return v
	}
	verified, _ := payload.Claims["email_verified"].(bool)

	return &domain.OAuthProfile{
		Provider:          domain.ProviderGoogle,
		ProviderAccountID: payload.Subject,
		Email:             str("email"),
		Name:              str("name"),
		Image:             str("picture"),
		EmailVerified:     verified,
	}, nil
}

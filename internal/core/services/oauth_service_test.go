package services_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/neptunetech/storefront/internal/core/domain"
	"github.com/neptunetech/storefront/internal/core/services"
	"github.com/neptunetech/storefront/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

func tokenEndpoint(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func oauthConfig() *config.Config {
	return &config.Config{
		GoogleClientID:     "client-id",
		GoogleClientSecret: "client-secret",
		GoogleRedirectURL:  "https://shop.test/api/auth/google/callback",
	}
}

func TestGoogleOAuth_LoginURLCarriesState(t *testing.T) {
	svc := services.NewGoogleOAuthHandlerService(oauthConfig())

	state, err := svc.GenerateStateString(context.Background())
	require.NoError(t, err)
	assert.Len(t, state, 32)

	u, err := url.Parse(svc.GetGoogleLoginURL(context.Background(), state))
	require.NoError(t, err)
	assert.Equal(t, state, u.Query().Get("state"))
	assert.Equal(t, "client-id", u.Query().Get("client_id"))
}

func TestGoogleOAuth_ProfileFromCode(t *testing.T) {
	srv := tokenEndpoint(t, `{"access_token":"at","token_type":"Bearer","expires_in":3600,"id_token":"raw-id-token"}`)

	var gotToken, gotAudience string
	validator := func(_ context.Context, idToken, audience string) (*idtoken.Payload, error) {
		gotToken, gotAudience = idToken, audience
		return &idtoken.Payload{
			Subject: "g-123",
			Claims: map[string]interface{}{
				"email":          "ada@example.com",
				"email_verified": true,
				"name":           "Ada",
				"picture":        "https://img.test/ada.png",
			},
		}, nil
	}

	svc := services.NewGoogleOAuthHandlerService(oauthConfig(),
		services.WithOAuthEndpoint(oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}),
		services.WithIDTokenValidator(validator),
	)

	profile, err := svc.ProfileFromCode(context.Background(), "auth-code")
	require.NoError(t, err)

	assert.Equal(t, "raw-id-token", gotToken)
	assert.Equal(t, "client-id", gotAudience)
	assert.Equal(t, domain.OAuthProfile{
		Provider:          domain.ProviderGoogle,
		ProviderAccountID: "g-123",
		Email:             "ada@example.com",
		Name:              "Ada",
		Image:             "https://img.test/ada.png",
		EmailVerified:     true,
	}, *profile)
}

func TestGoogleOAuth_ProfileFromCode_NoIDToken(t *testing.T) {
	srv := tokenEndpoint(t, `{"access_token":"at","token_type":"Bearer"}`)
	svc := services.NewGoogleOAuthHandlerService(oauthConfig(),
		services.WithOAuthEndpoint(oauth2.Endpoint{TokenURL: srv.URL}),
	)

	_, err := svc.ProfileFromCode(context.Background(), "auth-code")
	assert.Error(t, err)
}

func TestGoogleOAuth_ProfileFromCode_InvalidIDToken(t *testing.T) {
	srv := tokenEndpoint(t, `{"access_token":"at","token_type":"Bearer","id_token":"forged"}`)
	svc := services.NewGoogleOAuthHandlerService(oauthConfig(),
		services.WithOAuthEndpoint(oauth2.Endpoint{TokenURL: srv.URL}),
		services.WithIDTokenValidator(func(context.Context, string, string) (*idtoken.Payload, error) {
			return nil, errors.New("idtoken: invalid signature")
		}),
	)

	_, err := svc.ProfileFromCode(context.Background(), "auth-code")
	assert.ErrorContains(t, err, "google ID token validation failed")
}

func TestGoogleOAuth_ValidateRequiresClientID(t *testing.T) {
	svc := services.NewGoogleOAuthHandlerService(&config.Config{})
	_, err := svc.ValidateGoogleIDToken(context.Background(), "anything")
	assert.Error(t, err)
}

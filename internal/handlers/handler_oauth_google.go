package handlers

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/neptunetech/storefront/internal/apperrors"
	"github.com/neptunetech/storefront/internal/core/authflow"
	"github.com/neptunetech/storefront/internal/core/domain"
	portssvc "github.com/neptunetech/storefront/internal/core/ports/services"
	"github.com/neptunetech/storefront/internal/dto"
	"github.com/neptunetech/storefront/internal/middleware"
	"github.com/neptunetech/storefront/internal/platform/config"
)

const (
	oauthStateCookie    = "oauth_state"
	oauthCallbackCookie = "oauth_callback"
	oauthCookieMaxAge   = 10 * 60

	// oauthErrorPath is where the browser lands when the redirect flow fails.
	oauthErrorPath = "/auth/login"
)

// googleOAuthHandler handles Google OAuth related requests.
type googleOAuthHandler struct {
	googleOAuthService portssvc.GoogleOAuthHandlerSvcFacade
	authService        portssvc.AuthSvcFacade
	cookies            sessionCookies
	appBaseURL         string
	enabled            bool
}

func newGoogleOAuthHandler(cfg *config.Config, services *portssvc.ServiceContainer) *googleOAuthHandler {
	return &googleOAuthHandler{
		googleOAuthService: services.GoogleOAuthHandler,
		authService:        services.Auth,
		cookies:            newSessionCookies(cfg),
		appBaseURL:         cfg.AppBaseURL,
		enabled:            cfg.GoogleOAuthEnabled(),
	}
}

// registerGoogleOAuthRoutes registers the Google OAuth routes.
func registerGoogleOAuthRoutes(rg *gin.RouterGroup, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := newGoogleOAuthHandler(cfg, services)

	googleRoutes := rg.Group("/auth/google", h.requireEnabled)
	{
		googleRoutes.GET("", h.login)
		googleRoutes.GET("/callback", h.callback)
		googleRoutes.POST("/exchange-code", h.exchangeCode)
	}
}

func (h *googleOAuthHandler) requireEnabled(c *gin.Context) {
	if !h.enabled {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Google sign-in is not configured"})
		return
	}
	c.Next()
}

// login godoc
// @Summary Start Google sign-in
// @Description Redirects to the Google consent page. The optional callbackUrl is where the user lands after signing in.
// @Tags oauth
// @Param callbackUrl query string false "Post sign-in redirect"
// @Success 307
// @Failure 503 {object} ErrorResponse
// @Router /auth/google [get]
func (h *googleOAuthHandler) login(c *gin.Context) {
	ctx := c.Request.Context()

	state, err := h.googleOAuthService.GenerateStateString(ctx)
	if err != nil {
		respondError(c, err, "Failed to start Google sign-in")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, oauthCookieMaxAge, "/", "", h.cookies.secure, true)
	c.SetCookie(oauthCallbackCookie, c.Query("callbackUrl"), oauthCookieMaxAge, "/", "", h.cookies.secure, true)

	c.Redirect(http.StatusTemporaryRedirect, h.googleOAuthService.GetGoogleLoginURL(ctx, state))
}

// callback godoc
// @Summary Google sign-in callback
// @Description Verifies the state, signs the user in and redirects to the requested page. Failures redirect to the login page with an error code.
// @Tags oauth
// @Param state query string true "OAuth state"
// @Param code query string true "Authorization code"
// @Success 307
// @Router /auth/google/callback [get]
func (h *googleOAuthHandler) callback(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	expected, _ := c.Cookie(oauthStateCookie)
	callbackURL, _ := c.Cookie(oauthCallbackCookie)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, "", -1, "/", "", h.cookies.secure, true)
	c.SetCookie(oauthCallbackCookie, "", -1, "/", "", h.cookies.secure, true)

	state := c.Query("state")
	if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(state)) != 1 {
		logger.Warn("OAuth state mismatch")
		h.redirectWithError(c, "OAuthStateMismatch")
		return
	}
	if providerErr := c.Query("error"); providerErr != "" {
		logger.Info("Google sign-in cancelled", slog.String("error", providerErr))
		h.redirectWithError(c, "OAuthCallback")
		return
	}

	issued, err := h.signIn(c, c.Query("code"))
	if err != nil {
		logger.Warn("Google sign-in failed", slog.String("error", err.Error()))
		code := "OAuthCallback"
		if errors.Is(err, apperrors.ErrAuthDenied) {
			code = apperrors.Message(err, code)
		}
		h.redirectWithError(c, code)
		return
	}

	h.cookies.set(c, issued)
	c.Redirect(http.StatusTemporaryRedirect, authflow.ResolveRedirect(callbackURL, h.appBaseURL))
}

// exchangeCode godoc
// @Summary Exchange a Google authorization code for a session
// @Description Used by browser clients that run the consent step themselves.
// @Tags oauth
// @Accept json
// @Produce json
// @Param code body dto.ExchangeCodeRequest true "Authorization code"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /auth/google/exchange-code [post]
func (h *googleOAuthHandler) exchangeCode(c *gin.Context) {
	var req dto.ExchangeCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Authorization code is required."})
		return
	}

	issued, err := h.signIn(c, req.Code)
	if err != nil {
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			middleware.GetLoggerFromCtx(c.Request.Context()).Error("Google code exchange failed", slog.String("error", err.Error()))
			err = apperrors.NewUpstreamError("Failed to sign in with Google", err)
		}
		respondError(c, err, "Failed to sign in with Google")
		return
	}

	h.cookies.set(c, issued)
	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:      issued.Token,
		Session:    &issued.Session,
		RedirectTo: authflow.ResolveRedirect(req.CallbackURL, h.appBaseURL),
	})
}

func (h *googleOAuthHandler) signIn(c *gin.Context, code string) (*domain.IssuedSession, error) {
	if code == "" {
		return nil, apperrors.NewBadRequestError("Authorization code is required.")
	}
	profile, err := h.googleOAuthService.ProfileFromCode(c.Request.Context(), code)
	if err != nil {
		return nil, err
	}
	return h.authService.SignInWithOAuth(c.Request.Context(), *profile)
}

func (h *googleOAuthHandler) redirectWithError(c *gin.Context, code string) {
	c.Redirect(http.StatusTemporaryRedirect, h.appBaseURL+oauthErrorPath+"?error="+url.QueryEscape(code))
}

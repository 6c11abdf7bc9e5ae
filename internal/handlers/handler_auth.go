package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/neptunetech/storefront/internal/apperrors"
	"github.com/neptunetech/storefront/internal/core/authflow"
	"github.com/neptunetech/storefront/internal/core/domain"
	portssvc "github.com/neptunetech/storefront/internal/core/ports/services"
	"github.com/neptunetech/storefront/internal/dto"
	"github.com/neptunetech/storefront/internal/middleware"
	"github.com/neptunetech/storefront/internal/platform/config"
	"github.com/ulule/limiter/v3"
)

// authHandler handles the credential sign-in flows and the session endpoints.
type authHandler struct {
	authService  portssvc.AuthSvcFacade
	userService  portssvc.UserSvcFacade
	tokenService portssvc.TokenSvcFacade
	cookies      sessionCookies
	appBaseURL   string
}

func newAuthHandler(cfg *config.Config, services *portssvc.ServiceContainer) *authHandler {
	return &authHandler{
		authService:  services.Auth,
		userService:  services.User,
		tokenService: services.TokenService,
		cookies:      newSessionCookies(cfg),
		appBaseURL:   cfg.AppBaseURL,
	}
}

// registerAuthRoutes sets up the public /api/auth routes. Login and register
// share the given rate limiter.
func registerAuthRoutes(rg *gin.RouterGroup, cfg *config.Config, services *portssvc.ServiceContainer, authLimiter *limiter.Limiter) {
	h := newAuthHandler(cfg, services)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", middleware.RateLimit(authLimiter), h.register)
		auth.POST("/login", middleware.RateLimit(authLimiter), h.login)
		auth.POST("/new-verification", h.newVerification)
		auth.POST("/reset", h.reset)
		auth.POST("/new-password", h.newPassword)
		auth.GET("/session", h.session)
		auth.POST("/logout", h.logout)
	}
}

// registerAccountRoutes sets up the routes of the signed-in user.
func registerAccountRoutes(rg *gin.RouterGroup, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := newAuthHandler(cfg, services)

	rg.GET("/user", h.currentUser)
	rg.PUT("/settings", h.updateSettings)
}

// register godoc
// @Summary Register a new user
// @Description Creates a credentials account and emails a verification link. When the email cannot be delivered the account still exists and a warning is returned.
// @Tags auth
// @Accept json
// @Produce json
// @Param register body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.ActionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Email already in use"
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/register [post]
func (h *authHandler) register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	msg, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrDelivery) {
			c.JSON(http.StatusCreated, dto.ActionResponse{
				Success: "Account created!",
				Warning: apperrors.Message(err, "Failed to send verification email"),
			})
			return
		}
		respondError(c, err, "Failed to register user")
		return
	}

	c.JSON(http.StatusCreated, dto.ActionResponse{Success: msg})
}

// login godoc
// @Summary Sign in with email and password
// @Description Checks credentials, then either signs the user in, re-sends the verification email, or emails a two-factor code. Post the code with the same credentials to finish a two-factor sign-in.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Something went wrong!")
		return
	}

	switch result.Status {
	case domain.LoginConfirmationSent:
		c.JSON(http.StatusOK, dto.LoginResponse{Success: result.Message})
	case domain.LoginTwoFactorRequired:
		c.JSON(http.StatusOK, dto.LoginResponse{TwoFactor: true})
	default:
		h.cookies.set(c, result.Issued)
		c.JSON(http.StatusOK, dto.LoginResponse{
			Token:      result.Issued.Token,
			Session:    &result.Issued.Session,
			RedirectTo: authflow.ResolveRedirect(req.CallbackURL, h.appBaseURL),
		})
	}
}

// newVerification godoc
// @Summary Confirm an email address
// @Tags auth
// @Accept json
// @Produce json
// @Param verification body dto.NewVerificationRequest true "Emailed token"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /auth/new-verification [post]
func (h *authHandler) newVerification(c *gin.Context) {
	var req dto.NewVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	msg, err := h.authService.VerifyEmail(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, err, "Something went wrong!")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: msg})
}

// reset godoc
// @Summary Request a password reset email
// @Tags auth
// @Accept json
// @Produce json
// @Param reset body dto.ResetRequest true "Account email"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /auth/reset [post]
func (h *authHandler) reset(c *gin.Context) {
	var req dto.ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	msg, err := h.authService.RequestPasswordReset(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Something went wrong!")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: msg})
}

// newPassword godoc
// @Summary Set a new password with a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param password body dto.NewPasswordRequest true "Reset token and new password"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /auth/new-password [post]
func (h *authHandler) newPassword(c *gin.Context) {
	var req dto.NewPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	msg, err := h.authService.ResetPassword(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Something went wrong!")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: msg})
}

// session godoc
// @Summary Get the current session
// @Description Re-reads the user, re-signs the session token with a fresh expiry and returns the session view. Without a valid session an empty object is returned.
// @Tags auth
// @Produce json
// @Success 200 {object} domain.Session
// @Router /auth/session [get]
func (h *authHandler) session(c *gin.Context) {
	token, err := middleware.SessionTokenFromRequest(c, h.cookies.name)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	issued, err := h.authService.RefreshSession(c.Request.Context(), token)
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Info("Session refresh rejected", slog.String("error", err.Error()))
		h.cookies.clear(c)
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	h.cookies.set(c, issued)
	c.JSON(http.StatusOK, issued.Session)
}

// logout godoc
// @Summary Sign out
// @Tags auth
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /auth/logout [post]
func (h *authHandler) logout(c *gin.Context) {
	h.cookies.clear(c)
	c.JSON(http.StatusOK, SuccessResponse{Success: "Signed out"})
}

// currentUser godoc
// @Summary Get the signed-in user
// @Tags user
// @Produce json
// @Success 200 {object} domain.Session
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /user [get]
func (h *authHandler) currentUser(c *gin.Context) {
	claims, ok := middleware.GetClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, authflow.ProjectSession(claims))
}

// updateSettings godoc
// @Summary Update the signed-in user's settings
// @Description Omitted fields are left unchanged. Changing the email only sends a verification link to the new address. OAuth users cannot change email, password or two-factor settings.
// @Tags user
// @Accept json
// @Produce json
// @Param settings body dto.SettingsRequest true "Settings"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /settings [put]
func (h *authHandler) updateSettings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	msg, err := h.userService.UpdateSettings(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Something went wrong!")
		return
	}

	// The session token carries the profile, so hand out a fresh one.
	issued, err := h.tokenService.IssueSession(c.Request.Context(), userID)
	if err != nil {
		logger.Warn("Failed to refresh session after settings update", slog.String("error", err.Error()))
	} else {
		h.cookies.set(c, issued)
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: msg})
}

// sessionCookies writes and clears the HTTP-only session cookie.
type sessionCookies struct {
	name   string
	secure bool
}

func newSessionCookies(cfg *config.Config) sessionCookies {
	return sessionCookies{name: cfg.SessionCookieName, secure: cfg.IsProduction}
}

func (s sessionCookies) set(c *gin.Context, issued *domain.IssuedSession) {
	maxAge := int(time.Until(issued.ExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.name, issued.Token, maxAge, "/", "", s.secure, true)
}

func (s sessionCookies) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.name, "", -1, "/", "", s.secure, true)
}

package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/neptunetech/storefront/internal/core/domain"
	"github.com/neptunetech/storefront/internal/middleware"
	"github.com/neptunetech/storefront/internal/utils"
	"github.com/posthog/posthog-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	testSecret = "test-secret-key-that-is-long-enough"
	cookieName = "storefront_session"
)

// jwtTokenService parses real session JWTs; the issuing methods are unused here.
type jwtTokenService struct{}

func (jwtTokenService) IssueSession(context.Context, string) (*domain.IssuedSession, error) {
	return nil, nil
}
func (jwtTokenService) ParseSessionToken(_ context.Context, token string) (domain.SessionClaims, error) {
	return utils.ParseSessionJWT(token, testSecret)
}
func (jwtTokenService) GenerateVerificationToken(context.Context, string, *string) (string, error) {
	return "", nil
}
func (jwtTokenService) GeneratePasswordResetToken(context.Context, string) (string, error) {
	return "", nil
}
func (jwtTokenService) GenerateTwoFactorToken(context.Context, string) (string, error) {
	return "", nil
}

type MiddlewareTestSuite struct {
	suite.Suite
	router *gin.Engine
	logs   *bytes.Buffer
}

func (suite *MiddlewareTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.logs = &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(suite.logs, nil))

	suite.router = gin.New()
	suite.router.Use(middleware.StructuredLoggingMiddleware(logger))

	protected := suite.router.Group("/api", middleware.AuthMiddleware(jwtTokenService{}, cookieName))
	protected.GET("/user", func(c *gin.Context) {
		userID, _ := middleware.GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": userID})
	})
	protected.GET("/admin", middleware.RequireRole(domain.RoleAdmin, "Forbidden"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": "Allowed API Route!"})
	})

	optional := suite.router.Group("/open", middleware.OptionalAuthMiddleware(jwtTokenService{}, cookieName))
	optional.GET("/whoami", func(c *gin.Context) {
		userID, _ := middleware.GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": userID})
	})
	optional.GET("/admin", middleware.RequireRole(domain.RoleAdmin, "Forbidden"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": "Allowed API Route!"})
	})
}

func (suite *MiddlewareTestSuite) token(role domain.UserRole, expiresIn time.Duration) string {
	now := time.Now()
	token, err := utils.GenerateSessionJWT(domain.SessionClaims{
		Subject:   "user-1",
		Role:      role,
		ExpiresAt: now.Add(expiresIn),
	}, testSecret, "storefront-test", now.Add(-2*time.Hour))
	suite.Require().NoError(err)
	return token
}

func (suite *MiddlewareTestSuite) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *MiddlewareTestSuite) TestAuth_BearerHeader() {
	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.Header.Set("Authorization", "Bearer "+suite.token(domain.RoleUser, time.Hour))

	w := suite.do(req)

	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"id":"user-1"}`, w.Body.String())
	suite.NotEmpty(w.Header().Get("X-Request-ID"))
	suite.Contains(suite.logs.String(), `"user_id":"user-1"`)
}

func (suite *MiddlewareTestSuite) TestAuth_Cookie() {
	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: suite.token(domain.RoleUser, time.Hour)})

	suite.Equal(http.StatusOK, suite.do(req).Code)
}

func (suite *MiddlewareTestSuite) TestAuth_Rejections() {
	cases := map[string]string{
		"":                    "Authorization required",
		"Token abc":           "Authorization header format must be Bearer {token}",
		"Bearer not-a-jwt":    "Invalid token",
		"Bearer " + suite.token(domain.RoleUser, -time.Minute): "Token has expired",
	}
	for header, wantMsg := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := suite.do(req)

		suite.Equal(http.StatusUnauthorized, w.Code, header)
		var body map[string]string
		suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
		suite.Equal(wantMsg, body["error"], header)
	}
}

func (suite *MiddlewareTestSuite) TestRequireRole() {
	req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	req.Header.Set("Authorization", "Bearer "+suite.token(domain.RoleUser, time.Hour))
	w := suite.do(req)
	suite.Equal(http.StatusForbidden, w.Code)
	suite.JSONEq(`{"error":"Forbidden"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	req.Header.Set("Authorization", "Bearer "+suite.token(domain.RoleAdmin, time.Hour))
	w = suite.do(req)
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"success":"Allowed API Route!"}`, w.Body.String())
}

func (suite *MiddlewareTestSuite) TestOptionalAuth() {
	cases := map[string]string{
		"":                 "",
		"Bearer not-a-jwt": "",
		"Bearer " + suite.token(domain.RoleUser, time.Hour): "user-1",
	}
	for header, wantID := range cases {
		req := httptest.NewRequest(http.MethodGet, "/open/whoami", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := suite.do(req)

		suite.Equal(http.StatusOK, w.Code, header)
		suite.JSONEq(`{"id":"`+wantID+`"}`, w.Body.String(), header)
	}
}

func (suite *MiddlewareTestSuite) TestRequireRole_AnonymousIsForbidden() {
	w := suite.do(httptest.NewRequest(http.MethodGet, "/open/admin", nil))
	suite.Equal(http.StatusForbidden, w.Code)
	suite.JSONEq(`{"error":"Forbidden"}`, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/open/admin", nil)
	req.Header.Set("Authorization", "Bearer "+suite.token(domain.RoleAdmin, time.Hour))
	suite.Equal(http.StatusOK, suite.do(req).Code)
}

func TestMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareTestSuite))
}

func TestGetLoggerFromCtx_FallsBackToDefault(t *testing.T) {
	assert.Equal(t, slog.Default(), middleware.GetLoggerFromCtx(context.Background()))

	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	ctx := middleware.WithLogger(context.Background(), logger)
	assert.Same(t, logger, middleware.GetLoggerFromCtx(ctx))
}

func limitedRouter(t *testing.T, redisURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := middleware.NewRateLimiterStore(context.Background(), redisURL)
	require.NoError(t, err)
	lim, err := middleware.NewLimiter(store, "2-M")
	require.NoError(t, err)

	r := gin.New()
	r.POST("/login", middleware.RateLimit(lim), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func assertThirdRequestLimited(t *testing.T, r *gin.Engine) {
	t.Helper()
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimit_MemoryStore(t *testing.T) {
	assertThirdRequestLimited(t, limitedRouter(t, ""))
}

func TestRateLimit_RedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	assertThirdRequestLimited(t, limitedRouter(t, "redis://"+mr.Addr()))
}

func TestNewRateLimiterStore_InvalidURL(t *testing.T) {
	_, err := middleware.NewRateLimiterStore(context.Background(), "://nope")
	assert.Error(t, err)
}

type recordingSink struct {
	mu     sync.Mutex
	events []posthog.Capture
}

func (s *recordingSink) Enqueue(m posthog.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := m.(posthog.Capture); ok {
		s.events = append(s.events, c)
	}
	return nil
}

func (s *recordingSink) Close() error { return nil }

func TestPosthogMiddleware_TracksSignedInSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sink := &recordingSink{}
	client := utils.NewPosthogClientWrapper(sink, slog.Default())

	r := gin.New()
	r.Use(middleware.PosthogMiddleware(client))
	api := r.Group("/api", middleware.AuthMiddleware(jwtTokenService{}, cookieName))
	api.GET("/products/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	api.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	now := time.Now()
	token, err := utils.GenerateSessionJWT(domain.SessionClaims{Subject: "user-1", Role: domain.RoleAdmin, ExpiresAt: now.Add(time.Hour)}, testSecret, "t", now)
	require.NoError(t, err)

	for _, path := range []string{"/api/products/42", "/api/missing"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Len(t, sink.events, 1)
	assert.Equal(t, "user-1", sink.events[0].DistinctId)
	assert.Equal(t, "api_products_id", sink.events[0].Event)
	assert.Equal(t, "ADMIN", sink.events[0].Properties["role"])
	assert.Equal(t, map[string]string{"id": "42"}, sink.events[0].Properties["params"])
}

func TestPosthogClientWrapper_ZeroValueIsNoop(t *testing.T) {
	var w *utils.PosthogClientWrapper
	assert.False(t, w.IsInitialized())
	w.Enqueue("u", "e", nil)
	w.Close()
}

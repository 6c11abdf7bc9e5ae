package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neptunetech/storefront/cmd/docs"
	portssvc "github.com/neptunetech/storefront/internal/core/ports/services"
	"github.com/neptunetech/storefront/internal/middleware"
	"github.com/neptunetech/storefront/internal/platform/config"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes. authLimiter throttles the
// login and register endpoints.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	authLimiter *limiter.Limiter,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")
	registerAuthRoutes(api, cfg, services, authLimiter)
	registerGoogleOAuthRoutes(api, cfg, services)
	registerEscrowRoutes(api, services.Escrow)

	protected := api.Group("", middleware.AuthMiddleware(services.TokenService, cfg.SessionCookieName))
	registerProductRoutes(api, protected, services)
	registerAccountRoutes(protected, cfg, services)
	registerAdminRoutes(api.Group("", middleware.OptionalAuthMiddleware(services.TokenService, cfg.SessionCookieName)))

	setupSwaggerRoutes(r, cfg)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

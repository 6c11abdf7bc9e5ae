package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neptunetech/storefront/internal/core/domain"
	"github.com/neptunetech/storefront/internal/middleware"
)

// registerAdminRoutes registers the admin-only routes. rg must be behind
// OptionalAuthMiddleware so that anonymous callers get 403 rather than 401.
func registerAdminRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	{
		admin.GET("", middleware.RequireRole(domain.RoleAdmin, "Forbidden"), adminRoute)
		admin.POST("/action", middleware.RequireRole(domain.RoleAdmin, "Forbidden Server Action!"), adminAction)
	}
}

// adminRoute godoc
// @Summary Admin-only API check
// @Tags admin
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin [get]
func adminRoute(c *gin.Context) {
	c.JSON(http.StatusOK, SuccessResponse{Success: "Allowed API Route!"})
}

// adminAction godoc
// @Summary Admin-only action check
// @Tags admin
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/action [post]
func adminAction(c *gin.Context) {
	c.JSON(http.StatusOK, SuccessResponse{Success: "Allowed Server Action!"})
}

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neptunetech/storefront/internal/apperrors"
	"github.com/neptunetech/storefront/internal/middleware"
)

// ErrorResponse is the generic error body returned by handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is the generic success body returned by form-style handlers.
type SuccessResponse struct {
	Success string `json:"success"`
}

// respondError writes err as {"error": msg}. AppErrors carry their own status
// and message; anything else is logged and reported as a 500 with fallback.
func respondError(c *gin.Context, err error, fallback string) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message})
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Error(fallback, slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/neptunetech/storefront/internal/core/ports/services"
	"github.com/neptunetech/storefront/internal/dto"
	"github.com/neptunetech/storefront/internal/middleware"
)

type escrowHandler struct {
	escrowService portssvc.EscrowSvcFacade
}

func registerEscrowRoutes(rg *gin.RouterGroup, escrowService portssvc.EscrowSvcFacade) {
	h := &escrowHandler{escrowService: escrowService}

	rg.POST("/escrow/create", h.createEscrow)
}

// createEscrow godoc
// @Summary Create an escrow
// @Description Forwards the JSON body unchanged to the escrow provider and relays its status and JSON response.
// @Tags escrow
// @Accept json
// @Produce json
// @Param payload body object true "Escrow provider payload"
// @Success 200 {object} object "Provider response"
// @Failure 500 {object} dto.EscrowErrorEnvelope
// @Router /escrow/create [post]
func (h *escrowHandler) createEscrow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	payload, err := io.ReadAll(c.Request.Body)
	if err == nil && !json.Valid(payload) {
		err = errors.New("request body is not valid JSON")
	}
	if err != nil {
		logger.Warn("Rejected escrow request", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.NewEscrowErrorEnvelope(fmt.Errorf("invalid request body: %w", err)))
		return
	}

	resp, err := h.escrowService.CreateEscrow(c.Request.Context(), payload)
	if err != nil {
		logger.Error("Escrow relay failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.NewEscrowErrorEnvelope(err))
		return
	}

	c.Data(resp.StatusCode, "application/json", resp.Body)
}

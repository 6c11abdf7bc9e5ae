// Package escrow relays create-escrow calls to the external escrow API.
package escrow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/neptunetech/storefront/internal/core/ports/gateways"
	"github.com/neptunetech/storefront/internal/middleware"
	"github.com/neptunetech/storefront/internal/platform/config"
)

type HTTPClient struct {
	httpClient *http.Client
	url        string
	apiKey     string
}

var _ gateways.EscrowClient = (*HTTPClient)(nil)

func NewHTTPClient(cfg *config.Config, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{
		httpClient: httpClient,
		url:        cfg.EscrowAPIURL,
		apiKey:     cfg.EscrowAPIKey,
	}
}

// CreateEscrow posts payload as-is. Any upstream status is returned, but the
// body must be JSON.
func (c *HTTPClient) CreateEscrow(ctx context.Context, payload []byte) (*gateways.EscrowResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	logger.Debug("Sending to external API", slog.String("url", c.url))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build escrow request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("escrow request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read escrow response: %w", err)
	}
	if !json.Valid(body) {
		return nil, errors.New("escrow response is not valid JSON")
	}

	logger.Info("External API response", slog.Int("status", resp.StatusCode))
	return &gateways.EscrowResponse{StatusCode: resp.StatusCode, Body: body}, nil
}

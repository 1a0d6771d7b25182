package api

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Checker-Finance/market-radar/internal/polymarket"
)

// MarketService is the live upstream leg used by GET /api/markets.
type MarketService interface {
	FetchMarkets(ctx context.Context, limit int) (polymarket.Batch, error)
}

// MarketsHandler serves the local polling endpoint.
type MarketsHandler struct {
	logger       *zap.Logger
	service      MarketService
	defaultLimit int
	maxLimit     int
}

// NewMarketsHandler creates a MarketsHandler. Limits <= 0 use 100 and 500.
func NewMarketsHandler(logger *zap.Logger, service MarketService, defaultLimit, maxLimit int) *MarketsHandler {
	if defaultLimit <= 0 {
		defaultLimit = polymarket.DefaultLimit
	}
	if maxLimit <= 0 {
		maxLimit = 500
	}
	return &MarketsHandler{
		logger:       logger,
		service:      service,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// ListMarkets handles GET /api/markets?limit=N. It fetches from upstream on
// every call; responses are never cached.
func (h *MarketsHandler) ListMarkets(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "no-store, max-age=0")

	limit := h.parseLimit(c.Query("limit"))
	batch, err := h.service.FetchMarkets(c.UserContext(), limit)
	if err != nil {
		var fe *polymarket.FetchError
		if errors.As(err, &fe) {
			h.logger.Warn("api.markets.upstream_status",
				zap.Int("status", fe.Status),
				zap.Int("limit", limit))
			return c.Status(fe.Status).JSON(fiber.Map{
				"error": fmt.Sprintf("API request failed: %d", fe.Status),
			})
		}
		h.logger.Error("api.markets.fetch_failed", zap.Int("limit", limit), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch markets"})
	}

	if !batch.IsMarkets() {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Status(fiber.StatusOK).Send(batch.Passthrough)
	}
	return c.Status(fiber.StatusOK).JSON(batch.Markets)
}

// parseLimit falls back to the default for anything but a positive integer.
func (h *MarketsHandler) parseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return h.defaultLimit
	}
	if n > h.maxLimit {
		return h.maxLimit
	}
	return n
}

package polymarket

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Checker-Finance/market-radar/internal/metrics"
)

// marketFetcher is the upstream leg, satisfied by *Client.
type marketFetcher interface {
	FetchMarkets(ctx context.Context, limit int) ([]byte, error)
}

// Service fetches Gamma markets and normalizes them.
type Service struct {
	logger       *zap.Logger
	client       marketFetcher
	normalizer   *Normalizer
	defaultLimit int
}

// NewService wires a fetcher to a normalizer. defaultLimit <= 0 uses DefaultLimit.
func NewService(logger *zap.Logger, client marketFetcher, defaultLimit int) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	return &Service{
		logger:       logger,
		client:       client,
		normalizer:   NewNormalizer(logger),
		defaultLimit: defaultLimit,
	}
}

// DefaultLimit returns the limit used when callers pass limit <= 0.
func (s *Service) DefaultLimit() int { return s.defaultLimit }

// FetchMarkets fetches up to limit markets and normalizes them. Upstream
// non-2xx answers are *FetchError; transport errors are wrapped.
func (s *Service) FetchMarkets(ctx context.Context, limit int) (Batch, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}

	body, err := s.client.FetchMarkets(ctx, limit)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			metrics.IncError("gamma", "http_status")
			return Batch{}, fe
		}
		metrics.IncError("gamma", "transport")
		s.logger.Error("gamma.fetch_failed", zap.Int("limit", limit), zap.Error(err))
		return Batch{}, fmt.Errorf("fetch gamma markets: %w", err)
	}

	batch, err := s.normalizer.NormalizePayload(body)
	if err != nil {
		metrics.IncError("gamma", "malformed_payload")
		s.logger.Error("gamma.decode_failed", zap.Int("bytes", len(body)), zap.Error(err))
		return Batch{}, err
	}

	s.logger.Debug("gamma.fetch_ok",
		zap.Int("limit", limit),
		zap.Int("markets", len(batch.Markets)),
		zap.Bool("passthrough", !batch.IsMarkets()))
	return batch, nil
}

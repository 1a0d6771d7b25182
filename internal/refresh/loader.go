package refresh

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/market-radar/internal/httpclient"
	"github.com/Checker-Finance/market-radar/internal/polymarket"
	"github.com/Checker-Finance/market-radar/pkg/model"
)

// Loader reads already-normalized markets from a radar endpoint
// (GET /api/markets). It does not transform the payload.
type Loader struct {
	logger *zap.Logger
	exec   *httpclient.Executor
}

// NewLoader builds a Loader. A nil httpClient gets a 30s timeout client.
func NewLoader(logger *zap.Logger, httpClient *http.Client) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	exec := httpclient.New(logger, nil, httpClient, 0, "radar", func(status int, body []byte) error {
		return polymarket.NewFetchError(status, body)
	})
	return &Loader{logger: logger, exec: exec}
}

// Load fetches url. Non-2xx answers are *polymarket.FetchError and a body
// that is not a market array is *polymarket.MalformedPayloadError.
func (l *Loader) Load(ctx context.Context, url string) ([]model.Market, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	body, err := l.exec.Do(ctx, req, "radar")
	if err != nil {
		return nil, err
	}

	var markets []model.Market
	if err := json.Unmarshal(bytes.TrimSpace(body), &markets); err != nil {
		l.logger.Warn("radar.decode_failed", zap.String("url", url), zap.Error(err))
		return nil, &polymarket.MalformedPayloadError{Err: err}
	}
	if markets == nil {
		markets = []model.Market{}
	}
	return markets, nil
}

// URLSource adapts a Loader to Source.
type URLSource struct {
	Loader *Loader
	URL    string
}

func (s URLSource) Fetch(ctx context.Context) ([]model.Market, error) {
	return s.Loader.Load(ctx, s.URL)
}

// ServiceSource adapts a Gamma service to Source. A non-array payload ends
// the cycle with a *polymarket.MalformedPayloadError.
type ServiceSource struct {
	Service *polymarket.Service
	Limit   int
}

func (s ServiceSource) Fetch(ctx context.Context) ([]model.Market, error) {
	batch, err := s.Service.FetchMarkets(ctx, s.Limit)
	if err != nil {
		return nil, err
	}
	if !batch.IsMarkets() {
		return nil, &polymarket.MalformedPayloadError{Err: &passthroughError{payload: batch.Passthrough}}
	}
	return batch.Markets, nil
}

type passthroughError struct {
	payload json.RawMessage
}

func (e *passthroughError) Error() string {
	p := string(e.payload)
	if len(p) > 200 {
		p = p[:200] + "..."
	}
	return "expected a market array, got " + p
}

package polymarket

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/market-radar/internal/httpclient"
	"github.com/Checker-Finance/market-radar/internal/rate"
)

const (
	DefaultBaseURL = "https://gamma-api.polymarket.com"
	DefaultLimit   = 100

	rateLimitKey = "gamma"
)

// ClientConfig configures the Gamma HTTP client.
type ClientConfig struct {
	BaseURL  string
	Timeout  time.Duration
	RetryMax int
}

// Client wraps HTTP communication with the Gamma market API.
type Client struct {
	logger  *zap.Logger
	exec    *httpclient.Executor
	baseURL string
}

// NewClient constructs a Gamma client. Non-2xx answers surface as *FetchError.
func NewClient(logger *zap.Logger, rateMgr *rate.Manager, cfg ClientConfig) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	exec := httpclient.New(logger, rateMgr, httpClient, cfg.RetryMax, "gamma", func(status int, body []byte) error {
		fe := NewFetchError(status, body)
		logger.Warn("gamma.client_error",
			zap.Int("status", status),
			zap.String("error", fe.Message),
			zap.String("body", truncate(fe.Body, 512)))
		return fe
	})

	return &Client{
		logger:  logger,
		exec:    exec,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// FetchMarkets returns the raw body of
// GET /markets?closed=false&limit=<limit>. limit <= 0 uses DefaultLimit.
func (c *Client) FetchMarkets(ctx context.Context, limit int) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	q := url.Values{}
	q.Set("closed", "false")
	q.Set("limit", strconv.Itoa(limit))
	endpoint := fmt.Sprintf("%s/markets?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	return c.exec.Do(ctx, req, rateLimitKey)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/market-radar/internal/metrics"
	"github.com/Checker-Finance/market-radar/internal/rate"
)

// Backoff returns the retry sleep duration for the given attempt number.
func Backoff(attempt int) time.Duration {
	switch attempt {
	case 0:
		return 100 * time.Millisecond
	case 1:
		return 250 * time.Millisecond
	default:
		return 500 * time.Millisecond
	}
}

// ErrorHandler turns a non-2xx response into an error. It receives 4xx
// responses immediately and 5xx responses once retries are exhausted.
type ErrorHandler func(status int, body []byte) error

// Executor handles rate-limited, retrying HTTP execution.
type Executor struct {
	logger       *zap.Logger
	rateMgr      *rate.Manager
	http         *http.Client
	retryMax     int
	upstream     string
	errorHandler ErrorHandler
}

// New creates an Executor. upstream tags log events and metrics
// ("gamma.http_failed"). If errorHandler is nil a generic error is returned.
func New(
	logger *zap.Logger,
	rateMgr *rate.Manager,
	httpClient *http.Client,
	retryMax int,
	upstream string,
	errorHandler ErrorHandler,
) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if retryMax < 0 {
		retryMax = 0
	}
	return &Executor{
		logger:       logger,
		rateMgr:      rateMgr,
		http:         httpClient,
		retryMax:     retryMax,
		upstream:     upstream,
		errorHandler: errorHandler,
	}
}

// Do executes req with rate limiting and retries and returns the body of the
// first 2xx response. rateLimitKey scopes the rate limiter.
func (e *Executor) Do(ctx context.Context, req *http.Request, rateLimitKey string) ([]byte, error) {
	if e.rateMgr != nil {
		if err := e.rateMgr.Wait(ctx, rateLimitKey); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var (
		lastErr    error
		lastStatus int
		lastBody   []byte
	)
	for attempt := 0; attempt <= e.retryMax; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(Backoff(attempt - 1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			if err := rewind(req); err != nil {
				return nil, err
			}
		}

		start := time.Now()
		status, body, err := e.roundTrip(req)
		metrics.ObserveDuration(metrics.UpstreamRequestDuration, start, e.upstream)
		elapsed := time.Since(start)

		if err != nil {
			metrics.IncUpstreamRequest(e.upstream, "transport_error")
			lastErr, lastStatus = err, 0
			e.logger.Warn(e.upstream+".http_failed",
				zap.String("url", req.URL.String()),
				zap.Error(err),
				zap.Int("attempt", attempt))
			continue
		}
		metrics.IncUpstreamRequest(e.upstream, strconv.Itoa(status))

		if status >= 500 {
			e.logger.Warn(e.upstream+".server_error",
				zap.Int("status", status),
				zap.String("url", req.URL.String()),
				zap.Duration("latency", elapsed),
				zap.Int("attempt", attempt))
			lastErr, lastStatus, lastBody = nil, status, body
			continue
		}

		if status < 200 || status >= 300 {
			return nil, e.fail(status, body)
		}

		e.logger.Debug(e.upstream+".http_success",
			zap.String("url", req.URL.String()),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed))
		return body, nil
	}

	if lastStatus != 0 {
		return nil, e.fail(lastStatus, lastBody)
	}
	return nil, fmt.Errorf("%s request failed after %d attempts: %w", e.upstream, e.retryMax+1, lastErr)
}

// DoJSON is Do followed by decoding into out. Numbers decode as json.Number
// so decimal text is never rounded through float64.
func (e *Executor) DoJSON(ctx context.Context, req *http.Request, rateLimitKey string, out any) error {
	body, err := e.Do(ctx, req, rateLimitKey)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		e.logger.Warn(e.upstream+".decode_failed",
			zap.Error(err),
			zap.String("url", req.URL.String()))
		return fmt.Errorf("decode failed: %w", err)
	}
	return nil
}

func (e *Executor) roundTrip(req *http.Request) (int, []byte, error) {
	resp, err := e.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (e *Executor) fail(status int, body []byte) error {
	if e.errorHandler != nil {
		return e.errorHandler(status, body)
	}
	return fmt.Errorf("%s returned %d", e.upstream, status)
}

// rewind resets a consumed request body before a retry.
func rewind(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody {
		return nil
	}
	if req.GetBody == nil {
		return fmt.Errorf("request body cannot be replayed for retry")
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Errorf("replay request body: %w", err)
	}
	req.Body = body
	return nil
}

// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/reelpick/internal/config"
	"github.com/tomtom215/reelpick/internal/metrics"
)

// maxRetryDelay caps a single backoff wait, including server supplied Retry-After values.
const maxRetryDelay = 30 * time.Second

// httpClient is the shared transport for every catalog: rate limiting,
// 429 backoff, circuit breaking, JSON decoding and request metrics.
type httpClient struct {
	name           string
	baseURL        string
	client         *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration
	breaker        *Breaker
	logger         zerolog.Logger
}

func newHTTPClient(name string, cfg *config.CatalogClientConfig, breakerCfg *config.BreakerConfig, logger zerolog.Logger) *httpClient {
	c := &httpClient{
		name:           name,
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		client:         &http.Client{Timeout: cfg.Timeout},
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
		breaker:        NewBreaker(name+"-api", breakerCfg, logger),
		logger:         logger.With().Str("component", "catalog").Str("catalog", name).Logger(),
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst)
	}
	return c
}

// getJSON performs a GET on path with params and decodes the 200 response into out.
// The URL is never logged because params carry the API key.
func (c *httpClient) getJSON(ctx context.Context, operation, path string, params url.Values, out any) error {
	start := time.Now()
	err := c.breaker.Execute(ctx, func() error {
		return c.fetch(ctx, path, params, out)
	})
	outcome := outcomeFor(ctx, err)
	metrics.RecordCatalogRequest(c.name, operation, outcome, time.Since(start))

	if err != nil && outcome == metrics.OutcomeError {
		c.logger.Debug().Err(err).Str("operation", operation).Msg("Catalog request failed")
	}
	return err
}

func (c *httpClient) fetch(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	resp, err := c.doRequestWithRateLimit(ctx, reqURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Catalog: c.name, StatusCode: resp.StatusCode, Body: readBodyForError(resp.Body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", c.name, err)
	}
	return nil
}

// doRequestWithRateLimit performs an HTTP request with automatic rate limit handling.
// Every attempt first takes a token from the client-side limiter. HTTP 429
// responses are retried with exponential backoff (base, 2*base, 4*base, ...)
// unless the server sends Retry-After. Waits are cancelled with ctx.
func (c *httpClient) doRequestWithRateLimit(ctx context.Context, reqURL string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("%s rate limiter: %w", c.name, err)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s request failed: %w", c.name, redactURLError(err))
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		if attempt >= c.maxRetries {
			return resp, nil
		}
		delay := c.backoff(attempt, resp.Header.Get("Retry-After"))
		_ = resp.Body.Close()

		metrics.CatalogRetries.WithLabelValues(c.name).Inc()
		c.logger.Warn().
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Rate limited by upstream, backing off")

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}
}

// backoff returns the wait before retry number attempt+1.
func (c *httpClient) backoff(attempt int, retryAfter string) time.Duration {
	delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
	if d, ok := parseRetryAfter(retryAfter, time.Now()); ok {
		delay = d
	}
	return min(delay, maxRetryDelay)
}

// parseRetryAfter accepts both forms allowed by RFC 9110: delay-seconds and an HTTP-date.
func parseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if at, err := http.ParseTime(value); err == nil {
		return max(at.Sub(now), 0), true
	}
	return 0, false
}

// redactURLError drops the request URL from transport errors so API keys
// in the query string never reach logs.
func redactURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

// outcomeFor maps a request error onto the catalog_requests_total outcome label.
func outcomeFor(ctx context.Context, err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case ctx.Err() != nil:
		return metrics.OutcomeCancelled
	case IsNotFound(err):
		return metrics.OutcomeNotFound
	case IsRateLimited(err):
		return metrics.OutcomeRateLimited
	case IsRejected(err):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}

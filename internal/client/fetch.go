package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Belphemur/ShowFinder/internal/apperrors"
	"github.com/Belphemur/ShowFinder/internal/cache"
	"github.com/Belphemur/ShowFinder/internal/config"
	"github.com/Belphemur/ShowFinder/internal/metrics"
	"github.com/Belphemur/ShowFinder/internal/parser"
)

// getJSON performs one logical GET against TVMaze (retries included) and decodes
// the JSON body into out. endpoint is a short label used for metrics.
func (c *client) getJSON(ctx context.Context, endpoint, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewUpstreamStatusError(url, resp.StatusCode)
	}

	body, err := parser.NewUTF8Reader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return fmt.Errorf("failed to decode response charset: %w", err)
	}

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode JSON response: %w", err)
	}
	return nil
}

// cached returns the value stored under key, or calls fetch and stores its result.
// A nil cache always calls fetch. Undecodable entries are treated as misses.
func cached[T any](ctx context.Context, c cache.Cache, key cache.Key, fetch func() (T, error)) (T, error) {
	logger := config.GetLogger()

	if c != nil {
		if data, ok := c.Get(ctx, key); ok {
			var value T
			err := json.Unmarshal(data, &value)
			if err == nil {
				logger.Debug().Str("key", key.String()).Msg("Serving TVMaze response from cache")
				return value, nil
			}
			logger.Warn().Err(err).Str("key", key.String()).Msg("Discarding undecodable cache entry")
		}
	}

	value, err := fetch()
	if err != nil {
		return value, err
	}

	if c != nil {
		if data, err := json.Marshal(value); err == nil {
			c.Set(ctx, key, data)
		} else {
			logger.Warn().Err(err).Str("key", key.String()).Msg("Failed to encode value for cache")
		}
	}
	return value, nil
}

package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/failsafehttp"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/Belphemur/ShowFinder/internal/config"
	"github.com/Belphemur/ShowFinder/internal/metrics"
)

// retrySettings is the parsed form of the retry section of the config.
type retrySettings struct {
	maxRetries int
	delay      time.Duration
	maxDelay   time.Duration
}

func parseRetrySettings(cfg *config.Config) retrySettings {
	logger := config.GetLogger()

	settings := retrySettings{
		maxRetries: cfg.Retry.MaxRetries,
		delay:      250 * time.Millisecond,
		maxDelay:   2 * time.Second,
	}
	if settings.maxRetries < 0 {
		settings.maxRetries = 0
	}
	if cfg.Retry.Delay != "" {
		if d, err := time.ParseDuration(cfg.Retry.Delay); err != nil {
			logger.Warn().Err(err).Str("delay", cfg.Retry.Delay).Msg("Invalid retry delay, using default 250ms")
		} else {
			settings.delay = d
		}
	}
	if cfg.Retry.MaxDelay != "" {
		if d, err := time.ParseDuration(cfg.Retry.MaxDelay); err != nil {
			logger.Warn().Err(err).Str("max_delay", cfg.Retry.MaxDelay).Msg("Invalid retry max delay, using default 2s")
		} else {
			settings.maxDelay = d
		}
	}
	if settings.maxDelay < settings.delay {
		settings.maxDelay = settings.delay
	}
	return settings
}

// isRetryable reports whether a TVMaze attempt failed transiently: a transport
// error other than cancellation, rate limiting, or a 5xx other than 501.
func isRetryable(resp *http.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	if resp == nil {
		return false
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return true
	case resp.StatusCode == http.StatusNotImplemented:
		return false
	default:
		return resp.StatusCode >= http.StatusInternalServerError
	}
}

// newRetryTransport wraps base with a failsafe retry policy using exponential backoff.
// Once retries are exhausted the last response is returned as-is so callers can
// report the real status code.
func newRetryTransport(base http.RoundTripper, settings retrySettings) http.RoundTripper {
	logger := config.GetLogger()

	policy := retrypolicy.NewBuilder[*http.Response]().
		HandleIf(isRetryable).
		WithMaxRetries(settings.maxRetries).
		WithBackoff(settings.delay, settings.maxDelay).
		ReturnLastFailure().
		OnRetry(func(e failsafe.ExecutionEvent[*http.Response]) {
			metrics.UpstreamRetriesTotal.Inc()
			event := logger.Debug().Int("attempt", e.Attempts())
			if err := e.LastError(); err != nil {
				event = event.Err(err)
			} else if resp := e.LastResult(); resp != nil {
				event = event.Int("statusCode", resp.StatusCode)
			}
			event.Msg("Retrying TVMaze request")
		}).
		Build()

	return failsafehttp.NewRoundTripper(base, policy)
}

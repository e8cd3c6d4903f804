package web

import (
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/hlog"

	"github.com/Belphemur/ShowFinder/internal/apperrors"
)

// statusFor maps a browser error to the status code shown to the user
func statusFor(err error) int {
	switch {
	case errors.Is(err, &apperrors.ErrNotFound{}):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// userMessage never leaks upstream URLs to the page
func userMessage(status int) string {
	if status == http.StatusNotFound {
		return "That show does not exist on TVMaze."
	}
	return "TVMaze could not be reached, please try again in a moment."
}

// reportError logs err and forwards server-side failures to Sentry when the
// request carries a hub
func reportError(r *http.Request, status int, err error) {
	logger := hlog.FromRequest(r)
	if status < http.StatusInternalServerError {
		logger.Warn().Err(err).Int("status", status).Msg("Request failed")
		return
	}

	logger.Error().Err(err).Int("status", status).Msg("Request failed")
	if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
		hub.CaptureException(err)
	}
}

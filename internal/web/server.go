package web

import (
	"net"
	"net/http"
	"strconv"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/Belphemur/ShowFinder/internal/services"
)

// Options tunes the middleware chain of the web handler
type Options struct {
	// Sentry wraps every request in a Sentry hub. Only enable it once sentry.Init succeeded.
	Sentry bool
}

// NewHandler builds the ShowFinder router with logging, request ids, panic recovery,
// per-route metrics and, optionally, Sentry.
func NewHandler(b services.Browser, logger zerolog.Logger, opts Options) http.Handler {
	h := &handlers{browser: b}

	mux := http.NewServeMux()
	route := func(pattern string, handler http.Handler) {
		mux.Handle(pattern, instrument(pattern, handler))
	}
	route("GET /{$}", http.HandlerFunc(h.index))
	route("GET /search", http.HandlerFunc(h.search))
	route("GET /shows/{id}/episodes", http.HandlerFunc(h.episodesFragment))
	route("GET /api/shows", http.HandlerFunc(h.apiShows))
	route("GET /api/shows/{id}/episodes", http.HandlerFunc(h.apiEpisodes))
	route("GET /healthz", http.HandlerFunc(healthz))
	route("GET /static/", staticHandler())

	var handler http.Handler = securityHeadersMiddleware(mux)
	if opts.Sentry {
		handler = sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle(handler)
	}
	handler = recoveryMiddleware(handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return hlog.NewHandler(logger)(handler)
}

// NewHTTPServer creates the user-facing HTTP server listening on address:port
func NewHTTPServer(address string, port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort(address, strconv.Itoa(port)),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

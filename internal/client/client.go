package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Belphemur/ShowFinder/internal/cache"
	"github.com/Belphemur/ShowFinder/internal/config"
	"github.com/Belphemur/ShowFinder/internal/models"
)

// Client defines the interface for querying the TVMaze API
type Client interface {
	// SearchShows returns every show TVMaze matches for term, in TVMaze's score order.
	SearchShows(ctx context.Context, term string) ([]models.Show, error)

	// GetEpisodes returns the episode list of a show. An unknown show yields *apperrors.ErrNotFound.
	GetEpisodes(ctx context.Context, showID int) ([]models.Episode, error)

	// Close releases any resources held by the client (e.g., cache connections).
	Close() error
}

// client implements the Client interface
type client struct {
	httpClient   *http.Client
	baseURL      string
	defaultImage string
	userAgent    string
	cache        cache.Cache // nil when caching is disabled
}

// NewClient creates a new TVMaze client with proxy, retry and cache configuration if provided.
// Caching is disabled when cfg.Cache.Size is not positive.
func NewClient(cfg *config.Config) (Client, error) {
	logger := config.GetLogger()

	timeout := 15 * time.Second
	if cfg.ClientTimeout != "" {
		if parsedTimeout, err := time.ParseDuration(cfg.ClientTimeout); err != nil {
			logger.Warn().Err(err).Str("timeout", cfg.ClientTimeout).Msg("Invalid timeout duration, using default 15s")
		} else {
			timeout = parsedTimeout
		}
	}

	// Clone DefaultTransport to keep its pooling and HTTP/2 settings
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.ProxyConnectionString != "" {
		proxyURL, err := url.Parse(cfg.ProxyConnectionString)
		if err != nil {
			logger.Warn().Err(err).Str("proxy", cfg.ProxyConnectionString).Msg("Invalid proxy URL, continuing without proxy")
		} else {
			baseTransport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	// Each retried attempt is decompressed independently
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: newRetryTransport(newCompressionTransport(baseTransport), parseRetrySettings(cfg)),
	}

	responseCache, err := newResponseCache(cfg, logger)
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(cfg.TVMazeBaseURL, "/")
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}
	defaultImage := cfg.DefaultImageURL
	if defaultImage == "" {
		defaultImage = config.DefaultImageURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.GetUserAgent()
	}

	return &client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		defaultImage: defaultImage,
		userAgent:    userAgent,
		cache:        responseCache,
	}, nil
}

func newResponseCache(cfg *config.Config, logger zerolog.Logger) (cache.Cache, error) {
	if cfg.Cache.Size <= 0 {
		logger.Debug().Msg("Response cache disabled")
		return nil, nil
	}

	ttl := 10 * time.Minute
	if cfg.Cache.TTL != "" {
		if parsedTTL, err := time.ParseDuration(cfg.Cache.TTL); err != nil {
			logger.Warn().Err(err).Str("ttl", cfg.Cache.TTL).Msg("Invalid cache TTL, using default 10m")
		} else {
			ttl = parsedTTL
		}
	}

	backend := cfg.Cache.Type
	if backend == "" {
		backend = "memory"
	}

	c, err := cache.New(cache.Options{
		Backend: backend,
		Size:    cfg.Cache.Size,
		TTL:     ttl,
		Redis: cache.RedisOptions{
			Address:  cfg.Cache.Redis.Address,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s response cache: %w", backend, err)
	}

	logger.Info().Str("backend", backend).Int("size", cfg.Cache.Size).Dur("ttl", ttl).Msg("Response cache enabled")
	return c, nil
}

// Close releases any resources held by the client, such as cache connections.
func (c *client) Close() error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Close()
}

package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/samber/lo"

	"github.com/Belphemur/ShowFinder/internal/cache"
	"github.com/Belphemur/ShowFinder/internal/config"
	"github.com/Belphemur/ShowFinder/internal/metrics"
	"github.com/Belphemur/ShowFinder/internal/models"
)

// SearchShows queries /search/shows for term and maps every result to a Show.
// Shows without a medium image get the configured default image.
func (c *client) SearchShows(ctx context.Context, term string) ([]models.Show, error) {
	logger := config.GetLogger()
	term = strings.TrimSpace(term)

	shows, err := cached(ctx, c.cache, cache.SearchKey(term), func() ([]models.Show, error) {
		endpoint := fmt.Sprintf("%s/search/shows?q=%s", c.baseURL, url.QueryEscape(term))
		logger.Info().Str("term", term).Msg("Searching TVMaze shows")

		var results []models.TVMazeSearchResult
		if err := c.getJSON(ctx, "search", endpoint, &results); err != nil {
			return nil, fmt.Errorf("failed to search shows for %q: %w", term, err)
		}

		return lo.Map(results, func(r models.TVMazeSearchResult, _ int) models.Show {
			return c.toShow(r.Show)
		}), nil
	})
	if err != nil {
		return nil, err
	}

	metrics.SearchResultsReturned.Observe(float64(len(shows)))
	logger.Debug().Str("term", term).Int("count", len(shows)).Msg("Search completed")
	return shows, nil
}

// toShow reshapes a TVMaze show into the fixed Show record
func (c *client) toShow(s models.TVMazeShow) models.Show {
	image := c.defaultImage
	if s.Image != nil && strings.TrimSpace(s.Image.Medium) != "" {
		image = s.Image.Medium
	}
	return models.Show{
		ID:      s.ID,
		Name:    s.Name,
		Summary: s.Summary,
		Image:   image,
	}
}

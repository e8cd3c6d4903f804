package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/samber/lo"

	"github.com/Belphemur/ShowFinder/internal/apperrors"
	"github.com/Belphemur/ShowFinder/internal/cache"
	"github.com/Belphemur/ShowFinder/internal/config"
	"github.com/Belphemur/ShowFinder/internal/models"
)

// GetEpisodes fetches /shows/{id}/episodes and maps every entry to an Episode
func (c *client) GetEpisodes(ctx context.Context, showID int) ([]models.Episode, error) {
	logger := config.GetLogger()

	return cached(ctx, c.cache, cache.EpisodesKey(showID), func() ([]models.Episode, error) {
		endpoint := fmt.Sprintf("%s/shows/%d/episodes", c.baseURL, showID)
		logger.Info().Int("showID", showID).Msg("Fetching episodes from TVMaze")

		var results []models.TVMazeEpisode
		if err := c.getJSON(ctx, "episodes", endpoint, &results); err != nil {
			var statusErr *apperrors.ErrUpstreamStatus
			if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
				return nil, apperrors.NewShowNotFoundError(showID)
			}
			return nil, fmt.Errorf("failed to fetch episodes for show %d: %w", showID, err)
		}

		episodes := lo.Map(results, func(e models.TVMazeEpisode, _ int) models.Episode {
			return models.Episode{ID: e.ID, Name: e.Name, Season: e.Season, Number: e.Number}
		})

		logger.Debug().Int("showID", showID).Int("count", len(episodes)).Msg("Fetched episodes")
		return episodes, nil
	})
}

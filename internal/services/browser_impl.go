package services

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/Belphemur/ShowFinder/internal/client"
	"github.com/Belphemur/ShowFinder/internal/config"
	"github.com/Belphemur/ShowFinder/internal/models"
	"github.com/Belphemur/ShowFinder/internal/parser"
)

// DefaultBrowser implements Browser on top of a TVMaze client
type DefaultBrowser struct {
	client client.Client
}

// NewBrowser creates a new Browser backed by c
func NewBrowser(c client.Client) Browser {
	return &DefaultBrowser{client: c}
}

// Search replaces any previous results with one card per show
func (b *DefaultBrowser) Search(ctx context.Context, term string) (*Page, error) {
	logger := config.GetLogger()

	shows, err := b.client.SearchShows(ctx, term)
	if err != nil {
		return nil, err
	}

	cards := lo.Map(shows, func(show models.Show, _ int) ShowCard {
		return ShowCard{Show: show, SummaryText: parser.SummaryText(show.Summary)}
	})

	logger.Debug().Str("term", term).Int("cards", len(cards)).Msg("Built search page")

	return &Page{
		Term:            term,
		Searched:        true,
		Shows:           cards,
		EpisodesVisible: false,
	}, nil
}

// Episodes fetches the episodes of showID
func (b *DefaultBrowser) Episodes(ctx context.Context, showID int) (*EpisodeList, error) {
	episodes, err := b.client.GetEpisodes(ctx, showID)
	if err != nil {
		return nil, err
	}
	return &EpisodeList{ShowID: showID, Episodes: episodes}, nil
}

// SearchWithEpisodes issues the search first, then the episode fetch, and reveals
// the episode area only once both succeeded
func (b *DefaultBrowser) SearchWithEpisodes(ctx context.Context, term string, showID int) (*Page, error) {
	page, err := b.Search(ctx, term)
	if err != nil {
		return nil, err
	}

	episodes, err := b.Episodes(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("failed to load episodes for show %d: %w", showID, err)
	}

	page.Episodes = episodes
	page.EpisodesVisible = true
	return page, nil
}

package services

import (
	"context"

	"github.com/Belphemur/ShowFinder/internal/models"
)

// ShowCard is a show prepared for rendering: the summary is reduced to plain text
type ShowCard struct {
	models.Show
	SummaryText string
}

// EpisodeList is the content of the episode area for one show
type EpisodeList struct {
	ShowID   int
	Episodes []models.Episode
}

// Page is the whole document state: the search form, the result cards and the
// episode area. EpisodesVisible is false unless episodes were requested for
// this exact render, so every new search starts with the area hidden.
type Page struct {
	Term            string
	Searched        bool
	Shows           []ShowCard
	EpisodesVisible bool
	Episodes        *EpisodeList
}

// Browser composes TVMaze lookups into renderable pages
type Browser interface {
	// Search runs one show search and returns a page with the episode area hidden.
	Search(ctx context.Context, term string) (*Page, error)

	// Episodes fetches the episode list for one show.
	Episodes(ctx context.Context, showID int) (*EpisodeList, error)

	// SearchWithEpisodes renders a search page with the episode area of showID
	// revealed, for clients that cannot swap the list in place.
	SearchWithEpisodes(ctx context.Context, term string, showID int) (*Page, error)
}

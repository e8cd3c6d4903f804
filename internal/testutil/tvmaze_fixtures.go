package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// StrPtr is a helper for creating *string values in tests
func StrPtr(v string) *string {
	return &v
}

// SearchResultOptions describes one element of a fake /search/shows response
type SearchResultOptions struct {
	ID      int
	Name    string
	Summary string
	Score   float64
	// MediumImage is the image.medium value. nil renders "image": null.
	MediumImage *string
}

// EpisodeOptions describes one element of a fake /shows/{id}/episodes response.
// Season and Number are emitted verbatim, so a test can send `"2"`, `2` or `null`.
type EpisodeOptions struct {
	ID     int
	Name   string
	Season string
	Number string
}

// GenerateSearchJSON renders a /search/shows response body shaped like TVMaze's
func GenerateSearchJSON(results []SearchResultOptions) string {
	type image struct {
		Medium   string `json:"medium"`
		Original string `json:"original"`
	}
	type show struct {
		ID      int    `json:"id"`
		Name    string `json:"name"`
		Type    string `json:"type"`
		Summary string `json:"summary"`
		Image   *image `json:"image"`
	}
	type result struct {
		Score float64 `json:"score"`
		Show  show    `json:"show"`
	}

	out := make([]result, 0, len(results))
	for _, r := range results {
		s := show{ID: r.ID, Name: r.Name, Type: "Reality", Summary: r.Summary}
		if r.MediumImage != nil {
			s.Image = &image{Medium: *r.MediumImage, Original: strings.Replace(*r.MediumImage, "medium", "original", 1)}
		}
		out = append(out, result{Score: r.Score, Show: s})
	}

	data, _ := json.Marshal(out)
	return string(data)
}

// GenerateEpisodesJSON renders a /shows/{id}/episodes response body shaped like TVMaze's
func GenerateEpisodesJSON(episodes []EpisodeOptions) string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, e := range episodes {
		if i > 0 {
			sb.WriteString(",")
		}
		name, _ := json.Marshal(e.Name)
		season := e.Season
		if season == "" {
			season = "null"
		}
		number := e.Number
		if number == "" {
			number = "null"
		}
		sb.WriteString(`{"id":`)
		sb.WriteString(jsonInt(e.ID))
		sb.WriteString(`,"name":`)
		sb.Write(name)
		sb.WriteString(`,"season":`)
		sb.WriteString(season)
		sb.WriteString(`,"number":`)
		sb.WriteString(number)
		sb.WriteString(`,"airdate":"2002-03-25","runtime":60}`)
	}
	sb.WriteString("]")
	return sb.String()
}

func jsonInt(v int) string {
	data, _ := json.Marshal(v)
	return string(data)
}

// TVMazeServer is a fake TVMaze API that records the requests it receives
type TVMazeServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []string
}

// NewTVMazeServer starts a fake TVMaze API that answers with handler and closes it on test cleanup
func NewTVMazeServer(t *testing.T, handler http.HandlerFunc) *TVMazeServer {
	t.Helper()
	s := &TVMazeServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.URL.RequestURI())
		s.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

// Requests returns the request URIs received so far, in order
func (s *TVMazeServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// WriteJSON writes body as a 200 JSON response
func WriteJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

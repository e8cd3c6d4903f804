package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"

	"github.com/Belphemur/ShowFinder/internal/client"
	"github.com/Belphemur/ShowFinder/internal/config"
	"github.com/Belphemur/ShowFinder/internal/metrics"
	"github.com/Belphemur/ShowFinder/internal/models"
	"github.com/Belphemur/ShowFinder/internal/services"
	"github.com/Belphemur/ShowFinder/internal/testutil"
)

const hiddenEpisodesArea = `<section id="episodesArea" style="display: none">`
const visibleEpisodesArea = `<section id="episodesArea">`

// bachelorAPI answers like TVMaze for the "bachelor" search and the episodes of shows 1 and 2
func bachelorAPI(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/search/shows":
		testutil.WriteJSON(w, testutil.GenerateSearchJSON([]testutil.SearchResultOptions{
			{ID: 1, Name: "The Bachelor", Summary: "<p><b>The Bachelor</b> hands out roses.</p>", Score: 0.9, MediumImage: testutil.StrPtr("https://static.tvmaze.com/uploads/images/medium_portrait/1/1.jpg")},
			{ID: 2, Name: "The Bachelorette", Summary: "<script>alert(1)</script><p>More roses.</p>", Score: 0.8},
		}))
	case r.URL.Path == "/shows/1/episodes":
		testutil.WriteJSON(w, testutil.GenerateEpisodesJSON([]testutil.EpisodeOptions{
			{ID: 101, Name: "Week 1", Season: "1", Number: "1"},
			{ID: 102, Name: "Week 2", Season: `"1"`, Number: `"2"`},
		}))
	case r.URL.Path == "/shows/2/episodes":
		testutil.WriteJSON(w, testutil.GenerateEpisodesJSON([]testutil.EpisodeOptions{
			{ID: 201, Name: "Special", Season: "1"},
		}))
	default:
		http.NotFound(w, r)
	}
}

func newTestServer(t *testing.T, api http.HandlerFunc) (http.Handler, *testutil.TVMazeServer) {
	t.Helper()
	upstream := testutil.NewTVMazeServer(t, api)

	cfg := &config.Config{
		TVMazeBaseURL:   upstream.URL,
		DefaultImageURL: config.DefaultImageURL,
		ClientTimeout:   "5s",
	}
	cfg.Retry.MaxRetries = 1
	cfg.Retry.Delay = "1ms"
	cfg.Retry.MaxDelay = "2ms"

	c, err := client.NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	return NewHandler(services.NewBrowser(c), zerolog.Nop(), Options{}), upstream
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestIndex_RendersEmptyForm(t *testing.T) {
	h, upstream := newTestServer(t, bachelorAPI)

	rec := get(t, h, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`id="searchForm"`, `id="searchForm-term"`, `id="showsList"`, `id="episodesList"`, hiddenEpisodesArea} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected page to contain %q", want)
		}
	}
	if strings.Contains(body, `class="Show `) {
		t.Error("Expected no cards before a search")
	}
	if len(upstream.Requests()) != 0 {
		t.Errorf("Expected no upstream calls, got %v", upstream.Requests())
	}
}

func TestSearch_RendersOneCardPerShow(t *testing.T) {
	h, upstream := newTestServer(t, bachelorAPI)

	rec := get(t, h, "/search?q=bachelor")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()

	if n := strings.Count(body, `class="Show `); n != 2 {
		t.Errorf("Expected 2 cards, got %d", n)
	}
	if !strings.Contains(body, `data-show-id="1"`) || !strings.Contains(body, `data-show-id="2"`) {
		t.Error("Expected cards tagged data-show-id=\"1\" and data-show-id=\"2\"")
	}
	if !strings.Contains(body, `src="https://tinyurl.com/tv-missing"`) {
		t.Error("Expected the show without an image to use the default image")
	}
	if !strings.Contains(body, `src="https://static.tvmaze.com/uploads/images/medium_portrait/1/1.jpg"`) {
		t.Error("Expected the medium image of show 1")
	}
	if strings.Count(body, "Show-getEpisodes") != 2 {
		t.Error("Expected one Episodes trigger per card")
	}
	if !strings.Contains(body, hiddenEpisodesArea) {
		t.Error("Expected the episode area to be hidden after a search")
	}

	requests := upstream.Requests()
	if len(requests) != 1 || requests[0] != "/search/shows?q=bachelor" {
		t.Errorf("Expected exactly one search request, got %v", requests)
	}
}

func TestSearch_SummaryIsRenderedAsText(t *testing.T) {
	h, _ := newTestServer(t, bachelorAPI)

	body := get(t, h, "/search?q=bachelor").Body.String()
	if strings.Contains(body, "<script>alert") {
		t.Error("Expected summary markup to be neutralised")
	}
	if !strings.Contains(body, "The Bachelor hands out roses.") {
		t.Error("Expected plain-text summary of show 1")
	}
}

func TestSearch_NoResults(t *testing.T) {
	h, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, "[]")
	})

	rec := get(t, h, "/search?q=zzzz")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No shows found.") {
		t.Error("Expected empty-result notice")
	}
}

func TestSearch_WithShowRevealsEpisodes(t *testing.T) {
	h, upstream := newTestServer(t, bachelorAPI)

	rec := get(t, h, "/search?q=bachelor&show=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()

	if !strings.Contains(body, visibleEpisodesArea) {
		t.Error("Expected the episode area to be visible")
	}
	if !strings.Contains(body, `data-episode-id="101"`) || !strings.Contains(body, `data-episode-id="102"`) {
		t.Error("Expected both episodes of show 1")
	}
	if !strings.Contains(body, "Season 1, episode 2") {
		t.Error("Expected season and number of the second episode")
	}

	requests := upstream.Requests()
	if len(requests) != 2 || requests[1] != "/shows/1/episodes" {
		t.Errorf("Expected search then /shows/1/episodes, got %v", requests)
	}
}

func TestSearch_NewSearchHidesEpisodes(t *testing.T) {
	h, _ := newTestServer(t, bachelorAPI)

	if body := get(t, h, "/search?q=bachelor&show=1").Body.String(); !strings.Contains(body, visibleEpisodesArea) {
		t.Fatal("Expected the episode area to be visible first")
	}

	body := get(t, h, "/search?q=bachelor").Body.String()
	if !strings.Contains(body, hiddenEpisodesArea) {
		t.Error("Expected a new search to hide the episode area")
	}
	if strings.Contains(body, "data-episode-id") {
		t.Error("Expected the episode list to be empty after a new search")
	}
}

func TestSearch_InvalidShowID(t *testing.T) {
	h, upstream := newTestServer(t, bachelorAPI)

	rec := get(t, h, "/search?q=bachelor&show=abc")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
	if len(upstream.Requests()) != 0 {
		t.Errorf("Expected no upstream calls, got %v", upstream.Requests())
	}
}

func TestSearch_UpstreamFailure(t *testing.T) {
	h, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	rec := get(t, h, "/search?q=bachelor")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `class="alert alert-danger"`) {
		t.Error("Expected an error banner")
	}
	if !strings.Contains(body, `value="bachelor"`) {
		t.Error("Expected the search term to be kept in the form")
	}
	if strings.Contains(body, "No shows found") {
		t.Error("Expected no empty-results notice next to the error banner")
	}
}

func TestEpisodesFragment(t *testing.T) {
	h, upstream := newTestServer(t, bachelorAPI)

	rec := get(t, h, "/shows/2/episodes")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()

	if strings.Contains(body, "<html") {
		t.Error("Expected a fragment, not a full page")
	}
	if strings.Count(body, "<li>") != 1 || !strings.Contains(body, `data-episode-id="201"`) {
		t.Errorf("Expected one episode item, got %q", body)
	}

	requests := upstream.Requests()
	if len(requests) != 1 || requests[0] != "/shows/2/episodes" {
		t.Errorf("Expected a request scoped to show 2, got %v", requests)
	}
}

func TestEpisodesFragment_NonNumericValues(t *testing.T) {
	h, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, testutil.GenerateEpisodesJSON([]testutil.EpisodeOptions{
			{ID: 301, Name: "Reunion", Season: `"Special"`},
			{ID: 302, Name: "Prologue", Season: "1", Number: "0"},
		}))
	})

	rec := get(t, h, "/shows/3/episodes")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()

	if strings.Count(body, "<li>") != 2 {
		t.Errorf("Expected both episodes to be listed, got %q", body)
	}
	if !strings.Contains(body, "Season Special</small>") {
		t.Error("Expected the season text as sent, without an episode number")
	}
	if !strings.Contains(body, "Season 1, episode 0") {
		t.Error("Expected episode 0 to keep its number")
	}
}

func TestEpisodesFragment_UnknownShow(t *testing.T) {
	h, _ := newTestServer(t, bachelorAPI)

	rec := get(t, h, "/shows/999/episodes")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "alert-danger") {
		t.Error("Expected an error fragment")
	}
}

func TestEpisodesFragment_InvalidID(t *testing.T) {
	h, _ := newTestServer(t, bachelorAPI)

	if rec := get(t, h, "/shows/zero/episodes"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestAPIShows(t *testing.T) {
	h, _ := newTestServer(t, bachelorAPI)

	rec := get(t, h, "/api/shows?q=bachelor")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Unexpected content type %q", ct)
	}

	var shows []models.Show
	if err := json.Unmarshal(rec.Body.Bytes(), &shows); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(shows) != 2 {
		t.Fatalf("Expected 2 shows, got %d", len(shows))
	}
	if shows[1].Image != config.DefaultImageURL {
		t.Errorf("Expected default image for show 2, got %q", shows[1].Image)
	}
	if shows[1].Summary != "<script>alert(1)</script><p>More roses.</p>" {
		t.Errorf("Expected the raw summary in the API, got %q", shows[1].Summary)
	}
}

func TestAPIEpisodes(t *testing.T) {
	h, _ := newTestServer(t, bachelorAPI)

	rec := get(t, h, "/api/shows/1/episodes")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var episodes []models.Episode
	if err := json.Unmarshal(rec.Body.Bytes(), &episodes); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(episodes) != 2 || episodes[1].Number != models.TextNumber("2") || episodes[1].Season != models.TextNumber("1") {
		t.Errorf("Unexpected episodes %+v", episodes)
	}
}

func TestAPIEpisodes_Errors(t *testing.T) {
	h, _ := newTestServer(t, bachelorAPI)

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"unknown show", "/api/shows/999/episodes", http.StatusNotFound},
		{"non numeric id", "/api/shows/abc/episodes", http.StatusBadRequest},
		{"negative id", "/api/shows/-1/episodes", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.target)
			if rec.Code != tt.status {
				t.Fatalf("Expected %d, got %d", tt.status, rec.Code)
			}
			var body apiError
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error == "" {
				t.Errorf("Expected a JSON error body, got %q", rec.Body.String())
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	h, _ := newTestServer(t, bachelorAPI)

	rec := get(t, h, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("Unexpected body %q", rec.Body.String())
	}
}

func TestStaticScript(t *testing.T) {
	h, _ := newTestServer(t, bachelorAPI)

	rec := get(t, h, "/static/app.js")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "data-show-id") && !strings.Contains(string(body), "dataset.showId") {
		t.Error("Expected the script to read the show id from the card")
	}
	if !strings.Contains(string(body), "catch (err)") || !strings.Contains(string(body), "button.form.submit()") {
		t.Error("Expected a failed fetch to fall back to submitting the card form")
	}
}

func TestUnknownRoute(t *testing.T) {
	h, _ := newTestServer(t, bachelorAPI)

	if rec := get(t, h, "/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	h, _ := newTestServer(t, bachelorAPI)

	rec := get(t, h, "/healthz")
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("Expected a generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
		t.Errorf("Expected incoming request id to be echoed, got %q", got)
	}
}

func TestRequestIDFrom(t *testing.T) {
	var seen string
	h := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "xyz")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "xyz" {
		t.Errorf("Expected request id in context, got %q", seen)
	}
	if RequestIDFrom(context.Background()) != "" {
		t.Error("Expected empty id outside the middleware")
	}
}

func TestSecurityHeaders(t *testing.T) {
	h, _ := newTestServer(t, bachelorAPI)

	rec := get(t, h, "/")
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("Expected nosniff header")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("Expected frame denial header")
	}
}

// panicBrowser fails every call with a panic
type panicBrowser struct{}

func (panicBrowser) Search(context.Context, string) (*services.Page, error) { panic("boom") }
func (panicBrowser) Episodes(context.Context, int) (*services.EpisodeList, error) {
	panic("boom")
}
func (panicBrowser) SearchWithEpisodes(context.Context, string, int) (*services.Page, error) {
	panic("boom")
}

func TestRecovery(t *testing.T) {
	h := NewHandler(panicBrowser{}, zerolog.Nop(), Options{})

	rec := get(t, h, "/search?q=x")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 after panic, got %d", rec.Code)
	}
}

func TestRouteMetrics(t *testing.T) {
	h, _ := newTestServer(t, bachelorAPI)

	counter := func() float64 {
		c, err := metrics.HTTPRequestsTotal.GetMetricWith(prometheus.Labels{"route": "GET /healthz", "method": "get", "code": "200"})
		if err != nil {
			return 0
		}
		var m dto.Metric
		if err := c.Write(&m); err != nil {
			return 0
		}
		return m.GetCounter().GetValue()
	}

	before := counter()
	get(t, h, "/healthz")
	if after := counter(); after != before+1 {
		t.Errorf("Expected healthz counter to increment by 1, got diff %.0f", after-before)
	}
}

func TestNewHTTPServer(t *testing.T) {
	srv := NewHTTPServer("127.0.0.1", 8080, http.NotFoundHandler())
	if srv.Addr != "127.0.0.1:8080" {
		t.Errorf("Unexpected address %q", srv.Addr)
	}
	if srv.ReadHeaderTimeout == 0 {
		t.Error("Expected a read header timeout")
	}
}

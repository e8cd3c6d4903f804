package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/hlog"
	"github.com/samber/lo"

	"github.com/Belphemur/ShowFinder/internal/models"
	"github.com/Belphemur/ShowFinder/internal/services"
)

type handlers struct {
	browser services.Browser
}

// index renders the empty search page
func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, pageView{Page: &services.Page{}})
}

// search renders the results for q. With a show parameter the episode area of
// that show is revealed too, which is how the page works without JavaScript.
func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")

	var (
		page *services.Page
		err  error
	)
	if raw := r.URL.Query().Get("show"); raw != "" {
		showID, convErr := strconv.Atoi(raw)
		if convErr != nil || showID <= 0 {
			h.renderPage(w, r, http.StatusBadRequest, pageView{
				Page:  &services.Page{Term: term},
				Error: "Invalid show id.",
			})
			return
		}
		page, err = h.browser.SearchWithEpisodes(r.Context(), term, showID)
	} else {
		page, err = h.browser.Search(r.Context(), term)
	}

	if err != nil {
		status := statusFor(err)
		reportError(r, status, err)
		// Searched stays false, there are no results to report on
		h.renderPage(w, r, status, pageView{
			Page:  &services.Page{Term: term},
			Error: userMessage(status),
		})
		return
	}

	h.renderPage(w, r, http.StatusOK, pageView{Page: page})
}

// episodesFragment renders only the <li> items of the episode list for app.js
func (h *handlers) episodesFragment(w http.ResponseWriter, r *http.Request) {
	showID, ok := pathShowID(r)
	if !ok {
		h.renderFragment(w, r, http.StatusBadRequest, "error", errorView{Error: "Invalid show id."})
		return
	}

	list, err := h.browser.Episodes(r.Context(), showID)
	if err != nil {
		status := statusFor(err)
		reportError(r, status, err)
		h.renderFragment(w, r, status, "error", errorView{Error: userMessage(status)})
		return
	}

	h.renderFragment(w, r, http.StatusOK, "episodes", list)
}

type apiError struct {
	Error string `json:"error"`
}

// apiShows returns the mapped shows for q as JSON
func (h *handlers) apiShows(w http.ResponseWriter, r *http.Request) {
	page, err := h.browser.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		status := statusFor(err)
		reportError(r, status, err)
		writeJSON(w, r, status, apiError{Error: userMessage(status)})
		return
	}

	writeJSON(w, r, http.StatusOK, lo.Map(page.Shows, func(card services.ShowCard, _ int) models.Show {
		return card.Show
	}))
}

// apiEpisodes returns the mapped episodes of one show as JSON
func (h *handlers) apiEpisodes(w http.ResponseWriter, r *http.Request) {
	showID, ok := pathShowID(r)
	if !ok {
		writeJSON(w, r, http.StatusBadRequest, apiError{Error: "invalid show id"})
		return
	}

	list, err := h.browser.Episodes(r.Context(), showID)
	if err != nil {
		status := statusFor(err)
		reportError(r, status, err)
		writeJSON(w, r, status, apiError{Error: userMessage(status)})
		return
	}

	episodes := list.Episodes
	if episodes == nil {
		episodes = []models.Episode{}
	}
	writeJSON(w, r, http.StatusOK, episodes)
}

func healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func pathShowID(r *http.Request) (int, bool) {
	showID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || showID <= 0 {
		return 0, false
	}
	return showID, true
}

func (h *handlers) renderPage(w http.ResponseWriter, r *http.Request, status int, view pageView) {
	h.renderFragment(w, r, status, "page", view)
}

func (h *handlers) renderFragment(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if err := renderTemplate(w, status, name, data); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("template", name).Msg("Failed to render template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Failed to encode JSON response")
	}
}

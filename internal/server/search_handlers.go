// ABOUTME: HTTP handler for note search in text and semantic modes
// ABOUTME: Delegated-mode failures never reach the client; they fall back to text

package server

import (
	"net/http"
	"strings"

	"github.com/leafnote/leafnote/internal/notes"
	"github.com/leafnote/leafnote/internal/search"
	"github.com/leafnote/leafnote/internal/store"
)

// searchResponse is the JSON response for GET /api/search.
type searchResponse struct {
	Query      string           `json:"query"`
	Type       string           `json:"type"`
	Notes      []*store.Note    `json:"notes"`
	Pagination notes.Pagination `json:"pagination"`
}

// handleSearch handles GET /api/search requests.
// Query parameters: q (required), type (text or semantic, default text),
// page, and limit.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.sendJSONError(w, http.StatusBadRequest, "q is required")
		return
	}

	mode := search.ModeText
	if r.URL.Query().Get("type") == string(search.ModeSemantic) {
		mode = search.ModeSemantic
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	result, err := s.search.Search(r.Context(), query, mode, page, limit)
	if err != nil {
		s.logger.Error("search failed", "error", err, "query", query)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	found := result.Notes
	if found == nil {
		found = []*store.Note{}
	}

	s.writeJSON(w, http.StatusOK, searchResponse{
		Query:      query,
		Type:       string(mode),
		Notes:      found,
		Pagination: result.Pagination,
	})
}

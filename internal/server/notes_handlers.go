// ABOUTME: HTTP handlers for note CRUD with tags and pagination
// ABOUTME: Creation is form-encoded; update and delete take the note ID from the path

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/leafnote/leafnote/internal/notes"
	"github.com/leafnote/leafnote/internal/store"
)

// noteListResponse is the JSON response for GET /api/notes.
type noteListResponse struct {
	Notes      []*store.Note    `json:"notes"`
	Pagination notes.Pagination `json:"pagination"`
}

// noteDetailResponse is the JSON response for GET /api/notes/{id}.
type noteDetailResponse struct {
	Note *store.Note `json:"note"`
	HTML string      `json:"html"`
}

// updateNoteRequest is the JSON request body for PUT /api/notes/{id}.
type updateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// pathNoteID extracts the {id} path value as an int64.
func pathNoteID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid note id")
	}
	return id, nil
}

// queryInt reads an integer query parameter, falling back when absent or bad.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// handleCreateNote handles POST /api/notes requests.
// Accepts form-encoded input: title, content, and comma-separated tags.
func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	title := r.PostFormValue("title")
	content := r.PostFormValue("content")
	if title == "" {
		s.sendJSONError(w, http.StatusBadRequest, "title is required")
		return
	}
	if content == "" {
		s.sendJSONError(w, http.StatusBadRequest, "content is required")
		return
	}
	tags := notes.NormalizeTags(r.PostFormValue("tags"))

	note, err := s.notes.Create(r.Context(), title, content, tags)
	if err != nil {
		if errors.Is(err, store.ErrSlugExists) {
			s.sendJSONError(w, http.StatusConflict, "a note with this title already exists")
			return
		}
		s.logger.Error("note creation failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.writeJSON(w, http.StatusCreated, note)
}

// handleListNotes handles GET /api/notes requests with page/limit parameters.
func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	list, pagination, err := s.notes.List(r.Context(), page, limit)
	if err != nil {
		s.logger.Error("note listing failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if list == nil {
		list = []*store.Note{}
	}

	s.writeJSON(w, http.StatusOK, noteListResponse{Notes: list, Pagination: pagination})
}

// handleGetNote handles GET /api/notes/{id} requests, returning the note
// along with its content rendered to HTML.
func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathNoteID(r)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	note, err := s.notes.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.sendJSONError(w, http.StatusNotFound, "note not found")
			return
		}
		s.logger.Error("note lookup failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	html, err := s.notes.RenderHTML(note.Content)
	if err != nil {
		s.logger.Error("markdown rendering failed", "error", err, "id", id)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.writeJSON(w, http.StatusOK, noteDetailResponse{Note: note, HTML: html})
}

// handleUpdateNote handles PUT /api/notes/{id} requests with a JSON body.
func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathNoteID(r)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Title == "" {
		s.sendJSONError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Content == "" {
		s.sendJSONError(w, http.StatusBadRequest, "content is required")
		return
	}

	note, err := s.notes.Update(r.Context(), id, req.Title, req.Content)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.sendJSONError(w, http.StatusNotFound, "note not found")
			return
		}
		s.logger.Error("note update failed", "error", err, "id", id)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.writeJSON(w, http.StatusOK, note)
}

// handleDeleteNote handles DELETE /api/notes/{id} requests.
func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathNoteID(r)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.notes.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.sendJSONError(w, http.StatusNotFound, "note not found")
			return
		}
		s.logger.Error("note deletion failed", "error", err, "id", id)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ABOUTME: HTTP handlers for chat, tag suggestions, and related-note lookup
// ABOUTME: Maps model timeouts and unreachability to distinct 500 messages

package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/leafnote/leafnote/internal/island"
	"github.com/leafnote/leafnote/internal/llm"
	"github.com/leafnote/leafnote/internal/store"
)

// chatRequest is the JSON request body for POST /api/chat.
type chatRequest struct {
	Message   string `json:"message"`
	Model     string `json:"model,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// chatResponse is the JSON response for POST /api/chat.
type chatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"sessionId"`
}

// suggestTagsRequest is the JSON request body for POST /api/suggest-tags.
type suggestTagsRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// relatedNotesRequest is the JSON request body for POST /api/related-notes.
type relatedNotesRequest struct {
	NoteID  int64  `json:"noteId"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// sendUpstreamError writes the 500 response for a failed model call, keeping
// timeout and unreachable cases distinguishable. The chat paths are the one
// place error detail is included in the response body.
func (s *Server) sendUpstreamError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, llm.ErrTimeout):
		s.sendJSONErrorDetails(w, http.StatusInternalServerError,
			"The language model took too long to respond. Please try again.", err.Error())
	case errors.Is(err, llm.ErrUnavailable):
		s.sendJSONErrorDetails(w, http.StatusInternalServerError,
			"Failed to reach the language model. Make sure it is running.", err.Error())
	default:
		s.sendJSONErrorDetails(w, http.StatusInternalServerError,
			"internal server error", err.Error())
	}
}

// handleChat handles POST /api/chat requests.
// A missing sessionId starts a new conversation; the generated identifier is
// returned so the client can continue it.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		s.sendJSONError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	reply, err := s.chat.Send(r.Context(), req.SessionID, req.Message, req.Model)
	if err != nil {
		s.logger.Error("chat failed", "error", err, "session_id", req.SessionID)
		s.sendUpstreamError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, chatResponse{Reply: reply, SessionID: req.SessionID})
}

// handleSuggestTags handles POST /api/suggest-tags requests.
func (s *Server) handleSuggestTags(w http.ResponseWriter, r *http.Request) {
	var req suggestTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Title == "" && req.Content == "" {
		s.sendJSONError(w, http.StatusBadRequest, "title or content is required")
		return
	}

	tags, err := s.chat.SuggestTags(r.Context(), req.Title, req.Content)
	if err != nil {
		s.logger.Error("tag suggestion failed", "error", err)
		s.sendUpstreamError(w, err)
		return
	}
	if tags == nil {
		tags = []string{}
	}

	s.writeJSON(w, http.StatusOK, map[string][]string{"tags": tags})
}

// handleRelatedNotes handles POST /api/related-notes requests.
func (s *Server) handleRelatedNotes(w http.ResponseWriter, r *http.Request) {
	var req relatedNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.NoteID <= 0 {
		s.sendJSONError(w, http.StatusBadRequest, "noteId is required")
		return
	}

	related, err := s.chat.RelatedNotes(r.Context(), req.NoteID, req.Title, req.Content)
	if err != nil {
		s.logger.Error("related-notes lookup failed", "error", err, "note_id", req.NoteID)
		s.sendUpstreamError(w, err)
		return
	}
	if related == nil {
		related = []*store.Note{}
	}

	s.writeJSON(w, http.StatusOK, map[string][]*store.Note{"relatedNotes": related})
}

// handleIslandAction handles POST /api/island/{id} requests, routing the
// action in the body through the island dispatcher and returning the
// island's state afterwards.
func (s *Server) handleIslandAction(w http.ResponseWriter, r *http.Request) {
	islandID := r.PathValue("id")
	if islandID == "" {
		s.sendJSONError(w, http.StatusBadRequest, "island id is required")
		return
	}

	var req island.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	state, err := s.islands.Dispatch(r.Context(), islandID, req)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, state)
}

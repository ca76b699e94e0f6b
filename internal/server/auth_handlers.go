// ABOUTME: HTTP handlers for signup, login, and logout
// ABOUTME: Issues and clears the session cookie around the auth service

package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/leafnote/leafnote/internal/auth"
)

// credentialsRequest is the JSON request body for POST /api/signup and /api/login.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// authResponse is the JSON response for successful signup and login.
type authResponse struct {
	Username string `json:"username"`
}

func parseCredentials(r *http.Request) (*credentialsRequest, error) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.New("invalid JSON body")
	}
	if req.Username == "" {
		return nil, errors.New("username is required")
	}
	if req.Password == "" {
		return nil, errors.New("password is required")
	}
	return &req, nil
}

// handleSignup handles POST /api/signup requests.
// A successful signup logs the new user straight in.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	req, err := parseCredentials(r)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.auth.Register(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, auth.ErrUsernameExists) {
			s.sendJSONError(w, http.StatusConflict, "username already taken")
			return
		}
		s.logger.Error("signup failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	token, err := s.auth.CreateSession(r.Context(), req.Username)
	if err != nil {
		s.logger.Error("session creation failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	auth.SetSessionCookie(w, token, s.auth.TTL())
	s.writeJSON(w, http.StatusCreated, authResponse{Username: req.Username})
}

// handleLogin handles POST /api/login requests.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := parseCredentials(r)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !s.auth.Verify(r.Context(), req.Username, req.Password) {
		s.sendJSONError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, err := s.auth.CreateSession(r.Context(), req.Username)
	if err != nil {
		s.logger.Error("session creation failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	auth.SetSessionCookie(w, token, s.auth.TTL())
	s.writeJSON(w, http.StatusOK, authResponse{Username: req.Username})
}

// handleLogout handles POST /api/logout requests.
// Logging out without a session is not an error.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil && cookie.Value != "" {
		if err := s.auth.DeleteSession(r.Context(), cookie.Value); err != nil {
			s.logger.Error("session deletion failed", "error", err)
		}
	}

	auth.ClearSessionCookie(w)
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

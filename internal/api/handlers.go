package api

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ternarybob/abacus/pkg/calc"
	"github.com/ternarybob/abacus/pkg/session"
	"github.com/ternarybob/abacus/web"
)

// version is set via -ldflags at build time
var version = "dev"

// SetVersion sets the version string (called from main).
func SetVersion(v string) {
	version = v
}

// Response types

// HealthResponse is the response for /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// VersionResponse is the response for /version.
type VersionResponse struct {
	Version string `json:"version"`
	Service string `json:"service"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SessionResponse represents a session in API responses.
type SessionResponse struct {
	ID           string      `json:"id"`
	Display      string      `json:"display"`
	State        *calc.State `json:"state,omitempty"`
	CreatedAt    string      `json:"created_at"`
	LastActivity string      `json:"last_activity"`
}

// PressRequest is the request body for pressing keys. Keys holds raw key
// names or labels; Input is split into keys with calc.SplitKeys.
type PressRequest struct {
	Keys  []string `json:"keys,omitempty"`
	Input string   `json:"input,omitempty"`
}

// PressResponse wraps the outcome of a key press batch.
type PressResponse struct {
	ID       string   `json:"id"`
	Display  string   `json:"display"`
	Accepted int      `json:"accepted"`
	Ignored  []string `json:"ignored,omitempty"`
}

// Handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{
		Version: version,
		Service: "abacus-service",
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := s.store.List()
	response := make([]SessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		response = append(response, toSessionResponse(sess, false))
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.createSession()
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(sess, true))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess, true))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(chi.URLParam(r, "id")); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePressKeys(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeSessionError(w, err)
		return
	}

	var req PressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	keys := req.Keys
	if req.Input != "" {
		keys = append(keys, calc.SplitKeys(req.Input)...)
	}
	if len(keys) == 0 {
		writeError(w, http.StatusBadRequest, "Keys or input is required")
		return
	}

	result := sess.Press(keys...)
	s.logger.Debug().
		Str("session", sess.ID()).
		Strs("keys", keys).
		Str("display", result.Display).
		Msg("keys pressed")

	writeJSON(w, http.StatusOK, PressResponse{
		ID:       sess.ID(),
		Display:  result.Display,
		Accepted: result.Accepted,
		Ignored:  result.Ignored,
	})
}

// createSession prunes idle sessions before creating a new one.
func (s *Server) createSession() (*session.Session, error) {
	if n := s.store.Prune(s.maxIdle); n > 0 {
		s.logger.Info().Str("idle_timeout", s.maxIdle.String()).Msg("pruned idle sessions")
	}
	return s.store.Create()
}

func toSessionResponse(sess *session.Session, withState bool) SessionResponse {
	resp := SessionResponse{
		ID:           sess.ID(),
		Display:      sess.Display(),
		CreatedAt:    sess.CreatedAt().UTC().Format(time.RFC3339),
		LastActivity: sess.LastActivity().UTC().Format(time.RFC3339),
	}
	if withState {
		state := sess.State()
		resp.State = &state
	}
	return resp
}

// Web UI

// WebIndexData is the data for the calculator page template.
type WebIndexData struct {
	Version   string
	SessionID string
	Display   string
	Keys      []WebKey
}

// WebKey is a single calculator button.
type WebKey struct {
	Label string
	Value string
	Class string
}

// webKeys is the button layout, row by row.
var webKeys = []WebKey{
	{"C", "Escape", "command"}, {"DEL", "Backspace", "command"}, {"÷", "÷", "operator"}, {"×", "×", "operator"},
	{"7", "7", ""}, {"8", "8", ""}, {"9", "9", ""}, {"−", "−", "operator"},
	{"4", "4", ""}, {"5", "5", ""}, {"6", "6", ""}, {"+", "+", "operator"},
	{"1", "1", ""}, {"2", "2", ""}, {"3", "3", ""}, {"=", "=", "operator"},
	{"0", "0", ""}, {".", ".", ""},
}

func (s *Server) handleWebIndex(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.URL.Query().Get("session"))
	if err != nil {
		sess, err = s.createSession()
		if err != nil {
			http.Error(w, err.Error(), sessionStatus(err))
			return
		}
		http.Redirect(w, r, "/?session="+url.QueryEscape(sess.ID()), http.StatusFound)
		return
	}

	tmpl, err := template.ParseFS(web.Templates, "templates/index.html")
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	data := WebIndexData{
		Version:   version,
		SessionID: sess.ID(),
		Display:   sess.Display(),
		Keys:      webKeys,
	}

	w.Header().Set("Content-Type", "text/html")
	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, "Template execution error: "+err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleWebPress(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	id := r.PostForm.Get("session")
	sess, err := s.store.Get(id)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	sess.Press(r.PostForm.Get("key"))
	http.Redirect(w, r, "/?session="+url.QueryEscape(id), http.StatusSeeOther)
}

// Helpers

func sessionStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrLimit):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func writeSessionError(w http.ResponseWriter, err error) {
	writeError(w, sessionStatus(err), err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// Package httpapi exposes the capture runner over HTTP: trigger a capture,
// poll the current session's progress, list history.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/snapstitch/history"
	"github.com/hazyhaar/snapstitch/snapshot"
	"github.com/hazyhaar/snapstitch/webshot"
)

// Capturer is what the API needs from the runner.
type Capturer interface {
	StartCapture(req webshot.Request) (string, error)
	Status() (snapshot.SessionState, bool)
	History(ctx context.Context, limit int) ([]history.Entry, error)
}

// Server serves the capture API.
type Server struct {
	runner Capturer
	logger *slog.Logger
	router chi.Router
}

// New builds a Server around the given runner.
func New(runner Capturer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{runner: runner, logger: logger}

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/v1/captures", s.handleStart)
	r.Get("/v1/captures/current", s.handleStatus)
	r.Get("/v1/history", s.handleHistory)

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 32*1024)

	var req webshot.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id, err := s.runner.StartCapture(req)
	switch {
	case errors.Is(err, webshot.ErrBusy):
		jsonErr(w, "a capture is already in flight", http.StatusConflict)
		return
	case err != nil:
		jsonErr(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.logger.Info("httpapi: capture started", "session", id, "url", req.URL)
	writeJSON(w, http.StatusAccepted, map[string]string{"session_id": id})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	state, ok := s.runner.Status()
	if !ok {
		jsonErr(w, "no capture session", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonErr(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := s.runner.History(r.Context(), limit)
	if err != nil {
		s.logger.Error("httpapi: history query failed", "error", err)
		jsonErr(w, "internal error", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": entries})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonErr(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}

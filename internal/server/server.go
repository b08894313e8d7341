// Package server is the HTTP presentation adapter: it forwards clicks,
// skips, and hint requests into the round state machine and serves the
// machine's snapshot, alongside the health and metrics endpoints.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/UnknownOlympus/wayfarer/internal/game"
	"github.com/UnknownOlympus/wayfarer/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	engine *game.Engine
	log    *slog.Logger
}

func New(engine *game.Engine, log *slog.Logger) *Server {
	return &Server{engine: engine, log: log}
}

// Handler builds the router. The prometheus registry backs /metrics.
func (s *Server) Handler(reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/api/state", s.handleState)
	r.Post("/api/guess", s.handleGuess)
	r.Post("/api/skip", s.handleSkip)
	r.Post("/api/hint", s.handleHint)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return r
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, s.engine.Snapshot())
}

// guessRequest is a map click forwarded by the presentation surface.
type guessRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid guess payload", http.StatusBadRequest)
		return
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
		http.Error(w, "coordinate out of range", http.StatusBadRequest)
		return
	}

	s.engine.SubmitGuess(models.Coordinate{Lat: req.Lat, Lng: req.Lng})
	s.writeJSON(w, r, s.engine.Snapshot())
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	s.engine.Skip()
	s.writeJSON(w, r, s.engine.Snapshot())
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	s.engine.RequestHint()
	s.writeJSON(w, r, s.engine.Snapshot())
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		s.log.ErrorContext(r.Context(), "failed to write reply", "error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

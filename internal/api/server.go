package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/scrivener/internal/pipeline"
)

// Processor runs the meeting-audio pipeline for one URL.
type Processor interface {
	Process(ctx context.Context, url string) (*pipeline.MeetingTranscript, error)
}

type Server struct {
	router    *chi.Mux
	port      int
	processor Processor
}

func NewServer(port int, processor Processor) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:    router,
		port:      port,
		processor: processor,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/scrivener/status", s.status)
	router.Post("/api/v1/tools/process_meeting_audio", s.processMeetingAudio)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

type toolRequest struct {
	URL string `json:"url"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) processMeetingAudio(w http.ResponseWriter, r *http.Request) {
	var req toolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "url is required")
		return
	}

	result, err := s.processor.Process(r.Context(), req.URL)
	if err != nil {
		status, code := classify(err)
		slog.Error("processing failed", "url", req.URL, "code", code, "error", err)
		writeError(w, status, code, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

// classify maps pipeline errors onto transport status codes.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, pipeline.ErrSourceUnreachable):
		return http.StatusBadGateway, "source_unreachable"
	case errors.Is(err, pipeline.ErrSourceUnreadable):
		return http.StatusUnprocessableEntity, "source_unreadable"
	case errors.Is(err, pipeline.ErrDiarizationUnavailable):
		return http.StatusBadGateway, "diarization_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Error: msg, Code: code})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"agent":  "scrivener",
		"status": "ready",
	})
}

// Package httpapi serves the run queue over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"autoapply-agent/internal/application/port/output"
	"autoapply-agent/internal/application/service"
	"autoapply-agent/internal/domain/entity"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
)

const (
	serviceName    = "autoapply-agent"
	maxRequestBody = 1 << 20
)

// Runs is the part of the run queue the API needs.
type Runs interface {
	Submit(req entity.RunRequest) (*service.RunHandle, error)
	Get(id string) (*service.RunHandle, error)
}

type Config struct {
	Addr     string
	LogLevel string
	// LogJSON switches request logs from the console format to JSON lines.
	LogJSON bool
	// HeadlessDefault applies when a request omits "headless".
	HeadlessDefault bool
}

type Server struct {
	runs   Runs
	logger output.LoggerPort
	cfg    Config
	http   *http.Server
}

func NewServer(runs Runs, logger output.LoggerPort, cfg Config) *Server {
	s := &Server{runs: runs, logger: logger, cfg: cfg}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Routes() http.Handler {
	requestLogger := httplog.NewLogger(serviceName, httplog.Options{
		LogLevel: s.cfg.LogLevel,
		JSON:     s.cfg.LogJSON,
		Concise:  true,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(requestLogger))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/runs", s.handleCreateRun)
		r.Get("/runs/{runID}", s.handleGetRun)
	})
	return r
}

// ListenAndServe blocks until ctx is done, then shuts the server down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP API listening", "addr", s.cfg.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

type createRunRequest struct {
	JobURL     string             `json:"job_url"`
	Profile    entity.UserProfile `json:"profile"`
	ResumePath string             `json:"resume_path"`
	Headless   *bool              `json:"headless,omitempty"`
}

type runView struct {
	ID     string              `json:"id"`
	Status entity.RunStatus    `json:"status"`
	Result *entity.AgentResult `json:"result,omitempty"`
}

func newRunView(h *service.RunHandle) runView {
	v := runView{ID: h.ID, Status: h.Status()}
	if res, ok := h.Result(); ok {
		v.Result = res
	}
	return v
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var body createRunRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		s.respondWithError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	req := entity.RunRequest{
		JobURL:     body.JobURL,
		Profile:    body.Profile,
		ResumePath: body.ResumePath,
		Headless:   s.cfg.HeadlessDefault,
	}
	if body.Headless != nil {
		req.Headless = *body.Headless
	}

	if err := req.Validate(); err != nil {
		s.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if info, err := os.Stat(req.ResumePath); err != nil || info.IsDir() {
		s.respondWithError(w, http.StatusBadRequest, fmt.Sprintf("resume not found: %s", req.ResumePath))
		return
	}

	h, err := s.runs.Submit(req)
	switch {
	case errors.Is(err, service.ErrQueueClosed):
		s.respondWithError(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		s.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respond(w, http.StatusAccepted, newRunView(h))
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	h, err := s.runs.Get(chi.URLParam(r, "runID"))
	if err != nil {
		if errors.Is(err, service.ErrRunNotFound) {
			s.respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		s.respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respond(w, http.StatusOK, newRunView(h))
}

func (s *Server) respondWithError(w http.ResponseWriter, status int, message string) {
	s.respond(w, status, map[string]string{"error": message})
}

func (s *Server) respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

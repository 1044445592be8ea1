// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the session API over HTTP: start a session, apply
// reviewed edits at the two interrupt points, and read session state.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pdiddy/deck-engine/internal/pipeline"
	"github.com/pdiddy/deck-engine/internal/render"
	"github.com/pdiddy/deck-engine/pkg/types"
)

// Server wraps the pipeline controller with an HTTP surface.
type Server struct {
	controller *pipeline.Controller
	logger     *slog.Logger
}

// New builds a server around an existing controller.
func New(controller *pipeline.Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{controller: controller, logger: logger}
}

// Router assembles the chi routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleStart)
		r.Get("/{sessionID}", s.handleGetState)
		r.Get("/{sessionID}/preview", s.handlePreview)
		r.Post("/{sessionID}/outline", s.handleResumeOutline)
		r.Post("/{sessionID}/slides", s.handleResumeSlides)
	})

	return r
}

type startRequest struct {
	InputText  string   `json:"input_text"`
	InputFiles []string `json:"input_files"`
}

type startResponse struct {
	SessionID string        `json:"session_id"`
	Outline   types.Outline `json:"outline"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.controller.Start(r.Context(), req.InputText, req.InputFiles)
	if err != nil {
		s.writeTaxonomyError(w, r, err)
		return
	}

	s.logger.Info("session started", "session_id", result.SessionID, "chapters", len(result.Outline.Chapters))
	writeJSON(w, http.StatusOK, startResponse{SessionID: result.SessionID, Outline: result.Outline})
}

type outlineRequest struct {
	Outline types.Outline `json:"outline"`
}

type slidesResponse struct {
	Slides []types.Slide `json:"slides"`
}

func (s *Server) handleResumeOutline(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req outlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	slides, err := s.controller.ResumeAfterOutline(r.Context(), sessionID, req.Outline)
	if err != nil {
		s.writeTaxonomyError(w, r, err)
		return
	}

	s.logger.Info("outline approved", "session_id", sessionID, "slides", len(slides))
	writeJSON(w, http.StatusOK, slidesResponse{Slides: slides})
}

type slidesRequest struct {
	Slides []types.Slide `json:"slides"`
}

type renderResponse struct {
	ArtifactPath string `json:"artifact_path"`
	Preview      string `json:"preview"`
}

func (s *Server) handleResumeSlides(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req slidesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.controller.ResumeAfterDetails(r.Context(), sessionID, req.Slides)
	if err != nil {
		s.writeTaxonomyError(w, r, err)
		return
	}

	s.logger.Info("deck rendered", "session_id", sessionID, "artifact", result.ArtifactPath)
	writeJSON(w, http.StatusOK, renderResponse{ArtifactPath: result.ArtifactPath, Preview: result.Preview})
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	state, err := s.controller.GetState(r.Context(), sessionID)
	if err != nil {
		s.writeTaxonomyError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	state, err := s.controller.GetState(r.Context(), sessionID)
	if err != nil {
		s.writeTaxonomyError(w, r, err)
		return
	}

	html, err := render.PreviewHTML(render.BuildPreview(state))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// writeTaxonomyError maps pipeline errors to HTTP statuses: bad input 400,
// unknown session 404, wrong interrupt point or failed session 409,
// provider failure 502, assembly failure 500.
func (s *Server) writeTaxonomyError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		inputErr    *types.InputError
		stateErr    *types.StateError
		providerErr *types.ProviderError
		assemblyErr *types.AssemblyError
	)

	switch {
	case errors.As(err, &inputErr):
		writeError(w, http.StatusBadRequest, inputErr.Error())
	case errors.As(err, &stateErr):
		status := http.StatusConflict
		if strings.Contains(stateErr.Reason, "unknown session") {
			status = http.StatusNotFound
		}
		writeError(w, status, stateErr.Error())
	case errors.As(err, &providerErr):
		s.logger.Error("provider failure", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusBadGateway, providerErr.Error())
	case errors.As(err, &assemblyErr):
		s.logger.Error("assembly failure", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, assemblyErr.Error())
	default:
		s.logger.Error("internal failure", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

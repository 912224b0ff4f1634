package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/services"
	"github.com/vytor/flashdeck/internal/session"
)

type rateRequest struct {
	Quality *int `json:"quality" validate:"required,min=0,max=5"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	deckID, err := parseID(r, "deck")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var cfg session.Config
	if err := decodeJSON(r, &cfg, true); err != nil {
		handleError(w, r, err)
		return
	}

	view, err := s.StudyService.Start(r.Context(), deckID, cfg)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, view)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, s.StudyService.Get)
}

func (s *Server) handleFlip(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, s.StudyService.Flip)
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, s.StudyService.Skip)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, s.StudyService.End)
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req rateRequest
	if err := decodeJSON(r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}

	log := logger.FromContext(r.Context()).WithFields(map[string]any{
		"session_id": id,
		"quality":    *req.Quality,
	})
	log.Debug("rating card")

	res, err := s.StudyService.Rate(r.Context(), id, *req.Quality)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	if err := s.StudyService.Reset(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sessionAction(w http.ResponseWriter, r *http.Request,
	action func(ctx context.Context, id string) (*services.SessionView, error)) {
	view, err := action(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

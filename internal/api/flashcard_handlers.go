package api

import (
	"net/http"

	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/services"
)

type createFlashcardRequest struct {
	Front string `json:"front" validate:"required,max=10000"`
	Back  string `json:"back" validate:"required,max=10000"`
	Notes string `json:"notes" validate:"max=10000"`
}

type updateFlashcardRequest struct {
	Front *string `json:"front" validate:"omitempty,max=10000"`
	Back  *string `json:"back" validate:"omitempty,max=10000"`
	Notes *string `json:"notes" validate:"omitempty,max=10000"`
}

func (s *Server) handleListFlashcards(w http.ResponseWriter, r *http.Request) {
	deckID, err := parseID(r, "deck")
	if err != nil {
		handleError(w, r, err)
		return
	}
	cards, err := s.DeckService.ListFlashcards(r.Context(), deckID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cards)
}

func (s *Server) handleCreateFlashcard(w http.ResponseWriter, r *http.Request) {
	deckID, err := parseID(r, "deck")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req createFlashcardRequest
	if err := decodeJSON(r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.DeckService.CreateFlashcard(r.Context(), deckID, services.FlashcardInput{
		Front: &req.Front,
		Back:  &req.Back,
		Notes: &req.Notes,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, card)
}

func (s *Server) handleUpdateFlashcard(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "flashcard")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req updateFlashcardRequest
	if err := decodeJSON(r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.DeckService.UpdateFlashcard(r.Context(), id, services.FlashcardInput{
		Front: req.Front,
		Back:  req.Back,
		Notes: req.Notes,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Debug("flashcard updated: id=%d", id)
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleDeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "flashcard")
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.DeckService.DeleteFlashcard(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

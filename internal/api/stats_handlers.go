package api

import (
	"net/http"
	"strconv"

	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/models"
)

type deckStatsResponse struct {
	*models.DeckStat
	ReviewTime *models.ReviewTimeStat `json:"review_time"`
}

func (s *Server) handleDeckStats(w http.ResponseWriter, r *http.Request) {
	deckID, err := parseID(r, "deck")
	if err != nil {
		handleError(w, r, err)
		return
	}

	stats, err := s.DeckService.DeckStats(r.Context(), deckID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	timing, err := s.DeckService.ReviewTimeStats(r.Context(), deckID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, deckStatsResponse{DeckStat: stats, ReviewTime: timing})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	deckID, err := parseID(r, "deck")
	if err != nil {
		handleError(w, r, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			handleError(w, r, errors.NewBadRequestError("invalid limit"))
			return
		}
	}

	sessions, err := s.DeckService.RecentSessions(r.Context(), deckID, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sessions)
}

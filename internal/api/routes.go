package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/decks", func(r chi.Router) {
		r.Get("/", s.handleListDecks)
		r.Post("/", s.handleCreateDeck)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetDeck)
			r.Delete("/", s.handleDeleteDeck)
			r.Get("/stats", s.handleDeckStats)
			r.Get("/sessions", s.handleListSessions)
			r.Post("/sessions", s.handleStartSession)
			r.Get("/flashcards", s.handleListFlashcards)
			r.Post("/flashcards", s.handleCreateFlashcard)
		})
	})

	r.Patch("/flashcards/{id}", s.handleUpdateFlashcard)
	r.Delete("/flashcards/{id}", s.handleDeleteFlashcard)

	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetSession)
		r.Delete("/", s.handleResetSession)
		r.Post("/flip", s.handleFlip)
		r.Post("/rate", s.handleRate)
		r.Post("/skip", s.handleSkip)
		r.Post("/end", s.handleEndSession)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusNotFound, errorBody("NOT_FOUND", "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusMethodNotAllowed, errorBody("METHOD_NOT_ALLOWED", "method not allowed"))
	})
	return r
}

package repository

import (
	"context"
	"time"

	"github.com/vytor/flashdeck/internal/models"
)

// DeckRepository handles deck data access
type DeckRepository interface {
	Get(ctx context.Context, id int64) (*models.Deck, error)
	List(ctx context.Context) ([]models.Deck, error)
	Insert(ctx context.Context, deck models.Deck) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// FlashcardRepository handles flashcard data access. It is both the card
// source for study sessions and the sink for rescheduled cards.
type FlashcardRepository interface {
	Get(ctx context.Context, id int64) (*models.Flashcard, error)
	List(ctx context.Context, filter models.FlashcardFilter) ([]models.Flashcard, error)
	ListByDeck(ctx context.Context, deckID int64) ([]models.Flashcard, error)
	Insert(ctx context.Context, flashcard models.Flashcard) (int64, error)
	Update(ctx context.Context, flashcard models.Flashcard) error
	UpdateContent(ctx context.Context, flashcard models.Flashcard) error
	Delete(ctx context.Context, id int64) error
	InsertReviewHistory(ctx context.Context, flashcardID int64, quality int, timeSeconds float64) error
}

// StudySessionRepository stores summaries of finished study sessions
type StudySessionRepository interface {
	Insert(ctx context.Context, s models.StudySession) error
	ListByDeck(ctx context.Context, deckID int64, limit int) ([]models.StudySession, error)
}

// StatsRepository handles statistics data access
type StatsRepository interface {
	DeckStats(ctx context.Context, deckID int64, now time.Time) (*models.DeckStat, error)
	ReviewTimeStats(ctx context.Context, deckID int64) (*models.ReviewTimeStat, error)
}

package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
	"github.com/vytor/flashdeck/internal/scheduler"
)

// FlashcardInput carries the editable text of a card. Nil fields are left
// unchanged on update.
type FlashcardInput struct {
	Front *string
	Back  *string
	Notes *string
}

// DeckService handles deck and flashcard management
type DeckService interface {
	ListDecks(ctx context.Context) ([]models.Deck, error)
	GetDeck(ctx context.Context, id int64) (*models.Deck, error)
	CreateDeck(ctx context.Context, name, description string) (*models.Deck, error)
	DeleteDeck(ctx context.Context, id int64) error

	ListFlashcards(ctx context.Context, deckID int64) ([]models.Flashcard, error)
	CreateFlashcard(ctx context.Context, deckID int64, in FlashcardInput) (*models.Flashcard, error)
	UpdateFlashcard(ctx context.Context, id int64, in FlashcardInput) (*models.Flashcard, error)
	DeleteFlashcard(ctx context.Context, id int64) error

	DeckStats(ctx context.Context, deckID int64) (*models.DeckStat, error)
	ReviewTimeStats(ctx context.Context, deckID int64) (*models.ReviewTimeStat, error)
	RecentSessions(ctx context.Context, deckID int64, limit int) ([]models.StudySession, error)
}

type deckService struct {
	decks    repository.DeckRepository
	cards    repository.FlashcardRepository
	sessions repository.StudySessionRepository
	stats    repository.StatsRepository
	now      func() time.Time
}

// NewDeckService creates a new DeckService
func NewDeckService(
	decks repository.DeckRepository,
	cards repository.FlashcardRepository,
	sessions repository.StudySessionRepository,
	stats repository.StatsRepository,
) DeckService {
	return &deckService{
		decks:    decks,
		cards:    cards,
		sessions: sessions,
		stats:    stats,
		now:      time.Now,
	}
}

func (s *deckService) ListDecks(ctx context.Context) ([]models.Deck, error) {
	decks, err := s.decks.List(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list decks: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return decks, nil
}

func (s *deckService) GetDeck(ctx context.Context, id int64) (*models.Deck, error) {
	deck, err := s.decks.Get(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", id)
	}
	return deck, nil
}

func (s *deckService) CreateDeck(ctx context.Context, name, description string) (*models.Deck, error) {
	log := logger.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("name", "is required")
	}

	deck := models.Deck{
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   s.now(),
	}
	id, err := s.decks.Insert(ctx, deck)
	if err != nil {
		log.Error("failed to create deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	deck.ID = id
	log.Info("deck created: id=%d, name=%q", id, name)
	return &deck, nil
}

func (s *deckService) DeleteDeck(ctx context.Context, id int64) error {
	if err := s.decks.Delete(ctx, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("deck", id)
		}
		logger.FromContext(ctx).Error("failed to delete deck: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *deckService) ListFlashcards(ctx context.Context, deckID int64) ([]models.Flashcard, error) {
	if _, err := s.GetDeck(ctx, deckID); err != nil {
		return nil, err
	}
	cards, err := s.cards.ListByDeck(ctx, deckID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list flashcards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return cards, nil
}

func (s *deckService) CreateFlashcard(ctx context.Context, deckID int64, in FlashcardInput) (*models.Flashcard, error) {
	log := logger.FromContext(ctx)

	front, back := deref(in.Front), deref(in.Back)
	if front == "" {
		return nil, errors.NewValidationError("front", "is required")
	}
	if back == "" {
		return nil, errors.NewValidationError("back", "is required")
	}
	if _, err := s.GetDeck(ctx, deckID); err != nil {
		return nil, err
	}

	card := models.Flashcard{
		DeckID:     deckID,
		Front:      front,
		Back:       back,
		Notes:      deref(in.Notes),
		EaseFactor: scheduler.DefaultEaseFactor,
		CreatedAt:  s.now(),
	}
	id, err := s.cards.Insert(ctx, card)
	if err != nil {
		log.Error("failed to create flashcard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	card.ID = id
	log.Debug("flashcard created: id=%d, deck_id=%d", id, deckID)
	return &card, nil
}

func (s *deckService) UpdateFlashcard(ctx context.Context, id int64, in FlashcardInput) (*models.Flashcard, error) {
	log := logger.FromContext(ctx)

	card, err := s.cards.Get(ctx, id)
	if err != nil {
		log.Error("failed to get flashcard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("flashcard", id)
	}

	if in.Front != nil {
		if card.Front = strings.TrimSpace(*in.Front); card.Front == "" {
			return nil, errors.NewValidationError("front", "cannot be empty")
		}
	}
	if in.Back != nil {
		if card.Back = strings.TrimSpace(*in.Back); card.Back == "" {
			return nil, errors.NewValidationError("back", "cannot be empty")
		}
	}
	if in.Notes != nil {
		card.Notes = strings.TrimSpace(*in.Notes)
	}

	if err := s.cards.UpdateContent(ctx, *card); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("flashcard", id)
		}
		log.Error("failed to update flashcard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return card, nil
}

func (s *deckService) DeleteFlashcard(ctx context.Context, id int64) error {
	if err := s.cards.Delete(ctx, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("flashcard", id)
		}
		logger.FromContext(ctx).Error("failed to delete flashcard: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *deckService) DeckStats(ctx context.Context, deckID int64) (*models.DeckStat, error) {
	if _, err := s.GetDeck(ctx, deckID); err != nil {
		return nil, err
	}
	stats, err := s.stats.DeckStats(ctx, deckID, s.now())
	if err != nil {
		logger.FromContext(ctx).Error("failed to get deck stats: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return stats, nil
}

func (s *deckService) ReviewTimeStats(ctx context.Context, deckID int64) (*models.ReviewTimeStat, error) {
	if _, err := s.GetDeck(ctx, deckID); err != nil {
		return nil, err
	}
	stats, err := s.stats.ReviewTimeStats(ctx, deckID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get review time stats: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return stats, nil
}

func (s *deckService) RecentSessions(ctx context.Context, deckID int64, limit int) ([]models.StudySession, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if _, err := s.GetDeck(ctx, deckID); err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByDeck(ctx, deckID, limit)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list study sessions: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return sessions, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

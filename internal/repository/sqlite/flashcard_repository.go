package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

var flashcardColumns = []string{
	"id", "deck_id", "front", "back", "notes", "difficulty", "repetitions", "interval_days",
	"ease_factor", "last_reviewed", "next_review", "streak", "total_reviews", "correct_reviews", "created_at",
}

type flashcardRepository struct {
	db *sql.DB
}

// NewFlashcardRepository creates a new FlashcardRepository implementation
func NewFlashcardRepository(db *sql.DB) repository.FlashcardRepository {
	return &flashcardRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlashcard(row rowScanner) (models.Flashcard, error) {
	var c models.Flashcard
	var lastReviewed, nextReview sql.NullTime
	err := row.Scan(&c.ID, &c.DeckID, &c.Front, &c.Back, &c.Notes, &c.Difficulty, &c.Repetitions, &c.Interval,
		&c.EaseFactor, &lastReviewed, &nextReview, &c.Streak, &c.TotalReviews, &c.CorrectReviews, &c.CreatedAt)
	if err != nil {
		return c, err
	}
	c.LastReviewed = timePtr(lastReviewed)
	c.NextReview = timePtr(nextReview)
	return c, nil
}

func (r *flashcardRepository) Get(ctx context.Context, id int64) (*models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("getting flashcard: id=%d", id)

	query, args, err := sqlBuilder.Select(flashcardColumns...).From("flashcards").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	c, err := scanFlashcard(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("flashcard not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get flashcard: %v", err)
		return nil, err
	}
	return &c, nil
}

func (r *flashcardRepository) ListByDeck(ctx context.Context, deckID int64) ([]models.Flashcard, error) {
	return r.List(ctx, models.FlashcardFilter{DeckID: deckID})
}

func (r *flashcardRepository) List(ctx context.Context, filter models.FlashcardFilter) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("listing flashcards: deck_id=%d, new_only=%t, limit=%d", filter.DeckID, filter.NewOnly, filter.Limit)

	query := sqlBuilder.Select(flashcardColumns...).From("flashcards")

	if filter.DeckID != 0 {
		query = query.Where(squirrel.Eq{"deck_id": filter.DeckID})
	}
	if filter.NewOnly {
		query = query.Where(squirrel.Eq{"last_reviewed": nil})
	}
	if filter.DueAt != nil {
		query = query.Where(squirrel.Or{
			squirrel.Eq{"next_review": nil},
			squirrel.LtOrEq{"next_review": filter.DueAt.UTC()},
		})
	}

	switch filter.OrderBy {
	case "next_review":
		// NULLs first: never scheduled cards are the most overdue.
		query = query.OrderBy("next_review IS NOT NULL", "next_review ASC", "id ASC")
	case "ease_factor":
		query = query.OrderBy("ease_factor ASC", "id ASC")
	default:
		query = query.OrderBy("id ASC")
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build flashcard query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query flashcards: %v", err)
		return nil, err
	}
	defer rows.Close()

	var cards []models.Flashcard
	for rows.Next() {
		c, err := scanFlashcard(rows)
		if err != nil {
			log.Error("failed to scan flashcard row: %v", err)
			return nil, err
		}
		cards = append(cards, c)
	}
	log.Debug("found %d flashcards", len(cards))
	return cards, rows.Err()
}

func (r *flashcardRepository) Insert(ctx context.Context, c models.Flashcard) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("inserting flashcard: deck_id=%d", c.DeckID)

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO flashcards (deck_id, front, back, notes, difficulty, repetitions, interval_days, ease_factor,
                        last_reviewed, next_review, streak, total_reviews, correct_reviews, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, c.DeckID, c.Front, c.Back, c.Notes, c.Difficulty, c.Repetitions, c.Interval, c.EaseFactor,
		nullTime(c.LastReviewed), nullTime(c.NextReview), c.Streak, c.TotalReviews, c.CorrectReviews, c.CreatedAt.UTC())
	if err != nil {
		log.Error("failed to insert flashcard: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get flashcard id: %v", err)
		return 0, err
	}
	log.Debug("flashcard inserted: id=%d", id)
	return id, nil
}

// Update writes the scheduling state and review counters of c.
func (r *flashcardRepository) Update(ctx context.Context, c models.Flashcard) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("updating flashcard: id=%d, interval=%.2f, ease=%.2f", c.ID, c.Interval, c.EaseFactor)

	query, args, err := sqlBuilder.Update("flashcards").
		Set("difficulty", c.Difficulty).
		Set("repetitions", c.Repetitions).
		Set("interval_days", c.Interval).
		Set("ease_factor", c.EaseFactor).
		Set("last_reviewed", nullTime(c.LastReviewed)).
		Set("next_review", nullTime(c.NextReview)).
		Set("streak", c.Streak).
		Set("total_reviews", c.TotalReviews).
		Set("correct_reviews", c.CorrectReviews).
		Where(squirrel.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return err
	}
	return r.execOne(ctx, log, query, args...)
}

// UpdateContent writes the text fields of c, leaving its schedule alone.
func (r *flashcardRepository) UpdateContent(ctx context.Context, c models.Flashcard) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("updating flashcard content: id=%d", c.ID)

	query, args, err := sqlBuilder.Update("flashcards").
		Set("front", c.Front).
		Set("back", c.Back).
		Set("notes", c.Notes).
		Where(squirrel.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return err
	}
	return r.execOne(ctx, log, query, args...)
}

func (r *flashcardRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("deleting flashcard: id=%d", id)
	return r.execOne(ctx, log, `DELETE FROM flashcards WHERE id = ?`, id)
}

func (r *flashcardRepository) InsertReviewHistory(ctx context.Context, flashcardID int64, quality int, timeSeconds float64) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("inserting review history: flashcard_id=%d, quality=%d, time=%.2fs", flashcardID, quality, timeSeconds)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO review_history (flashcard_id, quality, time_seconds, reviewed_at)
		VALUES (?, ?, ?, ?)
	`, flashcardID, quality, timeSeconds, time.Now().UTC())
	if err != nil {
		log.Error("failed to insert review history: %v", err)
	}
	return err
}

// execOne runs a statement that must touch exactly one row. A miss is
// reported as sql.ErrNoRows.
func (r *flashcardRepository) execOne(ctx context.Context, log *logger.Logger, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("flashcard statement failed: %v", err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("flashcard: %w", sql.ErrNoRows)
	}
	return nil
}

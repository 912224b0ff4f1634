package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

type studySessionRepository struct {
	db *sql.DB
}

// NewStudySessionRepository creates a new StudySessionRepository implementation
func NewStudySessionRepository(db *sql.DB) repository.StudySessionRepository {
	return &studySessionRepository{db: db}
}

func (r *studySessionRepository) Insert(ctx context.Context, s models.StudySession) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("inserting study session: id=%s, deck_id=%d", s.ID, s.DeckID)

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM decks WHERE id = ?`, s.DeckID).Scan(&exists)
		if err != nil {
			return err
		}
		if exists == 0 {
			// Deck was deleted while the session ran; nothing to attach the summary to.
			log.Warn("skipping summary for deleted deck: deck_id=%d", s.DeckID)
			return nil
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO study_sessions (id, deck_id, started_at, ended_at, total_cards, completed_cards,
                            correct_count, wrong_count, best_streak, accuracy)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING
`, s.ID, s.DeckID, s.StartedAt.UTC(), s.EndedAt.UTC(), s.TotalCards, s.CompletedCards,
			s.CorrectCount, s.WrongCount, s.BestStreak, s.Accuracy)
		if err != nil {
			log.Error("failed to insert study session: %v", err)
		}
		return err
	})
}

func (r *studySessionRepository) ListByDeck(ctx context.Context, deckID int64, limit int) ([]models.StudySession, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("listing study sessions: deck_id=%d, limit=%d", deckID, limit)

	query := sqlBuilder.Select(
		"id", "deck_id", "started_at", "ended_at", "total_cards", "completed_cards",
		"correct_count", "wrong_count", "best_streak", "accuracy",
	).From("study_sessions").
		Where(squirrel.Eq{"deck_id": deckID}).
		OrderBy("ended_at DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query study sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var sessions []models.StudySession
	for rows.Next() {
		var s models.StudySession
		if err := rows.Scan(&s.ID, &s.DeckID, &s.StartedAt, &s.EndedAt, &s.TotalCards, &s.CompletedCards,
			&s.CorrectCount, &s.WrongCount, &s.BestStreak, &s.Accuracy); err != nil {
			log.Error("failed to scan study session row: %v", err)
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

type statsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new StatsRepository implementation
func NewStatsRepository(db *sql.DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) DeckStats(ctx context.Context, deckID int64, now time.Time) (*models.DeckStat, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching deck stats: deck_id=%d", deckID)

	stat := models.DeckStat{DeckID: deckID}
	err := r.db.QueryRowContext(ctx, `
SELECT
    COUNT(*) AS total_cards,
    COUNT(CASE WHEN last_reviewed IS NULL THEN 1 END) AS new_cards,
    COUNT(CASE WHEN next_review IS NULL OR next_review <= ? THEN 1 END) AS cards_due,
    COUNT(CASE WHEN ease_factor >= 2.5 AND interval_days >= 21 THEN 1 END) AS cards_mastered,
    COUNT(CASE WHEN ease_factor < 2.0 AND total_reviews > 3 THEN 1 END) AS cards_struggling,
    COALESCE(SUM(total_reviews), 0) AS total_reviews,
    CASE
        WHEN SUM(total_reviews) > 0
        THEN ROUND(100.0 * SUM(correct_reviews) / SUM(total_reviews), 1)
        ELSE 0
    END AS overall_accuracy,
    COALESCE(AVG(ease_factor), 0) AS avg_ease_factor,
    COALESCE(AVG(interval_days), 0) AS avg_interval,
    COALESCE(MAX(streak), 0) AS best_streak
FROM flashcards
WHERE deck_id = ?
`, now.UTC(), deckID).Scan(
		&stat.TotalCards,
		&stat.NewCards,
		&stat.CardsDue,
		&stat.CardsMastered,
		&stat.CardsStruggling,
		&stat.TotalReviews,
		&stat.OverallAccuracy,
		&stat.AvgEaseFactor,
		&stat.AvgInterval,
		&stat.BestStreak,
	)
	if err != nil {
		log.Error("failed to get deck stats: %v", err)
		return nil, err
	}
	return &stat, nil
}

func (r *statsRepository) ReviewTimeStats(ctx context.Context, deckID int64) (*models.ReviewTimeStat, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching review time stats: deck_id=%d", deckID)

	stat := models.ReviewTimeStat{TimeByQuality: make(map[int]float64)}
	err := r.db.QueryRowContext(ctx, `
SELECT
    COALESCE(AVG(rh.time_seconds), 0) AS avg_time_seconds,
    COALESCE(MIN(rh.time_seconds), 0) AS fastest_time,
    COALESCE(MAX(rh.time_seconds), 0) AS slowest_time
FROM review_history rh
JOIN flashcards f ON f.id = rh.flashcard_id
WHERE f.deck_id = ?
`, deckID).Scan(&stat.AvgTimeSeconds, &stat.FastestTime, &stat.SlowestTime)
	if err != nil {
		log.Error("failed to get time stats: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT rh.quality, AVG(rh.time_seconds)
FROM review_history rh
JOIN flashcards f ON f.id = rh.flashcard_id
WHERE f.deck_id = ?
GROUP BY rh.quality
`, deckID)
	if err != nil {
		log.Error("failed to query time by quality: %v", err)
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var quality int
		var avg float64
		if err := rows.Scan(&quality, &avg); err != nil {
			log.Error("failed to scan time by quality: %v", err)
			return nil, err
		}
		stat.TimeByQuality[quality] = avg
	}
	return &stat, rows.Err()
}

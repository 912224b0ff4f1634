package worker

import (
	"context"

	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

// SaveSessionSummaryJob stores the summary of a finished study session.
type SaveSessionSummaryJob struct {
	Sessions repository.StudySessionRepository
	Summary  models.StudySession
}

func (j *SaveSessionSummaryJob) Name() string { return "save_session_summary" }

func (j *SaveSessionSummaryJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"session_id": j.Summary.ID,
		"deck_id":    j.Summary.DeckID,
	})
	log.Debug("saving session summary: completed=%d/%d, accuracy=%.1f",
		j.Summary.CompletedCards, j.Summary.TotalCards, j.Summary.Accuracy)

	if err := j.Sessions.Insert(ctx, j.Summary); err != nil {
		log.Error("failed to save session summary: %v", err)
		return err
	}
	return nil
}

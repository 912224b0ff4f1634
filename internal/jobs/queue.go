package jobs

import "github.com/vytor/flashdeck/internal/models"

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueSessionSummary(summary models.StudySession) error
}

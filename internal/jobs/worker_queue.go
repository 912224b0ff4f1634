package jobs

import (
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
	"github.com/vytor/flashdeck/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	pool     *worker.Pool
	sessions repository.StudySessionRepository
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(pool *worker.Pool, sessions repository.StudySessionRepository) JobQueue {
	return &WorkerQueue{
		pool:     pool,
		sessions: sessions,
	}
}

func (q *WorkerQueue) EnqueueSessionSummary(summary models.StudySession) error {
	return q.pool.Submit(&worker.SaveSessionSummaryJob{
		Sessions: q.sessions,
		Summary:  summary,
	})
}

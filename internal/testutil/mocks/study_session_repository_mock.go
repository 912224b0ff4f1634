package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashdeck/internal/models"
)

// MockStudySessionRepository is a mock implementation of repository.StudySessionRepository
type MockStudySessionRepository struct {
	mock.Mock
}

func (m *MockStudySessionRepository) Insert(ctx context.Context, s models.StudySession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStudySessionRepository) ListByDeck(ctx context.Context, deckID int64, limit int) ([]models.StudySession, error) {
	args := m.Called(ctx, deckID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StudySession), args.Error(1)
}

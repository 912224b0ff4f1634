package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/session"
	"github.com/vytor/flashdeck/internal/testutil/mocks"
)

type studyFixture struct {
	decks *mocks.MockDeckRepository
	cards *mocks.MockFlashcardRepository
	queue *mocks.MockJobQueue
	now   time.Time
	svc   StudyService
}

func newStudyFixture(t *testing.T, opts ...StudyOption) *studyFixture {
	t.Helper()
	f := &studyFixture{
		decks: new(mocks.MockDeckRepository),
		cards: new(mocks.MockFlashcardRepository),
		queue: new(mocks.MockJobQueue),
		now:   time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	seq := 0
	base := []StudyOption{
		WithClock(func() time.Time { return f.now }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("s%d", seq)
		}),
	}
	f.svc = NewStudyService(f.decks, f.cards, f.queue, append(base, opts...)...)
	t.Cleanup(func() {
		f.decks.AssertExpectations(t)
		f.cards.AssertExpectations(t)
		f.queue.AssertExpectations(t)
	})
	return f
}

func (f *studyFixture) withDeck(n int) []models.Flashcard {
	cards := make([]models.Flashcard, n)
	for i := range cards {
		cards[i] = models.Flashcard{ID: int64(i + 1), DeckID: 1, Front: "q", Back: "a", EaseFactor: 2.5}
	}
	f.decks.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1, Name: "deck"}, nil)
	f.cards.On("ListByDeck", mock.Anything, int64(1)).Return(cards, nil)
	return cards
}

func (f *studyFixture) start(t *testing.T, cfg session.Config) *SessionView {
	t.Helper()
	view, err := f.svc.Start(context.Background(), 1, cfg)
	require.NoError(t, err)
	return view
}

func TestStudyService_Start(t *testing.T) {
	f := newStudyFixture(t)
	f.withDeck(3)

	view := f.start(t, session.Config{})

	assert.Equal(t, "s1", view.ID)
	assert.Equal(t, "active", view.Status)
	assert.Equal(t, 3, view.TotalCards)
	require.NotNil(t, view.CurrentCard)
	assert.Equal(t, int64(1), view.CurrentCard.ID)
	assert.False(t, view.ShowBack)
	assert.Empty(t, view.Results)
}

func TestStudyService_StartAppliesDefaults(t *testing.T) {
	f := newStudyFixture(t, WithDefaults(session.Config{MaxCards: 2}))
	f.withDeck(5)

	view := f.start(t, session.Config{})
	assert.Equal(t, 2, view.TotalCards)
	assert.Equal(t, 2, view.Config.MaxCards)
}

func TestStudyService_StartErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid config", func(t *testing.T) {
		f := newStudyFixture(t)
		_, err := f.svc.Start(ctx, 1, session.Config{SortBy: "alphabetical"})
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))
	})

	t.Run("missing deck", func(t *testing.T) {
		f := newStudyFixture(t)
		f.decks.On("Get", mock.Anything, int64(1)).Return(nil, nil)
		_, err := f.svc.Start(ctx, 1, session.Config{})
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
	})

	t.Run("card source failure", func(t *testing.T) {
		f := newStudyFixture(t)
		f.decks.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1}, nil)
		f.cards.On("ListByDeck", mock.Anything, int64(1)).Return(nil, errors.New("db down"))
		_, err := f.svc.Start(ctx, 1, session.Config{})
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInternal))
	})

	t.Run("nothing due", func(t *testing.T) {
		f := newStudyFixture(t)
		next := f.now.Add(48 * time.Hour)
		last := f.now.Add(-24 * time.Hour)
		f.decks.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1}, nil)
		f.cards.On("ListByDeck", mock.Anything, int64(1)).Return([]models.Flashcard{
			{ID: 1, DeckID: 1, EaseFactor: 2.5, LastReviewed: &last, NextReview: &next},
		}, nil)
		_, err := f.svc.Start(ctx, 1, session.Config{DueOnly: true})
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))
	})
}

func TestStudyService_RatePersistsThenAdvances(t *testing.T) {
	f := newStudyFixture(t)
	f.withDeck(2)
	view := f.start(t, session.Config{})

	f.cards.On("Update", mock.Anything, mock.MatchedBy(func(c models.Flashcard) bool {
		return c.ID == 1 && c.Repetitions == 1 && c.Interval == 1 && c.Difficulty == 4 && c.TotalReviews == 1
	})).Return(nil).Once()
	f.cards.On("InsertReviewHistory", mock.Anything, int64(1), 4, 5.0).Return(nil).Once()

	f.now = f.now.Add(5 * time.Second)
	res, err := f.svc.Rate(context.Background(), view.ID, 4)
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.Card.ID)
	require.NotNil(t, res.Card.NextReview)
	assert.Equal(t, f.now.Add(24*time.Hour), *res.Card.NextReview)
	assert.Equal(t, 1, res.Session.CurrentIndex)
	assert.Equal(t, 1, res.Session.CompletedCards)
	assert.Equal(t, 1, res.Session.CorrectCount)
	require.Len(t, res.Session.Results, 1)
	assert.Equal(t, int64(5000), res.Session.Results[0].TimeSpentMs)
	assert.False(t, res.StreakMilestone)
}

func TestStudyService_RateRetryInPlace(t *testing.T) {
	f := newStudyFixture(t)
	f.withDeck(2)
	view := f.start(t, session.Config{})
	ctx := context.Background()

	f.cards.On("Update", mock.Anything, mock.Anything).Return(errors.New("disk I/O error")).Once()
	_, err := f.svc.Rate(ctx, view.ID, 5)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInternal))

	got, err := f.svc.Get(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentIndex)
	assert.Equal(t, 0, got.CompletedCards)
	assert.Empty(t, got.Results)

	f.cards.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	f.now = f.now.Add(time.Second)
	f.cards.On("InsertReviewHistory", mock.Anything, int64(1), 5, mock.Anything).Return(nil).Once()
	res, err := f.svc.Rate(ctx, view.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Session.CurrentIndex)
	assert.Equal(t, 1, res.Session.CompletedCards)
}

func TestStudyService_RateInvalidQuality(t *testing.T) {
	f := newStudyFixture(t)
	f.withDeck(1)
	view := f.start(t, session.Config{})

	for _, q := range []int{-1, 6} {
		_, err := f.svc.Rate(context.Background(), view.ID, q)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation), "quality %d", q)
	}
	f.cards.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestStudyService_RateCompletesAndEnqueuesSummary(t *testing.T) {
	f := newStudyFixture(t)
	f.withDeck(1)
	view := f.start(t, session.Config{})
	ctx := context.Background()

	f.cards.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	f.cards.On("InsertReviewHistory", mock.Anything, int64(1), 2, mock.Anything).
		Return(errors.New("history table locked")).Once()
	f.queue.On("EnqueueSessionSummary", mock.MatchedBy(func(s models.StudySession) bool {
		return s.ID == view.ID && s.DeckID == 1 && s.TotalCards == 1 && s.CompletedCards == 1 && s.WrongCount == 1
	})).Return(nil).Once()

	f.now = f.now.Add(90 * time.Second)
	res, err := f.svc.Rate(ctx, view.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, "completed", res.Session.Status)
	assert.Nil(t, res.Session.CurrentCard)
	assert.Equal(t, int64(90), res.Session.ElapsedSeconds)

	_, err = f.svc.Rate(ctx, view.ID, 4)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConflict))

	// elapsed time is frozen once the session is over
	f.now = f.now.Add(time.Hour)
	got, err := f.svc.Get(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(90), got.ElapsedSeconds)

	_, err = f.svc.End(ctx, view.ID)
	require.NoError(t, err)
}

func (f *studyFixture) withCards(cards []models.Flashcard) {
	f.decks.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1, Name: "deck"}, nil)
	f.cards.On("ListByDeck", mock.Anything, int64(1)).Return(cards, nil)
}

func TestStudyService_StreakMilestoneUsesCardStreak(t *testing.T) {
	f := newStudyFixture(t)
	last := f.now.Add(-6 * 24 * time.Hour)
	due := f.now.Add(-time.Hour)
	f.withCards([]models.Flashcard{{
		ID: 1, DeckID: 1, Front: "q", Back: "a",
		Repetitions: 4, Interval: 6, EaseFactor: 2.5, Streak: 4,
		LastReviewed: &last, NextReview: &due,
	}})
	view := f.start(t, session.Config{})

	f.cards.On("Update", mock.Anything, mock.MatchedBy(func(c models.Flashcard) bool {
		return c.ID == 1 && c.Streak == 5
	})).Return(nil).Once()
	f.cards.On("InsertReviewHistory", mock.Anything, int64(1), 5, mock.Anything).Return(nil).Once()
	f.queue.On("EnqueueSessionSummary", mock.Anything).Return(nil).Once()

	f.now = f.now.Add(time.Second)
	res, err := f.svc.Rate(context.Background(), view.ID, 5)
	require.NoError(t, err)

	assert.Equal(t, 5, res.Card.Streak)
	assert.Equal(t, 1, res.Session.CurrentStreak)
	assert.True(t, res.StreakMilestone)
}

func TestStudyService_StreakMilestone(t *testing.T) {
	f := newStudyFixture(t)
	streaks := []int{0, 4, 9, 2, 4}
	cards := make([]models.Flashcard, len(streaks))
	for i, st := range streaks {
		cards[i] = models.Flashcard{ID: int64(i + 1), DeckID: 1, Front: "q", Back: "a", EaseFactor: 2.5, Streak: st}
	}
	f.withCards(cards)
	view := f.start(t, session.Config{})
	ctx := context.Background()

	f.cards.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.cards.On("InsertReviewHistory", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.queue.On("EnqueueSessionSummary", mock.Anything).Return(nil).Once()

	// the last card fails, which resets its streak instead of reaching 5
	qualities := []int{4, 4, 5, 3, 1}
	var milestones []bool
	for _, q := range qualities {
		f.now = f.now.Add(time.Second)
		res, err := f.svc.Rate(ctx, view.ID, q)
		require.NoError(t, err)
		milestones = append(milestones, res.StreakMilestone)
	}
	assert.Equal(t, []bool{false, true, true, false, false}, milestones)
}

func TestStudyService_FlipAndSkip(t *testing.T) {
	f := newStudyFixture(t)
	f.withDeck(2)
	view := f.start(t, session.Config{})
	ctx := context.Background()

	flipped, err := f.svc.Flip(ctx, view.ID)
	require.NoError(t, err)
	assert.True(t, flipped.ShowBack)

	skipped, err := f.svc.Skip(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped.CurrentIndex)
	assert.False(t, skipped.ShowBack)
	assert.Equal(t, 0, skipped.CompletedCards)

	// skipping the last card ends the session without a summary
	done, err := f.svc.Skip(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", done.Status)
	f.cards.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.queue.AssertNotCalled(t, "EnqueueSessionSummary", mock.Anything)
}

func TestStudyService_EndEarly(t *testing.T) {
	f := newStudyFixture(t)
	f.withDeck(3)
	view := f.start(t, session.Config{})
	ctx := context.Background()

	f.cards.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	f.cards.On("InsertReviewHistory", mock.Anything, int64(1), 3, mock.Anything).Return(nil).Once()
	f.queue.On("EnqueueSessionSummary", mock.Anything).Return(errors.New("queue full")).Once()

	f.now = f.now.Add(time.Second)
	_, err := f.svc.Rate(ctx, view.ID, 3)
	require.NoError(t, err)

	ended, err := f.svc.End(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", ended.Status)
	assert.Equal(t, 1, ended.CompletedCards)
	assert.Equal(t, 3, ended.TotalCards)
	assert.Equal(t, float64(100), ended.Accuracy)
}

func TestStudyService_Reset(t *testing.T) {
	f := newStudyFixture(t)
	f.withDeck(1)
	view := f.start(t, session.Config{})
	ctx := context.Background()

	require.NoError(t, f.svc.Reset(ctx, view.ID))

	_, err := f.svc.Get(ctx, view.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
	assert.True(t, apperrors.HasCode(f.svc.Reset(ctx, view.ID), apperrors.ErrCodeNotFound))
}

func TestStudyService_PrunesIdleSessions(t *testing.T) {
	f := newStudyFixture(t, WithIdleTimeout(time.Minute))
	f.withDeck(1)
	ctx := context.Background()

	first := f.start(t, session.Config{})
	f.now = f.now.Add(2 * time.Minute)
	second := f.start(t, session.Config{})

	_, err := f.svc.Get(ctx, first.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
	_, err = f.svc.Get(ctx, second.ID)
	assert.NoError(t, err)
}

func TestStudyService_UnknownSession(t *testing.T) {
	f := newStudyFixture(t)
	_, err := f.svc.Flip(context.Background(), "nope")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
}

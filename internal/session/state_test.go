package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/session"
)

func startedSession(t *testing.T, n int) session.State {
	t.Helper()
	var cards []models.Flashcard
	for i := 1; i <= n; i++ {
		cards = append(cards, newCard(int64(i)))
	}
	queue := testBuilder(1).Build(cards, session.Config{MaxCards: n})
	s := session.Reduce(session.State{}, session.Start{DeckID: 9, Cards: queue, Config: session.Config{MaxCards: n}, At: now})
	require.True(t, s.IsActive())
	return s
}

func TestReduce_Start(t *testing.T) {
	s := startedSession(t, 3)

	assert.Equal(t, session.Active, s.Status)
	assert.False(t, s.IsCompleted())
	assert.Equal(t, int64(9), s.DeckID)
	assert.Equal(t, 0, s.CurrentIndex)
	assert.Equal(t, now, s.StartTime)
	assert.Zero(t, s.CompletedCards)
	assert.Empty(t, s.CardResults)

	card, ok := s.CurrentCard()
	require.True(t, ok)
	assert.Equal(t, int64(1), card.ID)
}

func TestReduce_StartWithNoCardsStaysIdle(t *testing.T) {
	s := session.Reduce(session.State{}, session.Start{DeckID: 1, At: now})

	assert.Equal(t, session.Idle, s.Status)
	_, ok := s.CurrentCard()
	assert.False(t, ok)
}

func TestReduce_FlipTogglesOnly(t *testing.T) {
	s := startedSession(t, 2)

	s = session.Reduce(s, session.Flip{})
	assert.True(t, s.ShowBack)
	assert.Equal(t, 0, s.CurrentIndex)
	assert.Zero(t, s.CompletedCards)

	s = session.Reduce(s, session.Flip{})
	assert.False(t, s.ShowBack)
}

func TestReduce_CompletionScenario(t *testing.T) {
	s := startedSession(t, 3)

	for i := 0; i < 3; i++ {
		s = session.Reduce(s, session.Flip{})
		s = session.Reduce(s, session.Rate{Quality: 4, At: now.Add(time.Duration(i+1) * 10 * time.Second)})
	}

	assert.True(t, s.IsCompleted())
	assert.False(t, s.IsActive())
	assert.Equal(t, 3, s.CompletedCards)
	assert.Equal(t, 3, s.CorrectCount)
	assert.Equal(t, 100.0, s.Accuracy())
	assert.Equal(t, 100.0, s.Progress())
	assert.Equal(t, 30*time.Second, s.ElapsedTime(now.Add(30*time.Second)))
}

func TestReduce_StreakReset(t *testing.T) {
	s := startedSession(t, 3)

	var streaks []int
	for _, q := range []int{4, 2, 5} {
		s = session.Reduce(s, session.Rate{Quality: q, At: now})
		streaks = append(streaks, s.CurrentStreak)
	}

	assert.Equal(t, []int{1, 0, 1}, streaks)
	assert.Equal(t, 1, s.BestStreak)
	assert.Equal(t, 2, s.CorrectCount)
	assert.Equal(t, 1, s.WrongCount)
	assert.InDelta(t, 66.67, s.Accuracy(), 0.01)
}

func TestReduce_RateAdvancesAndLogs(t *testing.T) {
	s := startedSession(t, 2)
	s = session.Reduce(s, session.Flip{})

	s = session.Reduce(s, session.Rate{Quality: 3, At: now.Add(4 * time.Second)})

	assert.Equal(t, 1, s.CurrentIndex)
	assert.False(t, s.ShowBack, "advancing shows the front again")
	assert.Equal(t, now.Add(4*time.Second), s.CardStartTime)
	require.Len(t, s.CardResults, 1)
	assert.Equal(t, session.CardResult{FlashcardID: 1, Quality: 3, TimeSpent: 4 * time.Second}, s.CardResults[0])
	assert.Equal(t, 50.0, s.Progress())

	s = session.Reduce(s, session.Rate{Quality: 0, At: now.Add(10 * time.Second)})
	require.Len(t, s.CardResults, 2)
	assert.Equal(t, 6*time.Second, s.CardResults[1].TimeSpent)
	assert.Equal(t, int64(2), s.CardResults[1].FlashcardID)
	assert.True(t, s.IsCompleted())
}

func TestReduce_RateAfterCompletionIsNoop(t *testing.T) {
	s := startedSession(t, 1)
	s = session.Reduce(s, session.Rate{Quality: 5, At: now})
	require.True(t, s.IsCompleted())

	again := session.Reduce(s, session.Rate{Quality: 1, At: now})

	assert.Equal(t, s.CompletedCards, again.CompletedCards)
	assert.Len(t, again.CardResults, 1)
	assert.Equal(t, 1, again.CurrentStreak)
}

func TestReduce_CompleteEarly(t *testing.T) {
	s := startedSession(t, 5)
	s = session.Reduce(s, session.Rate{Quality: 5, At: now})

	s = session.Reduce(s, session.Complete{})

	assert.True(t, s.IsCompleted())
	assert.Equal(t, 1, s.CompletedCards)
	assert.Equal(t, 20.0, s.Progress())
	_, ok := s.CurrentCard()
	assert.False(t, ok)
}

func TestReduce_NextSkipsWithoutCounting(t *testing.T) {
	s := startedSession(t, 2)
	s = session.Reduce(s, session.Flip{})

	s = session.Reduce(s, session.Next{At: now.Add(time.Second)})
	assert.Equal(t, 1, s.CurrentIndex)
	assert.False(t, s.ShowBack)
	assert.Zero(t, s.CompletedCards)

	s = session.Reduce(s, session.Next{At: now.Add(2 * time.Second)})
	assert.True(t, s.IsCompleted())
}

func TestReduce_ResetReturnsToIdle(t *testing.T) {
	s := startedSession(t, 2)
	s = session.Reduce(s, session.Rate{Quality: 4, At: now})

	s = session.Reduce(s, session.Reset{})

	assert.Equal(t, session.State{}, s)
	assert.Equal(t, session.Idle, s.Status)
}

func TestReduce_DoesNotShareResultLog(t *testing.T) {
	s := startedSession(t, 3)
	s = session.Reduce(s, session.Rate{Quality: 4, At: now})

	a := session.Reduce(s, session.Rate{Quality: 5, At: now})
	b := session.Reduce(s, session.Rate{Quality: 1, At: now})

	assert.Equal(t, 5, a.CardResults[1].Quality)
	assert.Equal(t, 1, b.CardResults[1].Quality)
	assert.Len(t, s.CardResults, 1)
}

func TestDerivedMetrics_ZeroDenominators(t *testing.T) {
	var s session.State

	assert.Zero(t, s.Accuracy())
	assert.Zero(t, s.Progress())
	assert.Zero(t, s.ElapsedTime(now))
}

func TestSummary(t *testing.T) {
	s := startedSession(t, 2)
	s = session.Reduce(s, session.Rate{Quality: 5, At: now})
	s = session.Reduce(s, session.Rate{Quality: 1, At: now})

	sum := s.Summary("abc", now.Add(time.Minute))

	assert.Equal(t, "abc", sum.ID)
	assert.Equal(t, int64(9), sum.DeckID)
	assert.Equal(t, 2, sum.TotalCards)
	assert.Equal(t, 2, sum.CompletedCards)
	assert.Equal(t, 1, sum.CorrectCount)
	assert.Equal(t, 1, sum.WrongCount)
	assert.Equal(t, 1, sum.BestStreak)
	assert.Equal(t, 50.0, sum.Accuracy)
	assert.Equal(t, now, sum.StartedAt)
}

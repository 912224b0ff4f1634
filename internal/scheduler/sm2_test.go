package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/scheduler"
)

func TestSchedule_FirstPass(t *testing.T) {
	for q := 3; q <= 5; q++ {
		res := scheduler.Schedule(q, 0, 0, 2.5)
		assert.Equal(t, 1.0, res.Interval, "quality %d", q)
		assert.Equal(t, 1, res.Repetitions)
	}
}

func TestSchedule_SecondPass(t *testing.T) {
	res := scheduler.Schedule(4, 1, 1, 2.5)
	assert.Equal(t, 6.0, res.Interval)
	assert.Equal(t, 2, res.Repetitions)
}

func TestSchedule_GrowthInterval(t *testing.T) {
	res := scheduler.Schedule(4, 2, 10, 2.0)

	assert.Equal(t, 20.0, res.Interval)
	assert.Equal(t, 3, res.Repetitions)
	assert.InDelta(t, 2.0, res.EaseFactor, 1e-9, "quality 4 keeps the ease factor")
}

func TestSchedule_RoundsMultipliedInterval(t *testing.T) {
	res := scheduler.Schedule(5, 3, 6, 2.36)
	assert.Equal(t, 14.16, res.Interval)

	res = scheduler.Schedule(5, 4, 7.333, 1.7)
	assert.Equal(t, 12.47, res.Interval)
}

func TestSchedule_FailResets(t *testing.T) {
	tests := []struct {
		name        string
		quality     int
		repetitions int
		interval    float64
		ease        float64
	}{
		{"blackout on new card", 0, 0, 0, 2.5},
		{"wrong after long streak", 1, 8, 120.5, 2.9},
		{"hard recall", 2, 3, 15, 1.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := scheduler.Schedule(tt.quality, tt.repetitions, tt.interval, tt.ease)
			assert.Equal(t, 1.0, res.Interval)
			assert.Equal(t, 0, res.Repetitions)
			assert.Equal(t, tt.ease, res.EaseFactor, "ease factor is unchanged on failure")
		})
	}
}

func TestSchedule_PerfectRecallIncreasesEase(t *testing.T) {
	for reps := 0; reps < 5; reps++ {
		res := scheduler.Schedule(5, reps, float64(reps*3), 2.5)
		assert.Greater(t, res.EaseFactor, 2.5)
		assert.InDelta(t, 2.6, res.EaseFactor, 1e-9)
	}
}

func TestSchedule_EaseFactorFloor(t *testing.T) {
	for q := scheduler.MinQuality; q <= scheduler.MaxQuality; q++ {
		for _, ease := range []float64{1.0, 1.3, 1.35, 2.5} {
			for reps := 0; reps < 4; reps++ {
				res := scheduler.Schedule(q, reps, 10, ease)
				assert.GreaterOrEqual(t, res.EaseFactor, scheduler.MinEaseFactor)
			}
		}
	}
}

func TestSchedule_QualityThreeLowersEase(t *testing.T) {
	res := scheduler.Schedule(3, 2, 6, 2.5)
	assert.InDelta(t, 2.36, res.EaseFactor, 1e-9)
	assert.Equal(t, 15.0, res.Interval)
}

func TestApplyReview_Pass(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	card := models.Flashcard{
		ID:             7,
		EaseFactor:     2.5,
		Streak:         2,
		TotalReviews:   4,
		CorrectReviews: 3,
	}

	updated := scheduler.ApplyReview(card, 5, now)

	assert.Equal(t, 5, updated.Difficulty)
	assert.Equal(t, 1.0, updated.Interval)
	assert.Equal(t, 1, updated.Repetitions)
	require.NotNil(t, updated.LastReviewed)
	require.NotNil(t, updated.NextReview)
	assert.Equal(t, now, *updated.LastReviewed)
	assert.Equal(t, now.Add(24*time.Hour), *updated.NextReview)
	assert.Equal(t, 3, updated.Streak)
	assert.Equal(t, 5, updated.TotalReviews)
	assert.Equal(t, 4, updated.CorrectReviews)

	assert.Nil(t, card.LastReviewed, "input card must not be modified")
}

func TestApplyReview_Fail(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	card := models.Flashcard{
		EaseFactor:     2.2,
		Repetitions:    4,
		Interval:       30,
		Streak:         4,
		TotalReviews:   10,
		CorrectReviews: 9,
	}

	updated := scheduler.ApplyReview(card, 1, now)

	assert.Equal(t, 1, updated.Difficulty)
	assert.Equal(t, 0, updated.Repetitions)
	assert.Equal(t, 1.0, updated.Interval)
	assert.Equal(t, 2.2, updated.EaseFactor)
	assert.Equal(t, 0, updated.Streak)
	assert.Equal(t, 11, updated.TotalReviews)
	assert.Equal(t, 9, updated.CorrectReviews)
}

func TestApplyReview_FractionalInterval(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	card := models.Flashcard{EaseFactor: 2.5, Repetitions: 2, Interval: 6.1}

	updated := scheduler.ApplyReview(card, 4, now)

	assert.Equal(t, 15.25, updated.Interval)
	assert.Equal(t, now.Add(time.Duration(15.25*float64(24*time.Hour))), *updated.NextReview)
}

func TestValidQuality(t *testing.T) {
	assert.True(t, scheduler.ValidQuality(0))
	assert.True(t, scheduler.ValidQuality(5))
	assert.False(t, scheduler.ValidQuality(-1))
	assert.False(t, scheduler.ValidQuality(6))
}

func TestIsStreakMilestone(t *testing.T) {
	assert.False(t, scheduler.IsStreakMilestone(0))
	assert.False(t, scheduler.IsStreakMilestone(4))
	assert.True(t, scheduler.IsStreakMilestone(5))
	assert.True(t, scheduler.IsStreakMilestone(10))
}

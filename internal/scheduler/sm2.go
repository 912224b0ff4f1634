package scheduler

import (
	"math"
	"time"

	"github.com/vytor/flashdeck/internal/models"
)

const (
	MinEaseFactor     = 1.3
	DefaultEaseFactor = 2.5

	MinQuality    = 0
	MaxQuality    = 5
	PassThreshold = 3

	day = 24 * time.Hour
)

// Result is the new schedule for a card after one review.
type Result struct {
	Interval    float64 `json:"interval"`
	Repetitions int     `json:"repetitions"`
	EaseFactor  float64 `json:"ease_factor"`
}

// ValidQuality reports whether q is inside the 0-5 rating scale.
func ValidQuality(q int) bool {
	return q >= MinQuality && q <= MaxQuality
}

// Passed reports whether a rating counts as a successful recall.
func Passed(quality int) bool {
	return quality >= PassThreshold
}

// Schedule computes the SM-2 interval, repetition count and ease factor.
// quality must be in [0, 5]; it is not checked here.
//
// A failed review resets repetitions and the interval to one day and leaves
// the ease factor untouched. Only passes move the ease factor.
func Schedule(quality, repetitions int, previousInterval, previousEaseFactor float64) Result {
	var interval, ef float64

	if Passed(quality) {
		switch repetitions {
		case 0:
			interval = 1
		case 1:
			interval = 6
		default:
			interval = roundTo2(previousInterval * previousEaseFactor)
		}
		repetitions++
		q := float64(5 - quality)
		ef = previousEaseFactor + (0.1 - q*(0.08+q*0.02))
	} else {
		interval = 1
		repetitions = 0
		ef = previousEaseFactor
	}

	if ef < MinEaseFactor {
		ef = MinEaseFactor
	}

	return Result{
		Interval:    interval,
		Repetitions: repetitions,
		EaseFactor:  ef,
	}
}

// ApplyReview returns card rescheduled for a review rated quality at now,
// with its lifetime counters updated. The input is not modified.
func ApplyReview(card models.Flashcard, quality int, now time.Time) models.Flashcard {
	res := Schedule(quality, card.Repetitions, card.Interval, card.EaseFactor)

	reviewed := now
	next := now.Add(time.Duration(res.Interval * float64(day)))

	card.Difficulty = quality
	card.Interval = res.Interval
	card.Repetitions = res.Repetitions
	card.EaseFactor = res.EaseFactor
	card.LastReviewed = &reviewed
	card.NextReview = &next

	card.TotalReviews++
	if Passed(quality) {
		card.CorrectReviews++
		card.Streak++
	} else {
		card.Streak = 0
	}
	return card
}

// IsStreakMilestone is true on every fifth consecutive correct review.
func IsStreakMilestone(streak int) bool {
	return streak > 0 && streak%5 == 0
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

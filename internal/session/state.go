package session

import (
	"slices"
	"time"

	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/scheduler"
)

// Status is the lifecycle position of a study session.
type Status int

const (
	Idle Status = iota
	Active
	Completed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// CardResult is one entry of the per-session rating log.
type CardResult struct {
	FlashcardID int64
	Quality     int
	TimeSpent   time.Duration
}

// State is the full in-memory state of one study run. Values are treated as
// immutable: Reduce always returns a new State and never writes through the
// slices of its input.
type State struct {
	DeckID int64
	Config Config

	Cards        []models.Flashcard
	CurrentIndex int

	StartTime      time.Time
	CardStartTime  time.Time
	CompletedCards int
	CorrectCount   int
	WrongCount     int
	CurrentStreak  int
	BestStreak     int

	ShowBack    bool
	CardResults []CardResult

	Status Status
}

func (s State) IsActive() bool    { return s.Status == Active }
func (s State) IsCompleted() bool { return s.Status == Completed }

// CurrentCard returns the card being studied, or false when the session is
// not active or the queue is exhausted.
func (s State) CurrentCard() (models.Flashcard, bool) {
	if !s.IsActive() || s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Cards) {
		return models.Flashcard{}, false
	}
	return s.Cards[s.CurrentIndex], true
}

// Accuracy is the percentage of completed cards rated as passes.
func (s State) Accuracy() float64 {
	if s.CompletedCards == 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(s.CompletedCards) * 100
}

// Progress is the percentage of the queue that has been rated.
func (s State) Progress() float64 {
	if len(s.Cards) == 0 {
		return 0
	}
	return float64(s.CompletedCards) / float64(len(s.Cards)) * 100
}

// ElapsedTime is the time since the session started.
func (s State) ElapsedTime(now time.Time) time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	return now.Sub(s.StartTime)
}

// Event is an input to Reduce.
type Event interface {
	isEvent()
}

// Start begins a session over an already built queue.
type Start struct {
	DeckID int64
	Cards  []models.Flashcard
	Config Config
	At     time.Time
}

// Flip toggles between the front and back of the current card.
type Flip struct{}

// Rate records a rating for the current card and advances.
type Rate struct {
	Quality int
	At      time.Time
}

// Next moves to the following card without recording a rating.
type Next struct {
	At time.Time
}

// Complete ends the session, whether or not cards remain.
type Complete struct{}

// Reset discards the session and returns to idle.
type Reset struct{}

func (Start) isEvent()    {}
func (Flip) isEvent()     {}
func (Rate) isEvent()     {}
func (Next) isEvent()     {}
func (Complete) isEvent() {}
func (Reset) isEvent()    {}

// Reduce applies ev to s and returns the resulting state. It has no side
// effects; events that do not apply to the current state return s as is.
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case Start:
		if len(e.Cards) == 0 {
			return s
		}
		return State{
			DeckID:        e.DeckID,
			Config:        e.Config,
			Cards:         slices.Clone(e.Cards),
			StartTime:     e.At,
			CardStartTime: e.At,
			Status:        Active,
		}

	case Flip:
		if _, ok := s.CurrentCard(); !ok {
			return s
		}
		s.ShowBack = !s.ShowBack
		return s

	case Rate:
		card, ok := s.CurrentCard()
		if !ok {
			return s
		}
		passed := scheduler.Passed(e.Quality)

		s.CardResults = append(slices.Clip(s.CardResults), CardResult{
			FlashcardID: card.ID,
			Quality:     e.Quality,
			TimeSpent:   e.At.Sub(s.CardStartTime),
		})
		s.CompletedCards++
		if passed {
			s.CorrectCount++
			s.CurrentStreak++
		} else {
			s.WrongCount++
			s.CurrentStreak = 0
		}
		s.BestStreak = max(s.BestStreak, s.CurrentStreak)
		return Reduce(s, Next{At: e.At})

	case Next:
		if _, ok := s.CurrentCard(); !ok {
			return s
		}
		if s.CurrentIndex >= len(s.Cards)-1 {
			return Reduce(s, Complete{})
		}
		s.CurrentIndex++
		s.ShowBack = false
		s.CardStartTime = e.At
		return s

	case Complete:
		if !s.IsActive() {
			return s
		}
		s.Status = Completed
		return s

	case Reset:
		return State{}
	}
	return s
}

// Summary converts s into the record stored once the session is over.
func (s State) Summary(id string, endedAt time.Time) models.StudySession {
	return models.StudySession{
		ID:             id,
		DeckID:         s.DeckID,
		StartedAt:      s.StartTime,
		EndedAt:        endedAt,
		TotalCards:     len(s.Cards),
		CompletedCards: s.CompletedCards,
		CorrectCount:   s.CorrectCount,
		WrongCount:     s.WrongCount,
		BestStreak:     s.BestStreak,
		Accuracy:       s.Accuracy(),
	}
}

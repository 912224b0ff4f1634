package models

import "time"

// StudySession is the persisted summary of a finished study run. The live
// session state itself is never stored.
type StudySession struct {
	ID             string    `json:"id"`
	DeckID         int64     `json:"deck_id"`
	StartedAt      time.Time `json:"started_at"`
	EndedAt        time.Time `json:"ended_at"`
	TotalCards     int       `json:"total_cards"`
	CompletedCards int       `json:"completed_cards"`
	CorrectCount   int       `json:"correct_count"`
	WrongCount     int       `json:"wrong_count"`
	BestStreak     int       `json:"best_streak"`
	Accuracy       float64   `json:"accuracy"`
}

type FlashcardFilter struct {
	DeckID  int64
	NewOnly bool
	DueAt   *time.Time
	OrderBy string
	Limit   int
	Offset  int
}

package models

import "time"

type Deck struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Flashcard is a single card owned by a deck. LastReviewed is nil until the
// card has been rated at least once; NextReview is nil when the card is due
// immediately.
type Flashcard struct {
	ID             int64      `json:"id"`
	DeckID         int64      `json:"deck_id"`
	Front          string     `json:"front"`
	Back           string     `json:"back"`
	Notes          string     `json:"notes,omitempty"`
	Difficulty     int        `json:"difficulty"`
	Repetitions    int        `json:"repetitions"`
	Interval       float64    `json:"interval"`
	EaseFactor     float64    `json:"ease_factor"`
	LastReviewed   *time.Time `json:"last_reviewed"`
	NextReview     *time.Time `json:"next_review"`
	Streak         int        `json:"streak"`
	TotalReviews   int        `json:"total_reviews"`
	CorrectReviews int        `json:"correct_reviews"`
	CreatedAt      time.Time  `json:"created_at"`
}

type ReviewHistory struct {
	ID          int64     `json:"id"`
	FlashcardID int64     `json:"flashcard_id"`
	Quality     int       `json:"quality"`
	TimeSeconds float64   `json:"time_seconds"`
	ReviewedAt  time.Time `json:"reviewed_at"`
}

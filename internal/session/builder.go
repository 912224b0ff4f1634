package session

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/vytor/flashdeck/internal/models"
)

// IsDue reports whether card should be reviewed at now. Cards without a
// scheduled review are always due.
func IsDue(card models.Flashcard, now time.Time) bool {
	if card.NextReview == nil {
		return true
	}
	return !card.NextReview.After(now)
}

// IsNew reports whether card has never been reviewed.
func IsNew(card models.Flashcard) bool {
	return card.LastReviewed == nil
}

// FilterDue returns the cards that are due at now, in their original order.
func FilterDue(cards []models.Flashcard, now time.Time) []models.Flashcard {
	out := make([]models.Flashcard, 0, len(cards))
	for _, c := range cards {
		if IsDue(c, now) {
			out = append(out, c)
		}
	}
	return out
}

// FilterNew returns the never-reviewed cards, truncated to limit when limit > 0.
func FilterNew(cards []models.Flashcard, limit int) []models.Flashcard {
	out := make([]models.Flashcard, 0, len(cards))
	for _, c := range cards {
		if IsNew(c) {
			out = append(out, c)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SortByDueDateOrder returns cards ordered by next review, most overdue
// first. Cards with no scheduled review come before all others.
func SortByDueDateOrder(cards []models.Flashcard) []models.Flashcard {
	out := slices.Clone(cards)
	slices.SortStableFunc(out, func(a, b models.Flashcard) int {
		switch {
		case a.NextReview == nil && b.NextReview == nil:
			return 0
		case a.NextReview == nil:
			return -1
		case b.NextReview == nil:
			return 1
		}
		return a.NextReview.Compare(*b.NextReview)
	})
	return out
}

// SortByDifficultyOrder returns cards ordered by ascending ease factor, so
// the hardest cards come first.
func SortByDifficultyOrder(cards []models.Flashcard) []models.Flashcard {
	out := slices.Clone(cards)
	slices.SortStableFunc(out, func(a, b models.Flashcard) int {
		switch {
		case a.EaseFactor < b.EaseFactor:
			return -1
		case a.EaseFactor > b.EaseFactor:
			return 1
		}
		return 0
	})
	return out
}

// Shuffle returns a uniformly random permutation of cards (Fisher-Yates).
func Shuffle(cards []models.Flashcard, r *rand.Rand) []models.Flashcard {
	out := slices.Clone(cards)
	for i := len(out) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Builder turns a deck's cards into an ordered study queue.
type Builder struct {
	Now  func() time.Time
	Rand *rand.Rand
}

// NewBuilder returns a Builder using the wall clock and a randomly seeded
// generator.
func NewBuilder() *Builder {
	return &Builder{
		Now:  time.Now,
		Rand: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Build applies cfg to cards. The stages run in a fixed order: due filter,
// new-card cap (new cards placed first), sort or shuffle, total cap.
// cards is left untouched; an empty result is not an error.
func (b *Builder) Build(cards []models.Flashcard, cfg Config) []models.Flashcard {
	out := slices.Clone(cards)

	if cfg.DueOnly {
		out = FilterDue(out, b.now())
	}

	fresh := FilterNew(out, cfg.MaxNewCards)
	review := make([]models.Flashcard, 0, len(out))
	for _, c := range out {
		if !IsNew(c) {
			review = append(review, c)
		}
	}
	out = append(fresh, review...)

	switch {
	case cfg.SortBy == SortByDueDate:
		out = SortByDueDateOrder(out)
	case cfg.SortBy == SortByDifficulty:
		out = SortByDifficultyOrder(out)
	case cfg.SortBy == SortByRandom || cfg.Shuffled:
		out = Shuffle(out, b.rng())
	}

	if cfg.MaxCards > 0 && len(out) > cfg.MaxCards {
		out = out[:cfg.MaxCards]
	}
	return out
}

func (b *Builder) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

func (b *Builder) rng() *rand.Rand {
	if b.Rand == nil {
		b.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return b.Rand
}

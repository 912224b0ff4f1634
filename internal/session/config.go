package session

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// SortBy selects the ordering stage of the session pipeline.
type SortBy string

const (
	SortNone         SortBy = ""
	SortByDueDate    SortBy = "dueDate"
	SortByDifficulty SortBy = "difficulty"
	SortByRandom     SortBy = "random"
)

// Config controls which cards end up in a study session and in which order.
// Zero values mean "no limit", "no filter" and "stable order".
type Config struct {
	MaxCards    int    `json:"max_cards,omitempty" validate:"gte=0"`
	MaxNewCards int    `json:"max_new_cards,omitempty" validate:"gte=0"`
	DueOnly     bool   `json:"due_only,omitempty"`
	Shuffled    bool   `json:"shuffled,omitempty"`
	SortBy      SortBy `json:"sort_by,omitempty" validate:"omitempty,oneof=dueDate difficulty random"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate rejects negative limits and unknown sort orders.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid session config: %s failed %q", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("invalid session config: %w", err)
	}
	return nil
}

// WithDefaults fills unset limits from def.
func (c Config) WithDefaults(def Config) Config {
	if c.MaxCards == 0 {
		c.MaxCards = def.MaxCards
	}
	if c.MaxNewCards == 0 {
		c.MaxNewCards = def.MaxNewCards
	}
	return c
}

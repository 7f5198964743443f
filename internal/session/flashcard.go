package session

import (
	"time"

	"github.com/renshu-app/renshu/internal/domain"
)

// Flashcard is the session-scoped view of one item being studied. It is
// created when a session starts and discarded when the session ends;
// nothing here is persisted.
type Flashcard struct {
	Item        domain.Item
	Flipped     bool
	Rating      *domain.Quality
	TypedAnswer string
	IsCorrect   *bool // Set by typed-answer checking in reverse mode
}

// answered reports whether a typed answer has been checked for this card.
func (c *Flashcard) answered() bool {
	return c.IsCorrect != nil
}

// rated reports whether the card has already received a rating.
func (c *Flashcard) rated() bool {
	return c.Rating != nil
}

// Stats aggregates counters for one session. They are reset when the
// session starts and frozen when it ends.
type Stats struct {
	CardsReviewed  int       `json:"cards_reviewed"`
	CorrectCount   int       `json:"correct_count"`
	IncorrectCount int       `json:"incorrect_count"`
	RatingCounts   [6]int    `json:"rating_counts"` // Indexed by quality 0-5
	StartedAt      time.Time `json:"started_at"`
	EndedAt        time.Time `json:"ended_at"`
}

// Summary is the final result of a session: the frozen stats plus the
// reviews emitted at session end. Reviews is nil when the session's
// reviews were already emitted by an earlier End call.
type Summary struct {
	Stats   Stats
	Reviews []domain.ReviewInput
}

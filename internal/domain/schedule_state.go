package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Schedule-state validation errors.
var (
	ErrEmptyStateUserID  = errors.New("schedule state user ID cannot be empty")
	ErrInvalidInterval   = errors.New("interval must be greater than or equal to 0")
	ErrInvalidEaseFactor = errors.New("ease factor must be at least 1.3")
)

// Scheduling defaults shared by the domain and the SRS algorithm.
const (
	// DefaultEaseFactor is the ease factor assigned to an item on its
	// first review.
	DefaultEaseFactor = 2.5

	// MinEaseFactor is the floor below which the ease factor never drops,
	// regardless of how badly an item is failed.
	MinEaseFactor = 1.3
)

// ScheduleState tracks a user's spaced-repetition scheduling state for a
// single vocabulary item. It is created on the item's first review and
// mutated only by the SRS scheduler (which returns fresh copies rather
// than writing in place).
type ScheduleState struct {
	UserID         uuid.UUID `json:"user_id"`
	ItemID         string    `json:"item_id"`
	EaseFactor     float64   `json:"ease_factor"`      // >= 1.3, starts at 2.5
	IntervalDays   int       `json:"interval_days"`    // Current interval in days
	Repetitions    int       `json:"repetitions"`      // Consecutive successful reviews
	LastQuality    *Quality  `json:"last_quality,omitempty"`
	LastReviewedAt time.Time `json:"last_reviewed_at"`
	NextReviewAt   time.Time `json:"next_review_at"`
	FirstLearnedAt time.Time `json:"first_learned_at"` // Immutable once set
	TotalReviews   int       `json:"total_reviews"`    // Monotonic counter
	CorrectCount   int       `json:"correct_count"`    // Reviews with quality >= 3
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewScheduleState creates the initial scheduling state for a user and
// item. The item is due immediately.
func NewScheduleState(userID uuid.UUID, itemID string, now time.Time) (*ScheduleState, error) {
	state := &ScheduleState{
		UserID:         userID,
		ItemID:         itemID,
		EaseFactor:     DefaultEaseFactor,
		IntervalDays:   0,
		Repetitions:    0,
		NextReviewAt:   now,
		FirstLearnedAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}

	return state, nil
}

// Validate checks if the ScheduleState has valid data.
// Returns an error if any field fails validation.
func (s *ScheduleState) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrEmptyStateUserID
	}

	if s.ItemID == "" {
		return ErrEmptyItemID
	}

	if s.IntervalDays < 0 {
		return ErrInvalidInterval
	}

	if s.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}

	if s.LastQuality != nil && !s.LastQuality.IsValid() {
		return ErrInvalidQuality
	}

	return nil
}

// IsDue reports whether the item's next review time has passed.
func (s *ScheduleState) IsDue(now time.Time) bool {
	return !s.NextReviewAt.After(now)
}

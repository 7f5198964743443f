package srs

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/renshu-app/renshu/internal/domain"
)

// Common errors
var (
	ErrNilState    = errors.New("schedule state cannot be nil")
	ErrInvalidDays = errors.New("postpone days must be at least 1")
)

// Service defines the interface for SRS algorithm operations.
type Service interface {
	// Schedule computes the scheduling state that results from reviewing
	// an item with the given quality at the given time. A nil state means
	// the item is being reviewed for the first time; userID and itemID
	// identify the new state in that case and are ignored otherwise.
	Schedule(
		state *domain.ScheduleState,
		userID uuid.UUID,
		itemID string,
		quality domain.Quality,
		now time.Time,
	) (*domain.ScheduleState, error)

	// Postpone pushes the next review time forward by a number of days.
	Postpone(
		state *domain.ScheduleState,
		days int,
		now time.Time,
	) (*domain.ScheduleState, error)

	// Reset reinitializes all scheduling fields for an item, as if it had
	// never been reviewed.
	Reset(
		state *domain.ScheduleState,
		now time.Time,
	) (*domain.ScheduleState, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// Schedule implements the Service interface. It is a pure function of its
// inputs: no I/O, no hidden state, and the input state is never mutated.
func (s *defaultService) Schedule(
	state *domain.ScheduleState,
	userID uuid.UUID,
	itemID string,
	quality domain.Quality,
	now time.Time,
) (*domain.ScheduleState, error) {
	if !quality.IsValid() {
		return nil, domain.ErrInvalidQuality
	}

	if state != nil {
		userID = state.UserID
		itemID = state.ItemID
	}

	return calculateNextStats(state, userID, itemID, quality, now, s.params), nil
}

// Postpone implements the Service interface for postponing reviews.
func (s *defaultService) Postpone(
	state *domain.ScheduleState,
	days int,
	now time.Time,
) (*domain.ScheduleState, error) {
	if state == nil {
		return nil, ErrNilState
	}

	if days < 1 {
		return nil, ErrInvalidDays
	}

	newState := *state
	newState.NextReviewAt = state.NextReviewAt.Add(time.Duration(days) * s.params.DayLength)
	newState.UpdatedAt = now

	return &newState, nil
}

// Reset implements the Service interface for explicit resets.
func (s *defaultService) Reset(
	state *domain.ScheduleState,
	now time.Time,
) (*domain.ScheduleState, error) {
	if state == nil {
		return nil, ErrNilState
	}

	fresh, err := domain.NewScheduleState(state.UserID, state.ItemID, now)
	if err != nil {
		return nil, err
	}
	fresh.CreatedAt = state.CreatedAt

	return fresh, nil
}

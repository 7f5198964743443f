package srs

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/renshu-app/renshu/internal/domain"
)

// calculateNewEaseFactor determines the new ease factor after a review.
//
// The ease factor represents the item's difficulty - higher values mean the
// item is easier and intervals will grow faster. The standard SM-2 adjustment
// is applied for every review:
//
//	EF' = EF + (0.1 - (5-q) * (0.08 + (5-q) * 0.02))
//
// The adjustment is zero or negative for any quality below 5, so a failed
// recall can only lower the ease factor, never raise it. The result is
// clamped to params.MinEaseFactor; there is no upper bound.
func calculateNewEaseFactor(
	currentEF float64,
	quality domain.Quality,
	params *Params,
) float64 {
	q := float64(quality)
	newEF := currentEF + (0.1 - (5-q)*(0.08+(5-q)*0.02))

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the new interval in days.
//
// A failed recall (quality < 3) resets the progression to params.LapseInterval.
// Successful recalls follow the SM-2 step sequence: the first repetition gets
// params.FirstInterval, the second params.SecondInterval, and every later one
// multiplies the previous interval by the updated ease factor, rounded to the
// nearest whole day.
//
// newRepetitions must already reflect the review being applied (i.e. 0 after
// a lapse, previous+1 after a success).
func calculateNewInterval(
	previousInterval int,
	newRepetitions int,
	newEaseFactor float64,
	quality domain.Quality,
	params *Params,
) int {
	if !quality.IsCorrect() {
		return params.LapseInterval
	}

	switch newRepetitions {
	case 1:
		return params.FirstInterval
	case 2:
		return params.SecondInterval
	default:
		return int(math.Round(float64(previousInterval) * newEaseFactor))
	}
}

// calculateNextStats applies a review outcome to a schedule state and
// returns the resulting state, never modifying the input.
//
// When state is nil the item is being reviewed for the first time and a
// fresh state is initialized before the review is applied: ease factor
// params.InitialEaseFactor, zero repetitions and interval, FirstLearnedAt
// set to now.
//
// The next review time is now plus the new interval in fixed-length days.
func calculateNextStats(
	state *domain.ScheduleState,
	userID uuid.UUID,
	itemID string,
	quality domain.Quality,
	now time.Time,
	params *Params,
) *domain.ScheduleState {
	var newState *domain.ScheduleState
	if state == nil {
		newState = &domain.ScheduleState{
			UserID:         userID,
			ItemID:         itemID,
			EaseFactor:     params.InitialEaseFactor,
			FirstLearnedAt: now,
			CreatedAt:      now,
		}
	} else {
		copied := *state
		newState = &copied
	}

	newState.EaseFactor = calculateNewEaseFactor(newState.EaseFactor, quality, params)

	if quality.IsCorrect() {
		newState.Repetitions++
		newState.CorrectCount++
	} else {
		newState.Repetitions = 0
	}

	previousInterval := 0
	if state != nil {
		previousInterval = state.IntervalDays
	}
	newState.IntervalDays = calculateNewInterval(
		previousInterval,
		newState.Repetitions,
		newState.EaseFactor,
		quality,
		params,
	)

	lastQuality := quality
	newState.LastQuality = &lastQuality
	newState.TotalReviews++
	newState.LastReviewedAt = now
	newState.NextReviewAt = now.Add(time.Duration(newState.IntervalDays) * params.DayLength)
	newState.UpdatedAt = now

	return newState
}

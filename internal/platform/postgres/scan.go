package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/renshu-app/renshu/internal/domain"
)

// scanDueRow reads one row of the due-items join. The schedule columns
// are all NULL when the user has never reviewed the item, in which case
// the returned state is nil.
func scanDueRow(rows pgx.Rows) (domain.Item, *domain.ScheduleState, error) {
	var (
		item           domain.Item
		stateUserID    *uuid.UUID
		easeFactor     *float64
		intervalDays   *int
		repetitions    *int
		lastQuality    *domain.Quality
		lastReviewedAt *time.Time
		nextReviewAt   *time.Time
		firstLearnedAt *time.Time
		totalReviews   *int
		correctCount   *int
		createdAt      *time.Time
		updatedAt      *time.Time
	)

	err := rows.Scan(
		&item.ID,
		&item.Word,
		&item.Reading,
		&item.AltForm,
		&item.Romaji,
		&item.Meaning,
		&stateUserID,
		&easeFactor,
		&intervalDays,
		&repetitions,
		&lastQuality,
		&lastReviewedAt,
		&nextReviewAt,
		&firstLearnedAt,
		&totalReviews,
		&correctCount,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Item{}, nil, err
	}

	if stateUserID == nil {
		return item, nil, nil
	}

	state := &domain.ScheduleState{
		UserID:         *stateUserID,
		ItemID:         item.ID,
		EaseFactor:     *easeFactor,
		IntervalDays:   *intervalDays,
		Repetitions:    *repetitions,
		LastQuality:    lastQuality,
		LastReviewedAt: *lastReviewedAt,
		NextReviewAt:   *nextReviewAt,
		FirstLearnedAt: *firstLearnedAt,
		TotalReviews:   *totalReviews,
		CorrectCount:   *correctCount,
		CreatedAt:      *createdAt,
		UpdatedAt:      *updatedAt,
	}

	return item, state, nil
}

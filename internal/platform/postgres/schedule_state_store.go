package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/renshu-app/renshu/internal/domain"
	"github.com/renshu-app/renshu/internal/store"
)

// ScheduleStateStore implements the store.ScheduleStateStore interface
// using a PostgreSQL database as the storage backend.
type ScheduleStateStore struct {
	db     DBTX
	logger *slog.Logger
}

// NewScheduleStateStore creates a new PostgreSQL implementation of the
// ScheduleStateStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewScheduleStateStore(db DBTX, logger *slog.Logger) *ScheduleStateStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil for ScheduleStateStore")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ScheduleStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "schedule_state_store")),
	}
}

// Ensure ScheduleStateStore implements store.ScheduleStateStore interface
var _ store.ScheduleStateStore = (*ScheduleStateStore)(nil)

// Get implements store.ScheduleStateStore.Get.
// Returns store.ErrScheduleStateNotFound if the item has never been reviewed.
func (s *ScheduleStateStore) Get(
	ctx context.Context,
	userID uuid.UUID,
	itemID string,
) (*domain.ScheduleState, error) {
	var state domain.ScheduleState
	err := s.db.QueryRow(ctx, `
		SELECT user_id, item_id, ease_factor, interval_days, repetitions,
		       last_quality, last_reviewed_at, next_review_at,
		       first_learned_at, total_reviews, correct_count,
		       created_at, updated_at
		FROM schedule_states
		WHERE user_id = $1 AND item_id = $2
	`, userID, itemID).Scan(
		&state.UserID,
		&state.ItemID,
		&state.EaseFactor,
		&state.IntervalDays,
		&state.Repetitions,
		&state.LastQuality,
		&state.LastReviewedAt,
		&state.NextReviewAt,
		&state.FirstLearnedAt,
		&state.TotalReviews,
		&state.CorrectCount,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrScheduleStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule state: %w", err)
	}

	return &state, nil
}

// Upsert implements store.ScheduleStateStore.Upsert.
// The state must pass domain validation before being written.
func (s *ScheduleStateStore) Upsert(ctx context.Context, state *domain.ScheduleState) error {
	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO schedule_states (
			user_id, item_id, ease_factor, interval_days, repetitions,
			last_quality, last_reviewed_at, next_review_at,
			first_learned_at, total_reviews, correct_count,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id, item_id) DO UPDATE SET
			ease_factor      = EXCLUDED.ease_factor,
			interval_days    = EXCLUDED.interval_days,
			repetitions      = EXCLUDED.repetitions,
			last_quality     = EXCLUDED.last_quality,
			last_reviewed_at = EXCLUDED.last_reviewed_at,
			next_review_at   = EXCLUDED.next_review_at,
			total_reviews    = EXCLUDED.total_reviews,
			correct_count    = EXCLUDED.correct_count,
			updated_at       = EXCLUDED.updated_at
	`,
		state.UserID,
		state.ItemID,
		state.EaseFactor,
		state.IntervalDays,
		state.Repetitions,
		state.LastQuality,
		state.LastReviewedAt,
		state.NextReviewAt,
		state.FirstLearnedAt,
		state.TotalReviews,
		state.CorrectCount,
		state.CreatedAt,
		state.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert schedule state: %w", err)
	}

	return nil
}

// Delete implements store.ScheduleStateStore.Delete.
// Returns store.ErrScheduleStateNotFound if no state exists.
func (s *ScheduleStateStore) Delete(ctx context.Context, userID uuid.UUID, itemID string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM schedule_states WHERE user_id = $1 AND item_id = $2
	`, userID, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete schedule state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrScheduleStateNotFound
	}

	return nil
}

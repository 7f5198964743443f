package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/renshu-app/renshu/internal/store"
)

// DueItemsStore implements the store.DueItemsProvider interface: it
// returns the items a user should study now, soonest-due first, with
// never-reviewed items after them.
type DueItemsStore struct {
	db     DBTX
	logger *slog.Logger
}

// NewDueItemsStore creates a new PostgreSQL due-items provider.
func NewDueItemsStore(db DBTX, logger *slog.Logger) *DueItemsStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil for DueItemsStore")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DueItemsStore{
		db:     db,
		logger: logger.With(slog.String("component", "due_items_store")),
	}
}

// Ensure DueItemsStore implements store.DueItemsProvider interface
var _ store.DueItemsProvider = (*DueItemsStore)(nil)

// ListDue implements store.DueItemsProvider.ListDue.
func (s *DueItemsStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]store.DueItem, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(ctx, `
		SELECT i.id, i.word, i.reading, i.alt_form, i.romaji, i.meaning,
		       s.user_id, s.ease_factor, s.interval_days, s.repetitions,
		       s.last_quality, s.last_reviewed_at, s.next_review_at,
		       s.first_learned_at, s.total_reviews, s.correct_count,
		       s.created_at, s.updated_at
		FROM items i
		LEFT JOIN schedule_states s
		       ON s.item_id = i.id AND s.user_id = $1
		WHERE s.user_id IS NULL OR s.next_review_at <= $2
		ORDER BY s.next_review_at ASC NULLS LAST, i.id
		LIMIT $3
	`, userID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due items: %w", err)
	}
	defer rows.Close()

	var due []store.DueItem
	for rows.Next() {
		item, state, err := scanDueRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan due item: %w", err)
		}
		due = append(due, store.DueItem{Item: item, State: state})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read due items: %w", err)
	}

	s.logger.Debug("listed due items",
		"user_id", userID.String(),
		"count", len(due))

	return due, nil
}

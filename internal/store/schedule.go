package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/renshu-app/renshu/internal/domain"
)

// ScheduleStateStore persists per-user, per-item scheduling state.
// States are created on an item's first review and only ever written with
// values produced by the SRS scheduler.
type ScheduleStateStore interface {
	// Get retrieves the scheduling state for a user and item.
	// Returns ErrScheduleStateNotFound if the item has never been reviewed.
	Get(ctx context.Context, userID uuid.UUID, itemID string) (*domain.ScheduleState, error)

	// Upsert creates or replaces the scheduling state for its user and
	// item pair. The state must pass domain validation.
	Upsert(ctx context.Context, state *domain.ScheduleState) error

	// Delete removes the scheduling state for a user and item.
	// Returns ErrScheduleStateNotFound if no state exists.
	Delete(ctx context.Context, userID uuid.UUID, itemID string) error
}

// DueItem pairs a vocabulary item with the user's scheduling state for
// it. State is nil for items the user has never reviewed.
type DueItem struct {
	Item  domain.Item
	State *domain.ScheduleState
}

// DueItemsProvider supplies the ordered list of items due for review,
// used to seed a study session. Ordering and filtering policy belongs to
// the provider, not to the session engine.
type DueItemsProvider interface {
	// ListDue returns up to limit items whose next review time has
	// passed, soonest-due first, followed by never-reviewed items.
	ListDue(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]DueItem, error)
}

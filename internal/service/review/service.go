// Package review provides the application service tying the session
// output to the scheduler and the submission pipeline: it applies each
// rating to the user's scheduling state and hands the batch to the
// submission queue for durable delivery.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/renshu-app/renshu/internal/domain"
	"github.com/renshu-app/renshu/internal/domain/srs"
	"github.com/renshu-app/renshu/internal/store"
	"github.com/renshu-app/renshu/internal/submission"
)

// Service orchestrates review processing.
type Service interface {
	// SubmitReviews applies each rating to the user's scheduling state
	// and delivers the batch to the remote review store, falling back to
	// the offline queue on transient failure. The returned outcome tells
	// the caller whether delivery was complete or degraded to offline.
	SubmitReviews(
		ctx context.Context,
		userID uuid.UUID,
		reviews []domain.ReviewInput,
	) (submission.Outcome, error)

	// Flush retries whatever sits in the offline queue, without new
	// reviews. Used at startup and periodically in the background.
	Flush(ctx context.Context) (submission.Outcome, error)

	// DueItems returns the items the user should study now, paired with
	// their scheduling state.
	DueItems(
		ctx context.Context,
		userID uuid.UUID,
		now time.Time,
		limit int,
	) ([]store.DueItem, error)
}

type service struct {
	scheduler srs.Service
	states    store.ScheduleStateStore
	due       store.DueItemsProvider
	queue     *submission.Queue
	logger    *slog.Logger
	nowFn     func() time.Time
}

// NewService creates the review service.
func NewService(
	scheduler srs.Service,
	states store.ScheduleStateStore,
	due store.DueItemsProvider,
	queue *submission.Queue,
	logger *slog.Logger,
) Service {
	if scheduler == nil || states == nil || due == nil || queue == nil {
		// ALLOW-PANIC: Constructor enforcing required dependencies
		panic("review service requires scheduler, stores, and queue")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &service{
		scheduler: scheduler,
		states:    states,
		due:       due,
		queue:     queue,
		logger:    logger.With(slog.String("component", "review_service")),
		nowFn:     time.Now,
	}
}

// SubmitReviews implements Service.SubmitReviews.
//
// Scheduling-state updates are local bookkeeping: a failure there is
// logged and does not block delivery, since the remote store is the
// durable source of truth and the schedule converges on later reviews.
func (s *service) SubmitReviews(
	ctx context.Context,
	userID uuid.UUID,
	reviews []domain.ReviewInput,
) (submission.Outcome, error) {
	for _, review := range reviews {
		if err := review.Validate(); err != nil {
			return submission.Outcome{}, fmt.Errorf("invalid review for %q: %w", review.ItemID, err)
		}
	}

	now := s.nowFn().UTC()
	for _, review := range reviews {
		if err := s.applyToSchedule(ctx, userID, review, now); err != nil {
			s.logger.Warn("failed to update schedule state",
				"item_id", review.ItemID,
				"error", err)
		}
	}

	return s.queue.Submit(ctx, reviews)
}

// Flush implements Service.Flush.
func (s *service) Flush(ctx context.Context) (submission.Outcome, error) {
	return s.queue.Submit(ctx, nil)
}

// DueItems implements Service.DueItems.
func (s *service) DueItems(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]store.DueItem, error) {
	return s.due.ListDue(ctx, userID, now, limit)
}

// applyToSchedule runs one rating through the SRS scheduler and persists
// the resulting state. A missing state means this is the item's first
// review.
func (s *service) applyToSchedule(
	ctx context.Context,
	userID uuid.UUID,
	review domain.ReviewInput,
	now time.Time,
) error {
	current, err := s.states.Get(ctx, userID, review.ItemID)
	if err != nil && !errors.Is(err, store.ErrScheduleStateNotFound) {
		return fmt.Errorf("load schedule state: %w", err)
	}

	next, err := s.scheduler.Schedule(current, userID, review.ItemID, review.Quality, now)
	if err != nil {
		return fmt.Errorf("schedule review: %w", err)
	}

	if err := s.states.Upsert(ctx, next); err != nil {
		return fmt.Errorf("persist schedule state: %w", err)
	}

	return nil
}

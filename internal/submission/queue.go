package submission

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/renshu-app/renshu/internal/domain"
	"github.com/renshu-app/renshu/internal/offline"
	"github.com/renshu-app/renshu/internal/store"
)

// ChunkSender delivers one chunk of reviews to the remote review store.
// Any error, including a timeout, means the whole chunk is unacknowledged.
type ChunkSender interface {
	SendChunk(ctx context.Context, reviews []domain.ReviewInput) error
}

// PendingStore is the durable backlog the queue falls back to. It is
// satisfied by *offline.Store.
type PendingStore interface {
	Load(ctx context.Context) (offline.LoadResult, error)
	Save(ctx context.Context, reviews []domain.ReviewInput) error
	Clear(ctx context.Context) error
}

// Config holds the submission policy knobs. Chunk size and timeout are
// operational policy, not architectural constants.
type Config struct {
	// ChunkSize is the number of reviews per network batch.
	ChunkSize int

	// ChunkTimeout bounds each chunk submission. A timeout is treated
	// identically to a network failure.
	ChunkTimeout time.Duration
}

// DefaultConfig returns the standard submission policy.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    100,
		ChunkTimeout: 30 * time.Second,
	}
}

// Outcome reports what happened to a submission. Deferred reviews were
// persisted to the offline queue (or at least attempted) rather than
// delivered; they are not an error from the caller's point of view.
type Outcome struct {
	// Delivered is the number of reviews acknowledged by the remote store.
	Delivered int

	// Deferred is the number of reviews saved for a later retry.
	Deferred int

	// Cause is the transient failure that stopped delivery, nil on full
	// success.
	Cause error
}

// FullyDelivered reports whether every review reached the remote store.
func (o Outcome) FullyDelivered() bool { return o.Deferred == 0 }

// Queue merges, chunks, and sequentially submits review outcomes,
// persisting the unacknowledged remainder on failure.
//
// A single submission is in flight at a time: Submit holds an internal
// mutex for its whole duration so concurrent callers cannot interleave
// lost updates to the offline queue.
type Queue struct {
	sender  ChunkSender
	pending PendingStore
	config  Config
	logger  *slog.Logger
	mu      sync.Mutex
}

// NewQueue creates a submission queue. Zero config fields fall back to
// DefaultConfig values.
func NewQueue(sender ChunkSender, pending PendingStore, config Config, logger *slog.Logger) *Queue {
	if sender == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("sender cannot be nil for submission.Queue")
	}
	if pending == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("pending store cannot be nil for submission.Queue")
	}
	if logger == nil {
		logger = slog.Default()
	}

	defaults := DefaultConfig()
	if config.ChunkSize <= 0 {
		config.ChunkSize = defaults.ChunkSize
	}
	if config.ChunkTimeout <= 0 {
		config.ChunkTimeout = defaults.ChunkTimeout
	}

	return &Queue{
		sender:  sender,
		pending: pending,
		config:  config,
		logger:  logger.With(slog.String("component", "submission_queue")),
	}
}

// Submit merges reviews with the offline backlog and delivers the result
// in order. On the first failed chunk it stops, persists exactly the
// unacknowledged remainder, and reports the outcome; on full success the
// offline queue is cleared. Transient delivery failures are absorbed into
// the outcome; only storage failures that leave reviews without
// durability are returned as errors.
func (q *Queue) Submit(ctx context.Context, reviews []domain.ReviewInput) (Outcome, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	merged, err := q.mergeWithPending(ctx, reviews)
	if err != nil {
		return Outcome{}, err
	}
	if len(merged) == 0 {
		return Outcome{}, nil
	}

	successCount := 0
	var sendErr error
	for _, chunk := range Chunk(merged, q.config.ChunkSize) {
		if err := ctx.Err(); err != nil {
			sendErr = err
			break
		}

		chunkCtx, cancel := context.WithTimeout(ctx, q.config.ChunkTimeout)
		err := q.sender.SendChunk(chunkCtx, chunk)
		cancel()
		if err != nil {
			sendErr = err
			break
		}
		successCount += len(chunk)
	}

	if sendErr == nil {
		if err := q.pending.Clear(ctx); err != nil {
			q.logger.Warn("failed to clear delivered offline queue", "error", err)
		}
		q.logger.Debug("all review chunks delivered", "count", successCount)
		return Outcome{Delivered: successCount}, nil
	}

	// Persist only the unacknowledged slice: re-sending acknowledged
	// chunks would double-count ratings server-side.
	remaining := merged[successCount:]
	outcome := Outcome{Delivered: successCount, Deferred: len(remaining), Cause: sendErr}

	q.logger.Info("review delivery interrupted, saving remainder for later",
		"delivered", successCount,
		"deferred", len(remaining),
		"error", sendErr)

	// Best-effort even when the caller's context is already cancelled.
	persistCtx := context.WithoutCancel(ctx)
	if err := q.pending.Save(persistCtx, remaining); err != nil {
		if store.IsQuotaError(err) {
			q.logger.Warn("offline queue quota exhausted, reviews not persisted",
				"deferred", len(remaining))
		} else {
			q.logger.Error("failed to persist undelivered reviews", "error", err)
		}
		return outcome, fmt.Errorf("persist undelivered reviews: %w", err)
	}

	return outcome, nil
}

// mergeWithPending loads the offline backlog and merges it under the new
// reviews. Storage trouble degrades to submitting only the new reviews.
func (q *Queue) mergeWithPending(ctx context.Context, reviews []domain.ReviewInput) ([]domain.ReviewInput, error) {
	result, err := q.pending.Load(ctx)
	if err != nil {
		q.logger.Warn("offline queue unreadable, submitting without backlog", "error", err)
		return Merge(nil, reviews), nil
	}
	if result.HadErrors {
		q.logger.Warn("offline queue was partially corrupt",
			"recovered", len(result.Reviews))
	}

	return Merge(result.Reviews, reviews), nil
}

// Package offline persists the pending-review queue: ratings that could
// not be delivered to the remote review store and must survive process
// restarts. The queue lives in a single slot of a durable key-value
// store and validates and repairs its own contents on load.
package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/renshu-app/renshu/internal/domain"
	"github.com/renshu-app/renshu/internal/store"
)

// DefaultSlotKey is the key under which the pending queue is persisted.
const DefaultSlotKey = "pending_reviews"

// Store is the durable offline queue of undelivered reviews.
type Store struct {
	kv       store.KV
	key      string
	maxBytes int64
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithSlotKey overrides the storage key for the pending queue.
func WithSlotKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithMaxBytes caps the serialized queue size. Saves above the cap fail
// with store.ErrQuotaExceeded. Zero means no cap beyond what the
// underlying medium enforces.
func WithMaxBytes(n int64) Option {
	return func(s *Store) { s.maxBytes = n }
}

// NewStore creates an offline queue backed by the given key-value slot.
func NewStore(kv store.KV, logger *slog.Logger, opts ...Option) *Store {
	if kv == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("kv cannot be nil for offline.Store")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		kv:     kv,
		key:    DefaultSlotKey,
		logger: logger.With(slog.String("component", "offline_store")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadResult is the outcome of reading the pending queue.
type LoadResult struct {
	// Reviews holds every structurally valid pending review, in their
	// persisted order.
	Reviews []domain.ReviewInput

	// HadErrors is true when the persisted payload was corrupt or when
	// any element had to be dropped during validation.
	HadErrors bool
}

// rawReview mirrors the persisted element shape loosely so that
// individually malformed entries can be dropped without losing the rest.
type rawReview struct {
	ItemID  string   `json:"item_id"`
	Quality *float64 `json:"quality"`
}

// Load reads and validates the pending queue. A corrupt root yields an
// empty result with HadErrors set; the stored data is left in place so
// the caller decides whether to overwrite it. Invalid elements are
// dropped individually, valid ones kept.
func (s *Store) Load(ctx context.Context) (LoadResult, error) {
	payload, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return LoadResult{}, fmt.Errorf("read pending reviews: %w", err)
	}
	if !ok || len(payload) == 0 {
		return LoadResult{}, nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(payload, &elements); err != nil {
		s.logger.Warn("pending review queue is corrupt, treating as empty",
			"error", err,
			"payload_bytes", len(payload))
		return LoadResult{HadErrors: true}, nil
	}

	result := LoadResult{Reviews: make([]domain.ReviewInput, 0, len(elements))}
	for _, element := range elements {
		review, ok := decodeReview(element)
		if !ok {
			result.HadErrors = true
			continue
		}
		result.Reviews = append(result.Reviews, review)
	}

	if result.HadErrors {
		s.logger.Warn("dropped invalid pending review entries",
			"kept", len(result.Reviews),
			"total", len(elements))
	}

	return result, nil
}

// decodeReview validates one persisted element: item_id must be a
// non-empty string and quality an integer-valued number on the 0-5 scale.
func decodeReview(element json.RawMessage) (domain.ReviewInput, bool) {
	var raw rawReview
	if err := json.Unmarshal(element, &raw); err != nil {
		return domain.ReviewInput{}, false
	}
	if raw.ItemID == "" || raw.Quality == nil {
		return domain.ReviewInput{}, false
	}

	quality := domain.Quality(*raw.Quality)
	if float64(quality) != *raw.Quality || !quality.IsValid() {
		return domain.ReviewInput{}, false
	}

	return domain.ReviewInput{ItemID: raw.ItemID, Quality: quality}, true
}

// Save replaces the pending queue with the given reviews. Exhausted
// storage is surfaced as store.ErrQuotaExceeded so callers can degrade to
// "no offline durability" instead of failing the session.
func (s *Store) Save(ctx context.Context, reviews []domain.ReviewInput) error {
	payload, err := json.Marshal(reviews)
	if err != nil {
		return fmt.Errorf("encode pending reviews: %w", err)
	}

	if s.maxBytes > 0 && int64(len(payload)) > s.maxBytes {
		return fmt.Errorf("%w: pending queue is %d bytes, cap is %d",
			store.ErrQuotaExceeded, len(payload), s.maxBytes)
	}

	if err := s.kv.Set(ctx, s.key, payload); err != nil {
		if store.IsQuotaError(err) {
			return err
		}
		return fmt.Errorf("persist pending reviews: %w", err)
	}

	s.logger.Debug("persisted pending reviews",
		"count", len(reviews),
		"payload_bytes", len(payload))

	return nil
}

// Clear removes the pending queue entirely.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear pending reviews: %w", err)
	}
	return nil
}

package submission

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renshu-app/renshu/internal/domain"
	"github.com/renshu-app/renshu/internal/offline"
	"github.com/renshu-app/renshu/internal/store"
)

var errNetwork = errors.New("connection reset")

// fakeSender records sent chunks and fails at a configured chunk index.
type fakeSender struct {
	chunks  [][]domain.ReviewInput
	failAt  int // 0-based chunk index to fail at, -1 to never fail
	sendErr error
	delay   time.Duration
}

func (f *fakeSender) SendChunk(ctx context.Context, reviews []domain.ReviewInput) error {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.failAt >= 0 && len(f.chunks) == f.failAt {
		return f.sendErr
	}
	copied := make([]domain.ReviewInput, len(reviews))
	copy(copied, reviews)
	f.chunks = append(f.chunks, copied)
	return nil
}

// fakePending is an in-memory PendingStore.
type fakePending struct {
	reviews   []domain.ReviewInput
	hadErrors bool
	loadErr   error
	saveErr   error
	saves     int
	clears    int
}

func (f *fakePending) Load(context.Context) (offline.LoadResult, error) {
	if f.loadErr != nil {
		return offline.LoadResult{}, f.loadErr
	}
	return offline.LoadResult{Reviews: f.reviews, HadErrors: f.hadErrors}, nil
}

func (f *fakePending) Save(_ context.Context, reviews []domain.ReviewInput) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.reviews = make([]domain.ReviewInput, len(reviews))
	copy(f.reviews, reviews)
	return nil
}

func (f *fakePending) Clear(context.Context) error {
	f.clears++
	f.reviews = nil
	return nil
}

func makeReviews(n int) []domain.ReviewInput {
	reviews := make([]domain.ReviewInput, n)
	for i := range reviews {
		reviews[i] = domain.ReviewInput{
			ItemID:  fmt.Sprintf("word:%03d", i),
			Quality: domain.Quality(i % 6),
		}
	}
	return reviews
}

func TestMergeLastWriteWins(t *testing.T) {
	t.Parallel()

	older := []domain.ReviewInput{
		{ItemID: "a", Quality: 1},
		{ItemID: "b", Quality: 2},
	}
	newer := []domain.ReviewInput{
		{ItemID: "b", Quality: 5},
		{ItemID: "c", Quality: 3},
	}

	merged := Merge(older, newer)
	assert.Equal(t, []domain.ReviewInput{
		{ItemID: "a", Quality: 1},
		{ItemID: "b", Quality: 5},
		{ItemID: "c", Quality: 3},
	}, merged)
}

func TestMergeDedupWithinOneList(t *testing.T) {
	t.Parallel()

	merged := Merge(nil, []domain.ReviewInput{
		{ItemID: "a", Quality: 1},
		{ItemID: "a", Quality: 4},
	})
	assert.Equal(t, []domain.ReviewInput{{ItemID: "a", Quality: 4}}, merged)
}

func TestChunkLaw(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		n, size int
	}{
		{n: 0, size: 10},
		{n: 1, size: 10},
		{n: 10, size: 10},
		{n: 11, size: 10},
		{n: 250, size: 100},
		{n: 99, size: 1},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(fmt.Sprintf("n=%d size=%d", tc.n, tc.size), func(t *testing.T) {
			t.Parallel()
			reviews := makeReviews(tc.n)
			chunks := Chunk(reviews, tc.size)
			if tc.n == 0 {
				assert.Empty(t, chunks)
				return
			}

			var flattened []domain.ReviewInput
			for i, chunk := range chunks {
				if i < len(chunks)-1 {
					assert.Len(t, chunk, tc.size)
				} else {
					assert.LessOrEqual(t, len(chunk), tc.size)
					assert.NotEmpty(t, chunk)
				}
				flattened = append(flattened, chunk...)
			}
			assert.Equal(t, reviews, flattened)
		})
	}
}

func TestSubmitFullSuccess(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{failAt: -1}
	pending := &fakePending{}
	q := NewQueue(sender, pending, Config{ChunkSize: 100}, nil)

	outcome, err := q.Submit(context.Background(), makeReviews(250))
	require.NoError(t, err)
	assert.True(t, outcome.FullyDelivered())
	assert.Equal(t, 250, outcome.Delivered)
	assert.Len(t, sender.chunks, 3)
	assert.Equal(t, 1, pending.clears, "offline queue is cleared on full success")
}

func TestSubmitPartialFailurePersistsExactRemainder(t *testing.T) {
	t.Parallel()

	// Chunks 1 and 2 (200 items) succeed, chunk 3 fails: exactly the 50
	// items with indices 200-249 must be persisted.
	sender := &fakeSender{failAt: 2, sendErr: errNetwork}
	pending := &fakePending{}
	q := NewQueue(sender, pending, Config{ChunkSize: 100}, nil)

	reviews := makeReviews(250)
	outcome, err := q.Submit(context.Background(), reviews)
	require.NoError(t, err, "transient failures are not hard errors")

	assert.Equal(t, 200, outcome.Delivered)
	assert.Equal(t, 50, outcome.Deferred)
	assert.ErrorIs(t, outcome.Cause, errNetwork)

	require.Len(t, pending.reviews, 50)
	assert.Equal(t, reviews[200:], pending.reviews)
	assert.Equal(t, 0, pending.clears)
}

func TestSubmitFirstChunkFailure(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{failAt: 0, sendErr: errNetwork}
	pending := &fakePending{}
	q := NewQueue(sender, pending, Config{ChunkSize: 100}, nil)

	reviews := makeReviews(42)
	outcome, err := q.Submit(context.Background(), reviews)
	require.NoError(t, err)
	assert.Equal(t, 0, outcome.Delivered)
	assert.Equal(t, 42, outcome.Deferred)
	assert.Equal(t, reviews, pending.reviews)
}

func TestSubmitMergesBacklogFirst(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{failAt: -1}
	pending := &fakePending{reviews: []domain.ReviewInput{
		{ItemID: "word:old", Quality: 1},
		{ItemID: "word:both", Quality: 2},
	}}
	q := NewQueue(sender, pending, Config{ChunkSize: 100}, nil)

	outcome, err := q.Submit(context.Background(), []domain.ReviewInput{
		{ItemID: "word:both", Quality: 5},
		{ItemID: "word:new", Quality: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, outcome.Delivered)

	require.Len(t, sender.chunks, 1)
	assert.Equal(t, []domain.ReviewInput{
		{ItemID: "word:old", Quality: 1},
		{ItemID: "word:both", Quality: 5}, // newer rating superseded the pending one
		{ItemID: "word:new", Quality: 3},
	}, sender.chunks[0])
}

func TestSubmitEmptyAndNoBacklog(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{failAt: -1}
	pending := &fakePending{}
	q := NewQueue(sender, pending, Config{}, nil)

	outcome, err := q.Submit(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, Outcome{}, outcome)
	assert.Empty(t, sender.chunks)
}

func TestSubmitDrainsBacklogAlone(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{failAt: -1}
	pending := &fakePending{reviews: makeReviews(3)}
	q := NewQueue(sender, pending, Config{}, nil)

	outcome, err := q.Submit(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, outcome.Delivered)
	assert.Equal(t, 1, pending.clears)
}

func TestSubmitUnreadableBacklogDegrades(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{failAt: -1}
	pending := &fakePending{loadErr: errors.New("slot unreadable")}
	q := NewQueue(sender, pending, Config{}, nil)

	reviews := makeReviews(2)
	outcome, err := q.Submit(context.Background(), reviews)
	require.NoError(t, err, "storage trouble must not block submission")
	assert.Equal(t, 2, outcome.Delivered)
}

func TestSubmitPersistFailureSurfacesStorageError(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{failAt: 0, sendErr: errNetwork}
	pending := &fakePending{saveErr: store.ErrQuotaExceeded}
	q := NewQueue(sender, pending, Config{}, nil)

	outcome, err := q.Submit(context.Background(), makeReviews(5))
	assert.ErrorIs(t, err, store.ErrQuotaExceeded)
	assert.Equal(t, 5, outcome.Deferred, "outcome still reports what was attempted")
}

func TestSubmitCancelledContextPersistsRemainder(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{failAt: -1}
	pending := &fakePending{}
	q := NewQueue(sender, pending, Config{ChunkSize: 10}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reviews := makeReviews(25)
	outcome, err := q.Submit(ctx, reviews)
	require.NoError(t, err)
	assert.Equal(t, 0, outcome.Delivered)
	assert.Equal(t, 25, outcome.Deferred)
	assert.Equal(t, reviews, pending.reviews, "cancellation still persists the remainder")
}

func TestSubmitTimeoutTreatedAsNetworkFailure(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{failAt: -1, delay: 200 * time.Millisecond}
	pending := &fakePending{}
	q := NewQueue(sender, pending, Config{ChunkSize: 10, ChunkTimeout: 10 * time.Millisecond}, nil)

	reviews := makeReviews(5)
	outcome, err := q.Submit(context.Background(), reviews)
	require.NoError(t, err)
	assert.Equal(t, 5, outcome.Deferred)
	assert.ErrorIs(t, outcome.Cause, context.DeadlineExceeded)
	assert.Equal(t, reviews, pending.reviews)
}

package offline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renshu-app/renshu/internal/domain"
	"github.com/renshu-app/renshu/internal/store"
)

// memoryKV is a trivial in-memory KV slot for tests.
type memoryKV struct {
	data   map[string][]byte
	setErr error
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[string][]byte)}
}

func (m *memoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryKV) Set(_ context.Context, key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *memoryKV) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func TestLoadEmpty(t *testing.T) {
	t.Parallel()
	s := NewStore(newMemoryKV(), nil)

	result, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Reviews)
	assert.False(t, result.HadErrors)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	s := NewStore(newMemoryKV(), nil)
	ctx := context.Background()

	reviews := []domain.ReviewInput{
		{ItemID: "word:taberu", Quality: 4},
		{ItemID: "word:nomu", Quality: 1},
	}
	require.NoError(t, s.Save(ctx, reviews))

	result, err := s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, result.HadErrors)
	assert.Equal(t, reviews, result.Reviews)
}

func TestLoadCorruptRoot(t *testing.T) {
	t.Parallel()
	kv := newMemoryKV()
	kv.data[DefaultSlotKey] = []byte(`{ invalid json }`)
	s := NewStore(kv, nil)

	result, err := s.Load(context.Background())
	require.NoError(t, err, "corrupt data must not surface as an error")
	assert.Empty(t, result.Reviews)
	assert.True(t, result.HadErrors)

	// The corrupt payload is left in place; recovery policy belongs to
	// the caller.
	assert.Contains(t, kv.data, DefaultSlotKey)
}

func TestLoadNonArrayRoot(t *testing.T) {
	t.Parallel()
	kv := newMemoryKV()
	kv.data[DefaultSlotKey] = []byte(`{"item_id":"x","quality":3}`)
	s := NewStore(kv, nil)

	result, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Reviews)
	assert.True(t, result.HadErrors)
}

func TestLoadDropsInvalidElements(t *testing.T) {
	t.Parallel()
	kv := newMemoryKV()
	kv.data[DefaultSlotKey] = []byte(`[
		{"item_id":"word:ok","quality":3},
		{"item_id":"","quality":3},
		{"item_id":"word:missing-quality"},
		{"item_id":"word:out-of-range","quality":9},
		{"item_id":"word:fractional","quality":3.5},
		"not an object",
		{"item_id":"word:also-ok","quality":0}
	]`)
	s := NewStore(kv, nil)

	result, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, result.HadErrors)
	assert.Equal(t, []domain.ReviewInput{
		{ItemID: "word:ok", Quality: 3},
		{ItemID: "word:also-ok", Quality: 0},
	}, result.Reviews)
}

func TestSaveQuotaCap(t *testing.T) {
	t.Parallel()
	s := NewStore(newMemoryKV(), nil, WithMaxBytes(10))

	err := s.Save(context.Background(), []domain.ReviewInput{
		{ItemID: "word:taberu", Quality: 4},
	})
	assert.ErrorIs(t, err, store.ErrQuotaExceeded)
}

func TestSavePassesThroughQuotaFromKV(t *testing.T) {
	t.Parallel()
	kv := newMemoryKV()
	kv.setErr = store.ErrQuotaExceeded
	s := NewStore(kv, nil)

	err := s.Save(context.Background(), []domain.ReviewInput{
		{ItemID: "word:taberu", Quality: 4},
	})
	assert.ErrorIs(t, err, store.ErrQuotaExceeded)
}

func TestSaveWrapsGenericKVError(t *testing.T) {
	t.Parallel()
	kv := newMemoryKV()
	kv.setErr = errors.New("disk detached")
	s := NewStore(kv, nil)

	err := s.Save(context.Background(), []domain.ReviewInput{
		{ItemID: "word:taberu", Quality: 4},
	})
	require.Error(t, err)
	assert.False(t, store.IsQuotaError(err))
}

func TestClear(t *testing.T) {
	t.Parallel()
	s := NewStore(newMemoryKV(), nil)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, []domain.ReviewInput{{ItemID: "word:x", Quality: 2}}))
	require.NoError(t, s.Clear(ctx))

	result, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, result.Reviews)
	assert.False(t, result.HadErrors)
}

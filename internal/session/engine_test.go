package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renshu-app/renshu/internal/domain"
	"github.com/renshu-app/renshu/internal/domain/srs"
)

func testItems() []domain.Item {
	return []domain.Item{
		{ID: "word:taberu", Word: "食べる", Reading: "たべる", Romaji: "taberu", Meaning: "to eat"},
		{ID: "word:nomu", Word: "飲む", Reading: "のむ", Romaji: "nomu", Meaning: "to drink"},
		{ID: "word:iku", Word: "行く", Reading: "いく", Romaji: "iku", Meaning: "to go"},
	}
}

func TestStartValidation(t *testing.T) {
	t.Parallel()

	engine := NewEngine(ModeForward, nil)
	assert.ErrorIs(t, engine.Start(nil), ErrNoItems)

	require.NoError(t, engine.Start(testItems()))
	assert.Equal(t, StateInProgress, engine.State())

	assert.ErrorIs(t, engine.Start(testItems()), ErrSessionAlreadyActive)
}

func TestForwardFlow(t *testing.T) {
	t.Parallel()

	var emitted []domain.ReviewInput
	engine := NewEngine(ModeForward, func(reviews []domain.ReviewInput) {
		emitted = reviews
	})
	require.NoError(t, engine.Start(testItems()))

	// Rating before flipping is a transition error.
	assert.ErrorIs(t, engine.Rate(4), ErrInvalidTransition)

	require.NoError(t, engine.Flip())
	assert.ErrorIs(t, engine.Flip(), ErrInvalidTransition)
	require.NoError(t, engine.Rate(5))

	require.NoError(t, engine.Flip())
	require.NoError(t, engine.Rate(2))

	require.NoError(t, engine.Flip())
	require.NoError(t, engine.Rate(4))

	// Rating the last card ends the session and emits once.
	assert.Equal(t, StateEnded, engine.State())
	require.Len(t, emitted, 3)
	assert.Equal(t, domain.ReviewInput{ItemID: "word:taberu", Quality: 5}, emitted[0])
	assert.Equal(t, domain.ReviewInput{ItemID: "word:nomu", Quality: 2}, emitted[1])
	assert.Equal(t, domain.ReviewInput{ItemID: "word:iku", Quality: 4}, emitted[2])

	stats := engine.Stats()
	assert.Equal(t, 3, stats.CardsReviewed)
	assert.Equal(t, 2, stats.CorrectCount)
	assert.Equal(t, 1, stats.IncorrectCount)
	assert.Equal(t, 1, stats.RatingCounts[5])
	assert.Equal(t, 1, stats.RatingCounts[2])
	assert.Equal(t, 1, stats.RatingCounts[4])
	assert.False(t, stats.EndedAt.IsZero())
}

func TestRateIdempotence(t *testing.T) {
	t.Parallel()

	engine := NewEngine(ModeForward, nil)
	require.NoError(t, engine.Start(testItems()[:1]))
	require.NoError(t, engine.Flip())

	require.NoError(t, engine.Rate(3))
	statsAfterFirst := engine.Stats()

	// The session ended with the last card, so a second rating is
	// rejected as a transition error, not double-counted.
	assert.ErrorIs(t, engine.Rate(5), ErrInvalidTransition)
	assert.Equal(t, statsAfterFirst, engine.Stats())
}

func TestRateIdempotenceMidSession(t *testing.T) {
	t.Parallel()

	engine := NewEngine(ModeForward, nil)
	items := testItems()
	require.NoError(t, engine.Start(items))
	require.NoError(t, engine.Flip())
	require.NoError(t, engine.Rate(4))

	// Force the current pointer back onto the rated card to exercise the
	// idempotency guard directly.
	engine.current = 0
	require.NoError(t, engine.Rate(1))

	stats := engine.Stats()
	assert.Equal(t, 1, stats.CardsReviewed)
	assert.Equal(t, 1, stats.RatingCounts[4])
	assert.Equal(t, 0, stats.RatingCounts[1])
}

func TestReverseFlow(t *testing.T) {
	t.Parallel()

	engine := NewEngine(ModeReverse, nil)
	require.NoError(t, engine.Start(testItems()[:2]))

	// The card cannot be revealed before an answer is checked.
	assert.ErrorIs(t, engine.Flip(), ErrInvalidTransition)

	correct, err := engine.SubmitAnswer("  TABERU ")
	require.NoError(t, err)
	assert.True(t, correct, "romaji surface form should match after trim and case fold")

	card, err := engine.Current()
	require.NoError(t, err)
	assert.True(t, card.Flipped, "submitting an answer reveals the card")

	// A second answer on the same card is rejected.
	_, err = engine.SubmitAnswer("taberu")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Reverse-mode correctness comes from the answer, not the rating.
	require.NoError(t, engine.Rate(2))

	correct, err = engine.SubmitAnswer("wrong")
	require.NoError(t, err)
	assert.False(t, correct)
	require.NoError(t, engine.Rate(5))

	stats := engine.Stats()
	assert.Equal(t, 1, stats.CorrectCount)
	assert.Equal(t, 1, stats.IncorrectCount)
}

func TestSubmitAnswerForwardModeRejected(t *testing.T) {
	t.Parallel()

	engine := NewEngine(ModeForward, nil)
	require.NoError(t, engine.Start(testItems()))
	_, err := engine.SubmitAnswer("taberu")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEndEmitsExactlyOnce(t *testing.T) {
	t.Parallel()

	emissions := 0
	engine := NewEngine(ModeForward, func(reviews []domain.ReviewInput) {
		emissions++
	})
	require.NoError(t, engine.Start(testItems()))
	require.NoError(t, engine.Flip())
	require.NoError(t, engine.Rate(4))

	// End with unrated cards remaining: only rated cards are emitted.
	summary, err := engine.End()
	require.NoError(t, err)
	require.Len(t, summary.Reviews, 1)
	assert.Equal(t, 1, emissions)

	again, err := engine.End()
	require.NoError(t, err)
	assert.Nil(t, again.Reviews, "second End must not re-emit")
	assert.Equal(t, summary.Stats, again.Stats)
	assert.Equal(t, 1, emissions)
}

func TestEndAfterFinalRatingHandsOutReviews(t *testing.T) {
	t.Parallel()

	engine := NewEngine(ModeForward, nil)
	require.NoError(t, engine.Start(testItems()[:1]))
	require.NoError(t, engine.Flip())
	require.NoError(t, engine.Rate(4))
	require.Equal(t, StateEnded, engine.State())

	// Rating the last card already ended the session; the first
	// explicit End must still hand out the collected reviews.
	summary, err := engine.End()
	require.NoError(t, err)
	require.Len(t, summary.Reviews, 1)
	assert.Equal(t, domain.ReviewInput{ItemID: "word:taberu", Quality: 4}, summary.Reviews[0])

	again, err := engine.End()
	require.NoError(t, err)
	assert.Nil(t, again.Reviews, "reviews are handed out once")
	assert.Equal(t, summary.Stats, again.Stats)
}

func TestEndBeforeStart(t *testing.T) {
	t.Parallel()

	engine := NewEngine(ModeForward, nil)
	_, err := engine.End()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDuplicateItemLastRatingWins(t *testing.T) {
	t.Parallel()

	items := []domain.Item{
		{ID: "word:iku", Word: "行く"},
		{ID: "word:nomu", Word: "飲む"},
		{ID: "word:iku", Word: "行く"},
	}

	engine := NewEngine(ModeForward, nil)
	require.NoError(t, engine.Start(items))
	for _, q := range []domain.Quality{2, 4, 5} {
		require.NoError(t, engine.Flip())
		require.NoError(t, engine.Rate(q))
	}

	summary, err := engine.End()
	require.NoError(t, err)
	require.Len(t, summary.Reviews, 2)
	assert.Equal(t, domain.ReviewInput{ItemID: "word:iku", Quality: 5}, summary.Reviews[0])
	assert.Equal(t, domain.ReviewInput{ItemID: "word:nomu", Quality: 4}, summary.Reviews[1])
}

func TestRateRecallUsesQualityMapper(t *testing.T) {
	t.Parallel()

	engine := NewEngine(ModeForward, nil)
	require.NoError(t, engine.Start(testItems()[:1]))
	require.NoError(t, engine.Flip())
	require.NoError(t, engine.RateRecall(true, srs.Signals{Fast: true}))

	summary, err := engine.End()
	require.NoError(t, err)
	require.Len(t, summary.Reviews, 1)
	assert.Equal(t, domain.Quality(5), summary.Reviews[0].Quality)
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReviewInput(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		itemID  string
		quality Quality
		wantErr error
	}{
		{name: "valid", itemID: "item-1", quality: 4},
		{name: "lowest quality", itemID: "item-1", quality: 0},
		{name: "highest quality", itemID: "item-1", quality: 5},
		{name: "empty item ID", itemID: "", quality: 4, wantErr: ErrEmptyItemID},
		{name: "quality below range", itemID: "item-1", quality: -1, wantErr: ErrInvalidQuality},
		{name: "quality above range", itemID: "item-1", quality: 6, wantErr: ErrInvalidQuality},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			review, err := NewReviewInput(tc.itemID, tc.quality)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.itemID, review.ItemID)
			assert.Equal(t, tc.quality, review.Quality)
		})
	}
}

func TestQualityIsCorrect(t *testing.T) {
	t.Parallel()

	assert.False(t, Quality(0).IsCorrect())
	assert.False(t, Quality(2).IsCorrect())
	assert.True(t, Quality(3).IsCorrect())
	assert.True(t, Quality(5).IsCorrect())
}

func TestItemSurfaceForms(t *testing.T) {
	t.Parallel()

	item := Item{
		ID:      "word:taberu",
		Word:    "食べる",
		Reading: "たべる",
		Romaji:  "taberu",
		Meaning: "to eat",
	}
	assert.Equal(t, []string{"食べる", "たべる", "taberu"}, item.SurfaceForms())

	bare := Item{ID: "word:x", Word: "x"}
	assert.Equal(t, []string{"x"}, bare.SurfaceForms())
}

package domain

import "fmt"

// Quality is a 0-5 integer encoding how well an item was recalled.
// 0 is a total blackout, 5 is a perfect and fast recall. Ratings of 3
// and above count as a successful recall for scheduling purposes.
type Quality int

// Bounds of the quality scale.
const (
	MinQuality Quality = 0
	MaxQuality Quality = 5

	// PassingQuality is the lowest rating that counts as a successful
	// recall in the SM-2 family of algorithms.
	PassingQuality Quality = 3
)

// IsValid reports whether the quality lies on the 0-5 scale.
func (q Quality) IsValid() bool {
	return q >= MinQuality && q <= MaxQuality
}

// IsCorrect reports whether the quality counts as a successful recall.
func (q Quality) IsCorrect() bool {
	return q >= PassingQuality
}

// ReviewInput is the immutable outcome of reviewing a single item: which
// item was reviewed and how well it was recalled. It is produced by the
// session engine and consumed by the submission queue.
type ReviewInput struct {
	ItemID  string  `json:"item_id"`
	Quality Quality `json:"quality"`
}

// NewReviewInput constructs a validated ReviewInput.
// Out-of-range qualities and empty item IDs are rejected at construction
// so that everything downstream can trust the value.
func NewReviewInput(itemID string, quality Quality) (ReviewInput, error) {
	r := ReviewInput{ItemID: itemID, Quality: quality}
	if err := r.Validate(); err != nil {
		return ReviewInput{}, err
	}
	return r, nil
}

// Validate checks the ReviewInput's structural invariants.
func (r ReviewInput) Validate() error {
	if r.ItemID == "" {
		return ErrEmptyItemID
	}
	if !r.Quality.IsValid() {
		return fmt.Errorf("%w: got %d", ErrInvalidQuality, r.Quality)
	}
	return nil
}

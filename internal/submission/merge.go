package submission

import "github.com/renshu-app/renshu/internal/domain"

// Merge combines an older and a newer list of reviews, deduplicating by
// item ID with last-write-wins: when both lists rate the same item, the
// newer rating supersedes the older one. An item keeps the position of
// its first occurrence, so the relative order of the merged list is
// deterministic.
func Merge(older, newer []domain.ReviewInput) []domain.ReviewInput {
	merged := make([]domain.ReviewInput, 0, len(older)+len(newer))
	index := make(map[string]int, len(older)+len(newer))

	for _, list := range [][]domain.ReviewInput{older, newer} {
		for _, review := range list {
			if at, ok := index[review.ItemID]; ok {
				merged[at] = review
				continue
			}
			index[review.ItemID] = len(merged)
			merged = append(merged, review)
		}
	}

	return merged
}

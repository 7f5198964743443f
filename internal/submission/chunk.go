package submission

import "github.com/renshu-app/renshu/internal/domain"

// Chunk partitions reviews into fixed-size sub-batches, preserving order.
// Every chunk has exactly size elements except possibly the last. A
// non-positive size yields a single chunk.
func Chunk(reviews []domain.ReviewInput, size int) [][]domain.ReviewInput {
	if len(reviews) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(reviews)
	}

	chunks := make([][]domain.ReviewInput, 0, (len(reviews)+size-1)/size)
	for start := 0; start < len(reviews); start += size {
		end := start + size
		if end > len(reviews) {
			end = len(reviews)
		}
		chunks = append(chunks, reviews[start:end])
	}

	return chunks
}

package srs

import "github.com/renshu-app/renshu/internal/domain"

// Signals carries the raw recall modifiers observed during a review.
// At most one is expected to be set at a time; when several are set the
// precedence is fast over hesitant for correct answers, and blackout
// over close for incorrect ones.
type Signals struct {
	Fast     bool // Correct with no noticeable delay
	Hesitant bool // Correct but after visible struggle
	Close    bool // Incorrect but nearly right
	Blackout bool // Incorrect with no recall at all
}

// MapQuality converts raw answer-correctness signals into a quality
// rating on the 0-5 scale. It is a total function: every combination of
// inputs maps to a valid rating.
func MapQuality(correct bool, sig Signals) domain.Quality {
	if correct {
		switch {
		case sig.Fast:
			return 5
		case sig.Hesitant:
			return 3
		default:
			return 4
		}
	}

	switch {
	case sig.Blackout:
		return 0
	case sig.Close:
		return 2
	default:
		return 1
	}
}

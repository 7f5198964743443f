package srs

import (
	"time"

	"github.com/renshu-app/renshu/internal/domain"
)

// Params defines all configurable parameters for the SRS algorithm.
type Params struct {
	// Core limits
	InitialEaseFactor float64
	MinEaseFactor     float64

	// Interval step progression for successful reviews
	FirstInterval  int // Days after the first successful repetition
	SecondInterval int // Days after the second successful repetition

	// LapseInterval is the interval assigned after a failed recall.
	LapseInterval int

	// DayLength is the fixed duration of one interval day.
	DayLength time.Duration
}

// ParamsConfig allows overriding the default parameters when creating a
// new Params instance. Zero values fall back to the defaults.
type ParamsConfig struct {
	InitialEaseFactor float64
	MinEaseFactor     float64
	FirstInterval     int
	SecondInterval    int
	LapseInterval     int
	DayLength         time.Duration
}

// NewDefaultParams creates a new Params instance with the standard SM-2
// values.
func NewDefaultParams() *Params {
	return &Params{
		InitialEaseFactor: domain.DefaultEaseFactor,
		MinEaseFactor:     domain.MinEaseFactor,
		FirstInterval:     1,
		SecondInterval:    6,
		LapseInterval:     1,
		DayLength:         24 * time.Hour,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.InitialEaseFactor > 0 {
		params.InitialEaseFactor = config.InitialEaseFactor
	}
	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}
	if config.LapseInterval > 0 {
		params.LapseInterval = config.LapseInterval
	}
	if config.DayLength > 0 {
		params.DayLength = config.DayLength
	}

	return params
}

// Package srs implements the spaced-repetition scheduling algorithm used
// by the review engine: an SM-2 style progression where a per-item ease
// factor controls how quickly review intervals grow.
//
// Scheduling is timezone-naive. Intervals are whole days measured as a
// fixed 24-hour duration from the moment of review; no calendar or DST
// arithmetic is performed.
package srs

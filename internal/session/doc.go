// Package session drives a single study session: card sequencing, flip and
// reveal transitions, typed-answer checking in reverse mode, and per-card
// rating collection. An Engine is an explicit per-session instance owned by
// the caller; it is driven entirely by synchronous user-triggered
// transitions and is not safe for concurrent use.
package session

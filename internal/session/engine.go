package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/renshu-app/renshu/internal/domain"
	"github.com/renshu-app/renshu/internal/domain/srs"
)

// Validation errors returned on caller misuse. These are programmer
// errors: they are never retried and never swallowed.
var (
	ErrSessionAlreadyActive = errors.New("session is already in progress")
	ErrInvalidTransition    = errors.New("invalid session transition")
	ErrNoItems              = errors.New("session requires at least one item")
)

// Mode selects how cards are presented.
type Mode string

// Possible session modes.
const (
	// ModeForward shows the word and asks for the meaning.
	ModeForward Mode = "forward"

	// ModeReverse shows the meaning and requires a typed answer before
	// the card can be revealed.
	ModeReverse Mode = "reverse"
)

// State represents the lifecycle of a session.
type State string

// Possible session states. Ended is terminal.
const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateEnded      State = "ended"
)

// ReviewSink receives the session's final reviews exactly once, when the
// session ends. This is the boundary to the submission queue.
type ReviewSink func(reviews []domain.ReviewInput)

// Engine is a finite-state machine driving one study session. Construct
// one per session and discard it afterwards; there is no process-wide
// session state.
type Engine struct {
	id      uuid.UUID
	mode    Mode
	state   State
	cards   []*Flashcard
	current int
	stats   Stats
	sink      ReviewSink
	emitted   bool
	handedOut bool
	summary   *Summary
	nowFn     func() time.Time
}

// NewEngine creates a session engine in the NotStarted state. The sink
// may be nil when the caller collects reviews from End's Summary instead.
func NewEngine(mode Mode, sink ReviewSink) *Engine {
	return &Engine{
		id:    uuid.New(),
		mode:  mode,
		state: StateNotStarted,
		sink:  sink,
		nowFn: time.Now,
	}
}

// ID returns the session's unique identifier.
func (e *Engine) ID() uuid.UUID { return e.id }

// Mode returns the session mode.
func (e *Engine) Mode() Mode { return e.mode }

// State returns the current lifecycle state.
func (e *Engine) State() State { return e.state }

// Stats returns a copy of the session counters.
func (e *Engine) Stats() Stats { return e.stats }

// Start begins the session with the given items, in the given order.
// Ordering (e.g. due-first) is the caller's concern. Returns
// ErrSessionAlreadyActive when the session is already in progress.
func (e *Engine) Start(items []domain.Item) error {
	if e.state == StateInProgress {
		return ErrSessionAlreadyActive
	}
	if e.state == StateEnded {
		return fmt.Errorf("%w: session has ended", ErrInvalidTransition)
	}
	if len(items) == 0 {
		return ErrNoItems
	}

	cards := make([]*Flashcard, 0, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("invalid session item: %w", err)
		}
		cards = append(cards, &Flashcard{Item: item})
	}

	e.cards = cards
	e.current = 0
	e.stats = Stats{StartedAt: e.nowFn()}
	e.state = StateInProgress

	return nil
}

// Current returns the card being studied.
func (e *Engine) Current() (*Flashcard, error) {
	if e.state != StateInProgress {
		return nil, fmt.Errorf("%w: no active card", ErrInvalidTransition)
	}
	return e.cards[e.current], nil
}

// Remaining returns how many cards are left, including the current one.
func (e *Engine) Remaining() int {
	if e.state != StateInProgress {
		return 0
	}
	return len(e.cards) - e.current
}

// Flip reveals the back of the current card. In reverse mode the card can
// only be flipped after an answer has been checked; SubmitAnswer flips it
// as a side effect, so an explicit Flip is only needed in forward mode.
func (e *Engine) Flip() error {
	card, err := e.Current()
	if err != nil {
		return err
	}

	if card.Flipped {
		return fmt.Errorf("%w: card is already revealed", ErrInvalidTransition)
	}

	if e.mode == ModeReverse && !card.answered() {
		return fmt.Errorf("%w: answer must be submitted before revealing", ErrInvalidTransition)
	}

	card.Flipped = true
	return nil
}

// SubmitAnswer checks a typed answer against every surface form of the
// current item and reveals the card. Only valid in reverse mode, once per
// card, before the card is revealed.
func (e *Engine) SubmitAnswer(text string) (bool, error) {
	if e.mode != ModeReverse {
		return false, fmt.Errorf("%w: typed answers only apply to reverse mode", ErrInvalidTransition)
	}

	card, err := e.Current()
	if err != nil {
		return false, err
	}

	if card.Flipped || card.answered() {
		return false, fmt.Errorf("%w: answer already submitted", ErrInvalidTransition)
	}

	correct := answerMatches(text, card.Item.SurfaceForms())
	card.TypedAnswer = text
	card.IsCorrect = &correct

	// Submitting an answer always reveals the back.
	card.Flipped = true

	return correct, nil
}

// RateRecall converts raw correctness signals into a quality rating and
// applies it to the current card. This is the path for callers that
// observe correctness and latency rather than picking a 0-5 rating.
func (e *Engine) RateRecall(correct bool, sig srs.Signals) error {
	return e.Rate(srs.MapQuality(correct, sig))
}

// Rate applies a quality rating to the current card and advances the
// session, ending it after the last card. Rating an already-rated card is
// a no-op so that statistics are never double-counted.
func (e *Engine) Rate(quality domain.Quality) error {
	if !quality.IsValid() {
		return domain.ErrInvalidQuality
	}

	card, err := e.Current()
	if err != nil {
		return err
	}

	if !card.Flipped {
		return fmt.Errorf("%w: card must be revealed before rating", ErrInvalidTransition)
	}

	if card.rated() {
		return nil
	}

	card.Rating = &quality

	// In reverse mode correctness comes from the checked answer; in
	// forward mode a passing quality counts as correct.
	correct := quality.IsCorrect()
	if e.mode == ModeReverse && card.answered() {
		correct = *card.IsCorrect
	}

	e.stats.CardsReviewed++
	e.stats.RatingCounts[quality]++
	if correct {
		e.stats.CorrectCount++
	} else {
		e.stats.IncorrectCount++
	}

	if e.current == len(e.cards)-1 {
		e.finish()
		return nil
	}

	e.current++
	return nil
}

// End finishes the session, freezing the stats. The final reviews are
// handed out exactly once: the first End returns them even when rating
// the last card already ended the session, and every later End returns
// the frozen stats with a nil review slice so callers cannot resubmit.
func (e *Engine) End() (*Summary, error) {
	if e.state == StateNotStarted {
		return nil, fmt.Errorf("%w: session never started", ErrInvalidTransition)
	}

	if e.state != StateEnded {
		e.finish()
	}

	if e.handedOut {
		return &Summary{Stats: e.summary.Stats}, nil
	}

	e.handedOut = true
	return e.summary, nil
}

// finish freezes the session and emits reviews to the sink. Idempotence
// is guarded by the emitted flag.
func (e *Engine) finish() {
	if e.emitted {
		return
	}

	e.stats.EndedAt = e.nowFn()
	e.state = StateEnded

	reviews := e.collectReviews()
	e.summary = &Summary{Stats: e.stats, Reviews: reviews}
	e.emitted = true

	if e.sink != nil {
		e.sink(reviews)
	}
}

// collectReviews builds one ReviewInput per rated card. If the same item
// appeared more than once, the later rating wins.
func (e *Engine) collectReviews() []domain.ReviewInput {
	reviews := make([]domain.ReviewInput, 0, len(e.cards))
	index := make(map[string]int, len(e.cards))

	for _, card := range e.cards {
		if !card.rated() {
			continue
		}
		review := domain.ReviewInput{ItemID: card.Item.ID, Quality: *card.Rating}
		if at, ok := index[review.ItemID]; ok {
			reviews[at] = review
			continue
		}
		index[review.ItemID] = len(reviews)
		reviews = append(reviews, review)
	}

	return reviews
}

// answerMatches reports whether the normalized text equals any of the
// accepted surface forms. Normalization is trim plus case folding.
func answerMatches(text string, forms []string) bool {
	normalized := strings.TrimSpace(text)
	for _, form := range forms {
		if strings.EqualFold(normalized, strings.TrimSpace(form)) {
			return true
		}
	}
	return false
}

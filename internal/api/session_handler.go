package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/renshu-app/renshu/internal/api/shared"
	"github.com/renshu-app/renshu/internal/domain"
	"github.com/renshu-app/renshu/internal/platform/logger"
	"github.com/renshu-app/renshu/internal/service/review"
	"github.com/renshu-app/renshu/internal/session"
)

// liveSession pairs one engine with the user driving it. Engines are not
// goroutine-safe, so every access goes through the session's own mutex.
type liveSession struct {
	mu     sync.Mutex
	engine *session.Engine
	userID uuid.UUID
}

// SessionHandler handles study-session HTTP requests. It owns the
// in-memory registry of live sessions; sessions do not survive a restart
// (reviews do, via the offline queue).
type SessionHandler struct {
	reviewService review.Service
	logger        *slog.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*liveSession
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(reviewService review.Service, logger *slog.Logger) *SessionHandler {
	if reviewService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("review service cannot be nil for SessionHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SessionHandler")
	}

	return &SessionHandler{
		reviewService: reviewService,
		logger:        logger.With(slog.String("component", "session_handler")),
		sessions:      make(map[uuid.UUID]*liveSession),
	}
}

// ItemPayload is the wire form of a study item.
type ItemPayload struct {
	ID      string `json:"id"      validate:"required"`
	Word    string `json:"word"    validate:"required"`
	Reading string `json:"reading"`
	AltForm string `json:"alt_form"`
	Romaji  string `json:"romaji"`
	Meaning string `json:"meaning" validate:"required"`
}

func (p ItemPayload) toDomain() domain.Item {
	return domain.Item{
		ID:      p.ID,
		Word:    p.Word,
		Reading: p.Reading,
		AltForm: p.AltForm,
		Romaji:  p.Romaji,
		Meaning: p.Meaning,
	}
}

// StartSessionRequest is the request body for POST /sessions.
type StartSessionRequest struct {
	Mode  string        `json:"mode"  validate:"required,oneof=forward reverse"`
	Items []ItemPayload `json:"items" validate:"required,min=1,dive"`
}

// CardResponse is the client's view of the current card. The meaning is
// withheld until the card has been revealed in forward mode; reverse mode
// withholds the word instead.
type CardResponse struct {
	ItemID      string  `json:"item_id"`
	Word        string  `json:"word,omitempty"`
	Reading     string  `json:"reading,omitempty"`
	Meaning     string  `json:"meaning,omitempty"`
	Flipped     bool    `json:"flipped"`
	TypedAnswer string  `json:"typed_answer,omitempty"`
	IsCorrect   *bool   `json:"is_correct,omitempty"`
	Rating      *int    `json:"rating,omitempty"`
	Position    int     `json:"position"`
	Remaining   int     `json:"remaining"`
}

// SessionResponse represents a session's current state.
type SessionResponse struct {
	ID    string         `json:"id"`
	Mode  string         `json:"mode"`
	State string         `json:"state"`
	Card  *CardResponse  `json:"card,omitempty"`
	Stats *StatsResponse `json:"stats,omitempty"`
}

// StatsResponse is the wire form of session statistics.
type StatsResponse struct {
	CardsReviewed  int       `json:"cards_reviewed"`
	CorrectCount   int       `json:"correct_count"`
	IncorrectCount int       `json:"incorrect_count"`
	RatingCounts   [6]int    `json:"rating_counts"`
	StartedAt      time.Time `json:"started_at"`
	EndedAt        time.Time `json:"ended_at"`
}

// StartSession handles POST /sessions requests.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req StartSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request data", err)
		return
	}

	items := make([]domain.Item, 0, len(req.Items))
	for _, payload := range req.Items {
		items = append(items, payload.toDomain())
	}

	engine := session.NewEngine(session.Mode(req.Mode), nil)
	if err := engine.Start(items); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	live := &liveSession{engine: engine, userID: userID}
	h.mu.Lock()
	h.sessions[engine.ID()] = live
	h.mu.Unlock()

	log.Debug("session started",
		slog.String("session_id", engine.ID().String()),
		slog.String("mode", req.Mode),
		slog.Int("items", len(items)))

	shared.RespondWithJSON(w, r, http.StatusCreated, sessionToResponse(engine))
}

// GetSession handles GET /sessions/{id} requests.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	live, ok := h.lookup(w, r)
	if !ok {
		return
	}

	live.mu.Lock()
	response := sessionToResponse(live.engine)
	live.mu.Unlock()

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// FlipCard handles POST /sessions/{id}/flip requests.
func (h *SessionHandler) FlipCard(w http.ResponseWriter, r *http.Request) {
	live, ok := h.lookup(w, r)
	if !ok {
		return
	}

	live.mu.Lock()
	err := live.engine.Flip()
	response := sessionToResponse(live.engine)
	live.mu.Unlock()

	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// SubmitAnswerRequest is the request body for POST /sessions/{id}/answer.
type SubmitAnswerRequest struct {
	Answer string `json:"answer" validate:"required"`
}

// SubmitAnswerResponse reports the outcome of a typed answer.
type SubmitAnswerResponse struct {
	Correct bool            `json:"correct"`
	Session SessionResponse `json:"session"`
}

// SubmitAnswer handles POST /sessions/{id}/answer requests.
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	live, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request data", err)
		return
	}

	live.mu.Lock()
	correct, err := live.engine.SubmitAnswer(req.Answer)
	response := sessionToResponse(live.engine)
	live.mu.Unlock()

	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SubmitAnswerResponse{
		Correct: correct,
		Session: response,
	})
}

// RateCardRequest is the request body for POST /sessions/{id}/rate.
// Quality is a pointer so that a missing field and a zero rating can be
// told apart.
type RateCardRequest struct {
	Quality *int `json:"quality" validate:"required,min=0,max=5"`
}

// RateCard handles POST /sessions/{id}/rate requests. Rating the last
// card ends the session; the response carries the final state either way.
func (h *SessionHandler) RateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	live, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req RateCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request data", err)
		return
	}

	live.mu.Lock()
	err := live.engine.Rate(domain.Quality(*req.Quality))
	response := sessionToResponse(live.engine)
	live.mu.Unlock()

	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if response.State == string(session.StateEnded) {
		log.Debug("session ended by final rating",
			slog.String("session_id", response.ID))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// SubmissionResponse is the wire form of a submission outcome.
type SubmissionResponse struct {
	Delivered int    `json:"delivered"`
	Deferred  int    `json:"deferred"`
	Cause     string `json:"cause,omitempty"`
}

// EndSessionResponse is the response body for POST /sessions/{id}/end.
type EndSessionResponse struct {
	ID         string              `json:"id"`
	Stats      StatsResponse       `json:"stats"`
	Submission *SubmissionResponse `json:"submission,omitempty"`
}

// EndSession handles POST /sessions/{id}/end requests. It finishes the
// session, hands the collected reviews to the review service, and drops
// the session from the registry. A completed session always reports its
// stats: delivery problems only degrade the submission outcome, they
// never fail the request.
func (h *SessionHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	live, ok := h.lookup(w, r)
	if !ok {
		return
	}

	live.mu.Lock()
	summary, err := live.engine.End()
	live.mu.Unlock()

	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	sessionID := chi.URLParam(r, "id")
	response := EndSessionResponse{
		ID:    sessionID,
		Stats: statsToResponse(summary.Stats),
	}

	if len(summary.Reviews) > 0 {
		outcome, submitErr := h.reviewService.SubmitReviews(r.Context(), live.userID, summary.Reviews)

		submissionResponse := &SubmissionResponse{
			Delivered: outcome.Delivered,
			Deferred:  outcome.Deferred,
		}
		switch {
		case submitErr != nil:
			// Delivery and offline persistence both failed. The session
			// still completed locally; lost durability is logged and
			// reported in the outcome, never as a hard failure.
			log.Error("failed to secure session reviews",
				slog.String("session_id", sessionID),
				slog.Int("review_count", len(summary.Reviews)),
				slog.String("error", submitErr.Error()))
			submissionResponse.Cause = "reviews could not be delivered or saved"
		case outcome.Cause != nil:
			submissionResponse.Cause = "delivery deferred, will retry in background"
		}
		response.Submission = submissionResponse

		if submitErr == nil {
			log.Debug("session reviews submitted",
				slog.String("session_id", sessionID),
				slog.Int("delivered", outcome.Delivered),
				slog.Int("deferred", outcome.Deferred))
		}
	}

	// The engine hands its reviews out once, so the entry has no further
	// use; dropping it keeps the registry bounded. Later calls see the
	// session as missing.
	if id, parseErr := uuid.Parse(sessionID); parseErr == nil {
		h.mu.Lock()
		delete(h.sessions, id)
		h.mu.Unlock()
	}

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// lookup resolves the {id} path parameter to a live session owned by the
// requesting user, writing the error response itself on failure.
func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*liveSession, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return nil, false
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID")
		return nil, false
	}

	h.mu.RLock()
	live, found := h.sessions[sessionID]
	h.mu.RUnlock()

	// A session belonging to someone else is reported as missing rather
	// than forbidden, to avoid confirming its existence.
	if !found || live.userID != userID {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(ErrSessionNotFound),
			GetSafeErrorMessage(ErrSessionNotFound),
			ErrSessionNotFound)
		return nil, false
	}

	return live, true
}

// sessionToResponse builds the client view of a session. Callers must
// hold the session's lock.
func sessionToResponse(engine *session.Engine) SessionResponse {
	response := SessionResponse{
		ID:    engine.ID().String(),
		Mode:  string(engine.Mode()),
		State: string(engine.State()),
	}

	stats := statsToResponse(engine.Stats())
	response.Stats = &stats

	card, err := engine.Current()
	if err != nil {
		return response
	}

	cardResponse := CardResponse{
		ItemID:      card.Item.ID,
		Flipped:     card.Flipped,
		TypedAnswer: card.TypedAnswer,
		IsCorrect:   card.IsCorrect,
		Position:    stats.CardsReviewed,
		Remaining:   engine.Remaining(),
	}
	if card.Rating != nil {
		rating := int(*card.Rating)
		cardResponse.Rating = &rating
	}

	// Forward mode shows the prompt side until the flip reveals the
	// meaning; reverse mode is the mirror image.
	switch {
	case engine.Mode() == session.ModeReverse:
		cardResponse.Meaning = card.Item.Meaning
		if card.Flipped {
			cardResponse.Word = card.Item.Word
			cardResponse.Reading = card.Item.Reading
		}
	default:
		cardResponse.Word = card.Item.Word
		cardResponse.Reading = card.Item.Reading
		if card.Flipped {
			cardResponse.Meaning = card.Item.Meaning
		}
	}

	response.Card = &cardResponse
	return response
}

func statsToResponse(stats session.Stats) StatsResponse {
	return StatsResponse{
		CardsReviewed:  stats.CardsReviewed,
		CorrectCount:   stats.CorrectCount,
		IncorrectCount: stats.IncorrectCount,
		RatingCounts:   stats.RatingCounts,
		StartedAt:      stats.StartedAt,
		EndedAt:        stats.EndedAt,
	}
}

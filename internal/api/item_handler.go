package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/renshu-app/renshu/internal/api/shared"
	"github.com/renshu-app/renshu/internal/platform/logger"
	"github.com/renshu-app/renshu/internal/service/review"
	"github.com/renshu-app/renshu/internal/store"
)

// defaultDueLimit bounds GET /items/due when the client sends no limit.
const defaultDueLimit = 50

// maxDueLimit is the hard ceiling on the due-items page size.
const maxDueLimit = 500

// ItemHandler handles item-related HTTP requests.
type ItemHandler struct {
	reviewService review.Service
	logger        *slog.Logger
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(reviewService review.Service, logger *slog.Logger) *ItemHandler {
	if reviewService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("review service cannot be nil for ItemHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ItemHandler")
	}

	return &ItemHandler{
		reviewService: reviewService,
		logger:        logger.With(slog.String("component", "item_handler")),
	}
}

// DueItemResponse pairs an item with its scheduling state. State fields
// are absent for items the user has never reviewed.
type DueItemResponse struct {
	Item         ItemPayload `json:"item"`
	EaseFactor   *float64    `json:"ease_factor,omitempty"`
	IntervalDays *int        `json:"interval_days,omitempty"`
	Repetitions  *int        `json:"repetitions,omitempty"`
	NextReviewAt *time.Time  `json:"next_review_at,omitempty"`
}

// DueItemsResponse is the response body for GET /items/due.
type DueItemsResponse struct {
	Items []DueItemResponse `json:"items"`
}

// GetDueItems handles GET /items/due requests. It returns the items due
// for review now, soonest-due first, never-reviewed items last.
func (h *ItemHandler) GetDueItems(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	limit := defaultDueLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxDueLimit {
		limit = maxDueLimit
	}

	dueItems, err := h.reviewService.DueItems(r.Context(), userID, time.Now().UTC(), limit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), "Failed to list due items", err)
		return
	}

	response := DueItemsResponse{Items: make([]DueItemResponse, 0, len(dueItems))}
	for _, due := range dueItems {
		response.Items = append(response.Items, dueItemToResponse(due))
	}

	log.Debug("listed due items",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(response.Items)))

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

func dueItemToResponse(due store.DueItem) DueItemResponse {
	response := DueItemResponse{
		Item: ItemPayload{
			ID:      due.Item.ID,
			Word:    due.Item.Word,
			Reading: due.Item.Reading,
			AltForm: due.Item.AltForm,
			Romaji:  due.Item.Romaji,
			Meaning: due.Item.Meaning,
		},
	}

	if due.State != nil {
		ease := due.State.EaseFactor
		interval := due.State.IntervalDays
		repetitions := due.State.Repetitions
		next := due.State.NextReviewAt
		response.EaseFactor = &ease
		response.IntervalDays = &interval
		response.Repetitions = &repetitions
		response.NextReviewAt = &next
	}

	return response
}

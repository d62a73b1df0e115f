package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/studydeck/studydeck-server/internal/domain"
	"github.com/studydeck/studydeck-server/internal/service"
	"github.com/studydeck/studydeck-server/pkg/httputil"
	"github.com/studydeck/studydeck-server/pkg/middleware"
	"github.com/studydeck/studydeck-server/pkg/validator"
)

// FlashcardHandler handles HTTP requests for flashcard set endpoints.
type FlashcardHandler struct {
	service *service.FlashcardService
	logger  *slog.Logger
}

// NewFlashcardHandler creates a new flashcard HTTP handler.
func NewFlashcardHandler(svc *service.FlashcardService, logger *slog.Logger) *FlashcardHandler {
	return &FlashcardHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// CardRequest is a single question/answer pair in a request body.
type CardRequest struct {
	Question string `json:"question" validate:"required,min=1,max=2000"`
	Answer   string `json:"answer" validate:"required,min=1,max=2000"`
}

// CreateFlashcardRequest is the JSON request body for creating a set.
type CreateFlashcardRequest struct {
	Title       string        `json:"title" validate:"required,min=1,max=200"`
	Description string        `json:"description" validate:"omitempty,max=2000"`
	Cards       []CardRequest `json:"cards" validate:"omitempty,dive"`
	IsHidden    bool          `json:"is_hidden"`
}

// UpdateFlashcardRequest is the JSON request body for updating a set.
// Absent fields leave the stored value untouched.
type UpdateFlashcardRequest struct {
	Title       *string        `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string        `json:"description" validate:"omitempty,max=2000"`
	Cards       *[]CardRequest `json:"cards" validate:"omitempty,dive"`
	IsHidden    *bool          `json:"is_hidden"`
}

// RateRequest is the JSON request body for rating a set. Range checks
// live in the service so rating errors read the same on every endpoint.
type RateRequest struct {
	Rating int `json:"rating"`
}

// ReviewRequest is the JSON request body for reviewing a set. Rating is a
// pointer so an omitted field can be told apart from an explicit zero.
type ReviewRequest struct {
	Comment string `json:"comment"`
	Rating  *int   `json:"rating"`
}

func toCards(in []CardRequest) []domain.Card {
	cards := make([]domain.Card, len(in))
	for i, c := range in {
		cards[i] = domain.Card{Question: c.Question, Answer: c.Answer}
	}
	return cards
}

// --- Handlers ---

// Create handles POST /api/v1/flashcards
func (h *FlashcardHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeUnauthenticated(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req CreateFlashcardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequestBody(w, err)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := service.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Cards:       toCards(req.Cards),
		IsHidden:    req.IsHidden,
	}

	set, err := h.service.Create(r.Context(), userID, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: set})
}

// List handles GET /api/v1/flashcards
func (h *FlashcardHandler) List(w http.ResponseWriter, r *http.Request) {
	sets, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: sets})
}

// Get handles GET /api/v1/flashcards/{id}
func (h *FlashcardHandler) Get(w http.ResponseWriter, r *http.Request) {
	set, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: set})
}

// Update handles PUT /api/v1/flashcards/{id}
func (h *FlashcardHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeUnauthenticated(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req UpdateFlashcardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequestBody(w, err)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := service.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		IsHidden:    req.IsHidden,
	}
	if req.Cards != nil {
		cards := toCards(*req.Cards)
		input.Cards = &cards
	}

	set, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: set})
}

// Delete handles DELETE /api/v1/flashcards/{id}
func (h *FlashcardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeUnauthenticated(w)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id, "status": "deleted"}})
}

// Rate handles POST /api/v1/flashcards/{id}/rate
func (h *FlashcardHandler) Rate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeUnauthenticated(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequestBody(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Rate(r.Context(), id, userID, req.Rating); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id, "status": "rated"}})
}

// AddReview handles POST /api/v1/flashcards/{id}/reviews
func (h *FlashcardHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeUnauthenticated(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequestBody(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.AddReview(r.Context(), id, userID, req.Comment, req.Rating); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: map[string]string{"id": id, "status": "reviewed"}})
}

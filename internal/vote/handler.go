package vote

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/snapplace/server/internal/auth"
	"github.com/snapplace/server/internal/httputil"
	"github.com/snapplace/server/internal/logging"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type castRequest struct {
	PlaceID string `json:"place_id"`
}

type voteData struct {
	ID      uuid.UUID `json:"id"`
	PlaceID uuid.UUID `json:"place_id"`
	UserID  uuid.UUID `json:"user_id"`
}

// Cast handles POST /votes.
func (h *Handler) Cast(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req castRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	placeID, err := uuid.Parse(req.PlaceID)
	if err != nil {
		h.respondPlaceInvalid(w)
		return
	}

	v, err := h.service.Cast(r.Context(), placeID, userID)
	if err != nil {
		if errors.Is(err, ErrPlaceNotFound) {
			h.respondPlaceInvalid(w)
			return
		}
		logging.GetLoggerFromContext(r.Context()).ErrorContext(r.Context(), "failed to cast vote", "error", err)
		httputil.RespondError(w, "Failed to vote", http.StatusInternalServerError)
		return
	}

	httputil.RespondSuccess(w, voteData{
		ID:      v.ID,
		PlaceID: v.PlaceID,
		UserID:  v.UserID,
	}, http.StatusCreated)
}

// Retract handles DELETE /votes/{place_id}.
func (h *Handler) Retract(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	placeID, err := uuid.Parse(chi.URLParam(r, "place_id"))
	if err != nil {
		h.respondPlaceInvalid(w)
		return
	}

	if err := h.service.Retract(r.Context(), placeID, userID); err != nil {
		logging.GetLoggerFromContext(r.Context()).ErrorContext(r.Context(), "failed to remove vote", "error", err)
		httputil.RespondError(w, "Failed to remove vote", http.StatusInternalServerError)
		return
	}

	httputil.RespondMessage(w, "Vote removed", http.StatusOK)
}

// Status handles GET /votes/{place_id}.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	placeID, err := uuid.Parse(chi.URLParam(r, "place_id"))
	if err != nil {
		h.respondPlaceInvalid(w)
		return
	}

	voted, v, err := h.service.Status(r.Context(), placeID, userID)
	if err != nil {
		logging.GetLoggerFromContext(r.Context()).ErrorContext(r.Context(), "failed to check vote", "error", err)
		httputil.RespondError(w, "Failed to check vote", http.StatusInternalServerError)
		return
	}

	httputil.RespondSuccess(w, map[string]any{
		"voted": voted,
		"data":  v,
	}, http.StatusOK)
}

// List handles GET /votes with an optional place_id query filter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var placeID *uuid.UUID
	if raw := r.URL.Query().Get("place_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.respondPlaceInvalid(w)
			return
		}
		placeID = &id
	}

	votes, err := h.service.List(r.Context(), placeID)
	if err != nil {
		logging.GetLoggerFromContext(r.Context()).ErrorContext(r.Context(), "failed to list votes", "error", err)
		httputil.RespondError(w, "Failed to list votes", http.StatusInternalServerError)
		return
	}

	httputil.RespondSuccess(w, votes, http.StatusOK)
}

func (h *Handler) respondPlaceInvalid(w http.ResponseWriter) {
	httputil.RespondValidationError(w, "Validation failed", map[string][]string{
		"place_id": {"The selected place does not exist."},
	})
}

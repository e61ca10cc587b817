package place

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/snapplace/server/internal/auth"
	"github.com/snapplace/server/internal/httputil"
	"github.com/snapplace/server/internal/logging"
)

// Creator is the slice of the repository the handler needs.
type Creator interface {
	Create(ctx context.Context, userID uuid.UUID, name, description string) (*Place, error)
}

type Handler struct {
	repo Creator
}

func NewHandler(repo Creator) *Handler {
	return &Handler{repo: repo}
}

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create handles POST /places.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	fieldErrors := map[string][]string{}
	if name := strings.TrimSpace(req.Name); name == "" || len(name) > 255 {
		fieldErrors["name"] = append(fieldErrors["name"], "The name field is required and must not exceed 255 characters.")
	}
	if len(fieldErrors) > 0 {
		httputil.RespondValidationError(w, "Validation failed", fieldErrors)
		return
	}

	p, err := h.repo.Create(r.Context(), userID, strings.TrimSpace(req.Name), req.Description)
	if err != nil {
		logging.GetLoggerFromContext(r.Context()).ErrorContext(r.Context(), "failed to create place", "error", err)
		httputil.RespondError(w, "Failed to create place", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, httputil.Envelope{
		Success: true,
		Data:    p,
		Message: "Place created",
	}, http.StatusCreated)
}

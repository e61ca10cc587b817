package push

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/snapplace/server/internal/auth"
	"github.com/snapplace/server/internal/httputil"
	"github.com/snapplace/server/internal/logging"
)

type Handler struct {
	repo           *Repository
	vapidPublicKey string
}

func NewHandler(repo *Repository, vapidPublicKey string) *Handler {
	return &Handler{repo: repo, vapidPublicKey: vapidPublicKey}
}

type subscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

type saveRequest struct {
	Endpoint string           `json:"endpoint"`
	Keys     subscriptionKeys `json:"keys"`
}

type deleteRequest struct {
	Endpoint string `json:"endpoint"`
}

// Save handles POST /save-subscription.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	fieldErrors := map[string][]string{}
	if !isValidURL(req.Endpoint) {
		fieldErrors["endpoint"] = append(fieldErrors["endpoint"], "A valid endpoint URL is required.")
	}
	if req.Keys.P256dh == "" {
		fieldErrors["keys.p256dh"] = append(fieldErrors["keys.p256dh"], "The keys.p256dh field is required.")
	}
	if req.Keys.Auth == "" {
		fieldErrors["keys.auth"] = append(fieldErrors["keys.auth"], "The keys.auth field is required.")
	}
	if len(fieldErrors) > 0 {
		httputil.RespondValidationError(w, "Validation failed", fieldErrors)
		return
	}

	if err := h.repo.Save(r.Context(), userID, req.Endpoint, req.Keys.P256dh, req.Keys.Auth); err != nil {
		logging.GetLoggerFromContext(r.Context()).ErrorContext(r.Context(), "failed to save subscription", "error", err)
		httputil.RespondError(w, "Failed to save subscription", http.StatusInternalServerError)
		return
	}

	httputil.RespondMessage(w, "Push subscription saved successfully", http.StatusOK)
}

// Delete handles POST /delete-subscription.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !isValidURL(req.Endpoint) {
		httputil.RespondValidationError(w, "Validation failed", map[string][]string{
			"endpoint": {"A valid endpoint URL is required."},
		})
		return
	}

	if err := h.repo.DeleteByEndpoint(r.Context(), userID, req.Endpoint); err != nil {
		logging.GetLoggerFromContext(r.Context()).ErrorContext(r.Context(), "failed to delete subscription", "error", err)
		httputil.RespondError(w, "Failed to delete subscription", http.StatusInternalServerError)
		return
	}

	httputil.RespondMessage(w, "Push subscription deleted successfully", http.StatusOK)
}

// PublicKey handles GET /vapid-public-key.
func (h *Handler) PublicKey(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]any{
		"success":   true,
		"publicKey": h.vapidPublicKey,
	}, http.StatusOK)
}

func isValidURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "https" || u.Scheme == "http") && u.Host != ""
}

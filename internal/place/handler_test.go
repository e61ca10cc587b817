package place

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapplace/server/internal/auth"
)

type fakeCreator struct {
	created *Place
	err     error
}

func (f *fakeCreator) Create(ctx context.Context, userID uuid.UUID, name, description string) (*Place, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = &Place{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	return f.created, nil
}

func doCreate(t *testing.T, h *Handler, body string, userID uuid.UUID) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/places", strings.NewReader(body))
	if userID != uuid.Nil {
		req = req.WithContext(context.WithValue(req.Context(), auth.UserIDContextKey, userID))
	}
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&decoded))
	return rec, decoded
}

func TestHandler_Create(t *testing.T) {
	repo := &fakeCreator{}
	h := NewHandler(repo)
	userID := uuid.New()

	rec, body := doCreate(t, h, `{"name": "Café Central", "description": "Buen café"}`, userID)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Place created", body["message"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "Café Central", data["name"])
	assert.Equal(t, userID.String(), data["user_id"])
}

func TestHandler_Create_MissingName(t *testing.T) {
	h := NewHandler(&fakeCreator{})

	rec, body := doCreate(t, h, `{"description": "sin nombre"}`, uuid.New())

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, false, body["success"])

	errs := body["errors"].(map[string]any)
	assert.Contains(t, errs, "name")
}

func TestHandler_Create_Unauthenticated(t *testing.T) {
	h := NewHandler(&fakeCreator{})

	rec, _ := doCreate(t, h, `{"name": "Café Central"}`, uuid.Nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestRespondSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondSuccess(rec, map[string]string{"key": "value"}, http.StatusOK)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"key": "value"}, body["data"])
	assert.NotContains(t, body, "message")
	assert.NotContains(t, body, "errors")
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, "something broke", http.StatusInternalServerError)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "something broke", body["message"])
	assert.NotContains(t, body, "data")
}

func TestRespondValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondValidationError(rec, "Validation failed", map[string][]string{
		"email": {"A valid email is required."},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Validation failed", body["message"])

	errs := body["errors"].(map[string]any)
	assert.Contains(t, errs, "email")
}

func TestRespondMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondMessage(rec, "Sesión cerrada", http.StatusOK)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Sesión cerrada", body["message"])
}

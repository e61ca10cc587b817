package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleCaptchaVerifier(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     bool
		wantErr  bool
	}{
		{"accepted", `{"success": true}`, true, false},
		{"rejected", `{"success": false}`, false, false},
		{"malformed body fails closed", `not json`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, r.ParseForm())
				assert.Equal(t, "secret-key", r.PostForm.Get("secret"))
				assert.Equal(t, "client-token", r.PostForm.Get("response"))

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.response))
			}))
			defer srv.Close()

			v := NewGoogleCaptchaVerifier("secret-key", srv.URL)

			ok, err := v.Verify(context.Background(), "client-token", "1.2.3.4")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestGoogleCaptchaVerifier_TransportFailure(t *testing.T) {
	v := NewGoogleCaptchaVerifier("secret-key", "http://127.0.0.1:1/siteverify")

	ok, err := v.Verify(context.Background(), "client-token", "")
	assert.Error(t, err)
	assert.False(t, ok)
}

package auth

import (
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode_Range(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestClassifyCodes(t *testing.T) {
	now := time.Now()
	userID := uuid.New()

	valid := Code{ID: uuid.New(), UserID: userID, Code: "123456", ExpiresAt: now.Add(5 * time.Minute)}
	expired := Code{ID: uuid.New(), UserID: userID, Code: "123456", ExpiresAt: now.Add(-5 * time.Minute)}
	used := Code{ID: uuid.New(), UserID: userID, Code: "123456", ExpiresAt: now.Add(5 * time.Minute), Used: true}

	tests := []struct {
		name    string
		codes   []Code
		wantID  uuid.UUID
		wantErr error
	}{
		{
			name:   "live code matches",
			codes:  []Code{valid},
			wantID: valid.ID,
		},
		{
			name:    "expired code",
			codes:   []Code{expired},
			wantErr: ErrCodeExpired,
		},
		{
			name:    "used code",
			codes:   []Code{used},
			wantErr: ErrCodeAlreadyUsed,
		},
		{
			name:    "no rows at all",
			codes:   nil,
			wantErr: ErrCodeNotFound,
		},
		{
			name:   "live code wins over expired and used rows",
			codes:  []Code{expired, used, valid},
			wantID: valid.ID,
		},
		{
			name:    "expired reported before used",
			codes:   []Code{used, expired},
			wantErr: ErrCodeExpired,
		},
		{
			name:   "two live codes, first one returned",
			codes:  []Code{valid, {ID: uuid.New(), UserID: userID, Code: "123456", ExpiresAt: now.Add(time.Minute)}},
			wantID: valid.ID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClassifyCodes(tt.codes, now)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestClassifyCodes_ExpiryBoundary(t *testing.T) {
	now := time.Now()

	// A code expiring exactly now is already expired.
	boundary := Code{ID: uuid.New(), Code: "654321", ExpiresAt: now}

	_, err := ClassifyCodes([]Code{boundary}, now)
	assert.ErrorIs(t, err, ErrCodeExpired)
}

package vote

import (
	"time"

	"github.com/google/uuid"
)

// Vote is one user's vote on one place. A retracted vote keeps its row with
// DeletedAt set; casting again restores the same row, so a (place, user)
// pair never accumulates more than one row.
type Vote struct {
	ID        uuid.UUID `json:"id"`
	PlaceID   uuid.UUID `json:"place_id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	DeletedAt time.Time `json:"-"`
}

// Retracted reports whether the vote is currently soft-deleted.
func (v *Vote) Retracted() bool {
	return !v.DeletedAt.IsZero()
}

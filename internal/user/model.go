package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the domain representation of an account. PasswordHash never leaves
// the auth layer; handlers serialize their own response shapes.
type User struct {
	ID           uuid.UUID
	Name         string
	LastName     string
	Email        string
	PasswordHash string
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User mirrors the users table. Uniqueness of email among non-deleted rows is
// enforced by a partial unique index (see migrations), not by the model.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name         string    `bun:"name,notnull"`
	LastName     string    `bun:"last_name,notnull"`
	Email        string    `bun:"email,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	IsVerified   bool      `bun:"is_verified,notnull,default:false"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
	DeletedAt    time.Time `bun:"deleted_at,soft_delete,nullzero"`
}

// TwoFactorCode mirrors the two_factor_codes table. Rows are never deleted;
// consumption flips used to true.
type TwoFactorCode struct {
	bun.BaseModel `bun:"table:two_factor_codes,alias:tfc"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	UserID    uuid.UUID `bun:"user_id,notnull,type:uuid"`
	Code      string    `bun:"code,notnull"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
	Used      bool      `bun:"used,notnull,default:false"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`

	User *User `bun:"rel:belongs-to,join:user_id=id"`
}

// Place mirrors the places table.
type Place struct {
	bun.BaseModel `bun:"table:places,alias:p"`

	ID          uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	UserID      uuid.UUID `bun:"user_id,notnull,type:uuid"`
	Name        string    `bun:"name,notnull"`
	Description string    `bun:"description"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
	DeletedAt   time.Time `bun:"deleted_at,soft_delete,nullzero"`

	Owner *User `bun:"rel:belongs-to,join:user_id=id"`
}

// PlaceVote mirrors the place_votes table. The (place_id, user_id) pair is
// unique across the row's entire history, soft-deleted rows included; a
// retracted vote is restored in place rather than re-inserted.
type PlaceVote struct {
	bun.BaseModel `bun:"table:place_votes,alias:pv"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	PlaceID   uuid.UUID `bun:"place_id,notnull,type:uuid"`
	UserID    uuid.UUID `bun:"user_id,notnull,type:uuid"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
	DeletedAt time.Time `bun:"deleted_at,soft_delete,nullzero"`
}

// PushSubscription mirrors the push_subscriptions table.
type PushSubscription struct {
	bun.BaseModel `bun:"table:push_subscriptions,alias:ps"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	UserID    uuid.UUID `bun:"user_id,notnull,type:uuid"`
	Endpoint  string    `bun:"endpoint,notnull,unique"`
	P256dh    string    `bun:"p256dh,notnull"`
	Auth      string    `bun:"auth,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Role mirrors the roles table.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:r"`

	ID   uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name string    `bun:"name,notnull,unique"`
}

// UserRole mirrors the user_roles join table.
type UserRole struct {
	bun.BaseModel `bun:"table:user_roles,alias:ur"`

	UserID uuid.UUID `bun:"user_id,pk,type:uuid"`
	RoleID uuid.UUID `bun:"role_id,pk,type:uuid"`
}

package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/snapplace/server/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new unverified account and returns it with the generated
// ID and timestamps filled in.
func (r *Repository) Create(ctx context.Context, name, lastName, email, passwordHash string) (*User, error) {
	dbUser := &database.User{
		Name:         name,
		LastName:     lastName,
		Email:        email,
		PasswordHash: passwordHash,
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail returns the active account with the given email. Soft-deleted
// accounts are excluded by the model's soft_delete clause.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)

	err := r.db.NewSelect().
		Model(dbUser).
		Where("lower(u.email) = lower(?)", email).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID returns the active account with the given ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)

	err := r.db.NewSelect().
		Model(dbUser).
		Where("u.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return mapDBUserToModel(dbUser), nil
}

// MarkVerified flips is_verified to true for the given account.
func (r *Repository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("is_verified = true").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// SoftDelete marks the account as deleted, freeing its email for re-use.
// The registration flow uses this to compensate when the verification email
// cannot be delivered.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*database.User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// AssignRole attaches the named role to the account. Unknown role names
// return ErrNotFound.
func (r *Repository) AssignRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	role := new(database.Role)

	err := r.db.NewSelect().
		Model(role).
		Where("r.name = ?", roleName).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	_, err = r.db.NewInsert().
		Model(&database.UserRole{UserID: userID, RoleID: role.ID}).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	return err
}

// RoleNames returns the names of all roles attached to the account.
func (r *Repository) RoleNames(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var names []string

	err := r.db.NewSelect().
		Model((*database.Role)(nil)).
		Column("r.name").
		Join("JOIN user_roles AS ur ON ur.role_id = r.id").
		Where("ur.user_id = ?", userID).
		Scan(ctx, &names)
	if err != nil {
		return nil, err
	}

	return names, nil
}

func isDuplicateKeyError(err error) bool {
	return strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}

func mapDBUserToModel(u *database.User) *User {
	return &User{
		ID:           u.ID,
		Name:         u.Name,
		LastName:     u.LastName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		IsVerified:   u.IsVerified,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

package place

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/snapplace/server/internal/database"
)

var ErrNotFound = errors.New("place not found")

type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new place owned by userID.
func (r *Repository) Create(ctx context.Context, userID uuid.UUID, name, description string) (*Place, error) {
	dbPlace := &database.Place{
		UserID:      userID,
		Name:        name,
		Description: description,
	}

	_, err := r.db.NewInsert().
		Model(dbPlace).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return mapDBPlaceToModel(dbPlace), nil
}

// GetActive returns the place if it exists and is not soft-deleted.
func (r *Repository) GetActive(ctx context.Context, id uuid.UUID) (*Place, error) {
	dbPlace := new(database.Place)

	err := r.db.NewSelect().
		Model(dbPlace).
		Where("p.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return mapDBPlaceToModel(dbPlace), nil
}

func mapDBPlaceToModel(p *database.Place) *Place {
	return &Place{
		ID:          p.ID,
		UserID:      p.UserID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

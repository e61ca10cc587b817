package vote

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/snapplace/server/internal/database"
)

var ErrNotFound = errors.New("vote not found")

type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// FindAnyByPair returns the row for (place, user) whether active or
// soft-deleted. The unique index guarantees at most one exists.
func (r *Repository) FindAnyByPair(ctx context.Context, placeID, userID uuid.UUID) (*Vote, error) {
	dbVote := new(database.PlaceVote)

	err := r.db.NewSelect().
		Model(dbVote).
		WhereAllWithDeleted().
		Where("pv.place_id = ?", placeID).
		Where("pv.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return mapDBVoteToModel(dbVote), nil
}

// FindActiveByPair returns the active row for (place, user), if any.
func (r *Repository) FindActiveByPair(ctx context.Context, placeID, userID uuid.UUID) (*Vote, error) {
	dbVote := new(database.PlaceVote)

	err := r.db.NewSelect().
		Model(dbVote).
		Where("pv.place_id = ?", placeID).
		Where("pv.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return mapDBVoteToModel(dbVote), nil
}

// Insert creates a fresh active vote row.
func (r *Repository) Insert(ctx context.Context, placeID, userID uuid.UUID) (*Vote, error) {
	dbVote := &database.PlaceVote{
		PlaceID: placeID,
		UserID:  userID,
	}

	_, err := r.db.NewInsert().
		Model(dbVote).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return mapDBVoteToModel(dbVote), nil
}

// Restore clears deleted_at on a soft-deleted row, keeping its identity.
func (r *Repository) Restore(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewUpdate().
		Model((*database.PlaceVote)(nil)).
		Set("deleted_at = NULL").
		Set("updated_at = ?", time.Now()).
		WhereAllWithDeleted().
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

// SoftDeleteByPair retracts the active vote for (place, user). Deleting a
// pair that has no active vote is a no-op, not an error.
func (r *Repository) SoftDeleteByPair(ctx context.Context, placeID, userID uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*database.PlaceVote)(nil)).
		Where("place_id = ?", placeID).
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}

// CountActiveByPlace counts the active votes for a place.
func (r *Repository) CountActiveByPlace(ctx context.Context, placeID uuid.UUID) (int, error) {
	return r.db.NewSelect().
		Model((*database.PlaceVote)(nil)).
		Where("pv.place_id = ?", placeID).
		Count(ctx)
}

// ListActive returns active votes, optionally filtered by place.
func (r *Repository) ListActive(ctx context.Context, placeID *uuid.UUID) ([]Vote, error) {
	var dbVotes []database.PlaceVote

	q := r.db.NewSelect().Model(&dbVotes)
	if placeID != nil {
		q = q.Where("pv.place_id = ?", *placeID)
	}

	if err := q.Order("pv.created_at DESC").Scan(ctx); err != nil {
		return nil, err
	}

	votes := make([]Vote, len(dbVotes))
	for i := range dbVotes {
		votes[i] = *mapDBVoteToModel(&dbVotes[i])
	}

	return votes, nil
}

func mapDBVoteToModel(v *database.PlaceVote) *Vote {
	return &Vote{
		ID:        v.ID,
		PlaceID:   v.PlaceID,
		UserID:    v.UserID,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
		DeletedAt: v.DeletedAt,
	}
}

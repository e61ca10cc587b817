package vote

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/snapplace/server/internal/logging"
	"github.com/snapplace/server/internal/place"
	"github.com/snapplace/server/internal/user"
)

// ErrPlaceNotFound means the vote targets a place that does not exist or has
// been soft-deleted.
var ErrPlaceNotFound = errors.New("place does not exist")

// VoteStore is the persistence surface the service needs.
type VoteStore interface {
	FindAnyByPair(ctx context.Context, placeID, userID uuid.UUID) (*Vote, error)
	FindActiveByPair(ctx context.Context, placeID, userID uuid.UUID) (*Vote, error)
	Insert(ctx context.Context, placeID, userID uuid.UUID) (*Vote, error)
	Restore(ctx context.Context, id uuid.UUID) error
	SoftDeleteByPair(ctx context.Context, placeID, userID uuid.UUID) error
	CountActiveByPlace(ctx context.Context, placeID uuid.UUID) (int, error)
	ListActive(ctx context.Context, placeID *uuid.UUID) ([]Vote, error)
}

// PlaceGetter resolves active places.
type PlaceGetter interface {
	GetActive(ctx context.Context, id uuid.UUID) (*place.Place, error)
}

// UserGetter resolves voters for the notification payload.
type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Notifier pushes a new-vote notification to the place owner. Implementations
// are best-effort; the service never fails a vote over a notification.
type Notifier interface {
	NotifyNewVote(ctx context.Context, ownerID uuid.UUID, placeName string, placeID uuid.UUID, voterName string, totalVotes int) error
}

// Service enforces the one-vote-per-user-per-place rule. A pair's history
// lives in a single row: first cast inserts it, retract soft-deletes it,
// casting again restores it.
type Service struct {
	votes    VoteStore
	places   PlaceGetter
	users    UserGetter
	notifier Notifier
	logger   *logging.Logger
}

func NewService(votes VoteStore, places PlaceGetter, users UserGetter, notifier Notifier, logger *logging.Logger) *Service {
	return &Service{
		votes:    votes,
		places:   places,
		users:    users,
		notifier: notifier,
		logger:   logger,
	}
}

// Cast records userID's vote on placeID and returns the canonical row.
// Re-voting an active pair is an idempotent success. Every successful cast
// triggers a best-effort notification to the place owner unless the voter
// owns the place.
func (s *Service) Cast(ctx context.Context, placeID, userID uuid.UUID) (*Vote, error) {
	p, err := s.places.GetActive(ctx, placeID)
	if err != nil {
		if errors.Is(err, place.ErrNotFound) {
			return nil, ErrPlaceNotFound
		}
		return nil, err
	}

	v, err := s.votes.FindAnyByPair(ctx, placeID, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		v, err = s.votes.Insert(ctx, placeID, userID)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case v.Retracted():
		if err := s.votes.Restore(ctx, v.ID); err != nil {
			return nil, err
		}
		v.DeletedAt = time.Time{}
	}

	s.notifyOwner(ctx, p, userID)

	return v, nil
}

// Retract soft-deletes userID's vote on placeID. Retracting a pair with no
// active vote succeeds silently.
func (s *Service) Retract(ctx context.Context, placeID, userID uuid.UUID) error {
	return s.votes.SoftDeleteByPair(ctx, placeID, userID)
}

// Status reports whether userID currently has an active vote on placeID,
// and the row if so.
func (s *Service) Status(ctx context.Context, placeID, userID uuid.UUID) (bool, *Vote, error) {
	v, err := s.votes.FindActiveByPair(ctx, placeID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil, nil
		}
		return false, nil, err
	}
	return true, v, nil
}

// List returns active votes, optionally restricted to one place.
func (s *Service) List(ctx context.Context, placeID *uuid.UUID) ([]Vote, error) {
	return s.votes.ListActive(ctx, placeID)
}

// notifyOwner is best-effort end to end: any failure is logged and dropped.
func (s *Service) notifyOwner(ctx context.Context, p *place.Place, voterID uuid.UUID) {
	if p.UserID == voterID {
		return
	}

	voter, err := s.users.GetByID(ctx, voterID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load voter for notification", "error", err)
		return
	}

	total, err := s.votes.CountActiveByPlace(ctx, p.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to count votes for notification", "error", err)
		return
	}

	voterName := voter.Name + " " + voter.LastName
	if err := s.notifier.NotifyNewVote(ctx, p.UserID, p.Name, p.ID, voterName, total); err != nil {
		s.logger.WarnContext(ctx, "failed to send vote notification", "error", err)
	}
}

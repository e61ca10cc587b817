package push

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/snapplace/server/internal/database"
)

// Subscription is one browser push endpoint registered by a user.
type Subscription struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Endpoint  string
	P256dh    string
	Auth      string
	CreatedAt time.Time
}

type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Save upserts a subscription keyed by endpoint. A browser re-registering an
// endpoint takes it over, even from another account.
func (r *Repository) Save(ctx context.Context, userID uuid.UUID, endpoint, p256dh, auth string) error {
	sub := &database.PushSubscription{
		UserID:   userID,
		Endpoint: endpoint,
		P256dh:   p256dh,
		Auth:     auth,
	}

	_, err := r.db.NewInsert().
		Model(sub).
		On("CONFLICT (endpoint) DO UPDATE").
		Set("user_id = EXCLUDED.user_id").
		Set("p256dh = EXCLUDED.p256dh").
		Set("auth = EXCLUDED.auth").
		Exec(ctx)
	return err
}

// DeleteByEndpoint removes the user's subscription for the endpoint.
// Deleting an unknown endpoint is a no-op.
func (r *Repository) DeleteByEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) error {
	_, err := r.db.NewDelete().
		Model((*database.PushSubscription)(nil)).
		Where("user_id = ?", userID).
		Where("endpoint = ?", endpoint).
		Exec(ctx)
	return err
}

// ListByUser returns all subscriptions registered by the user.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Subscription, error) {
	var dbSubs []database.PushSubscription

	err := r.db.NewSelect().
		Model(&dbSubs).
		Where("ps.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	subs := make([]Subscription, len(dbSubs))
	for i, s := range dbSubs {
		subs[i] = Subscription{
			ID:        s.ID,
			UserID:    s.UserID,
			Endpoint:  s.Endpoint,
			P256dh:    s.P256dh,
			Auth:      s.Auth,
			CreatedAt: s.CreatedAt,
		}
	}

	return subs, nil
}

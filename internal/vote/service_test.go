package vote

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapplace/server/internal/logging"
	"github.com/snapplace/server/internal/place"
	"github.com/snapplace/server/internal/user"
)

// ---- fakes ----

type fakeVoteStore struct {
	existing   *Vote
	inserted   *Vote
	restoredID uuid.UUID
	deleted    [][2]uuid.UUID
	active     *Vote
	count      int
	countErr   error
	list       []Vote
}

func (f *fakeVoteStore) FindAnyByPair(ctx context.Context, placeID, userID uuid.UUID) (*Vote, error) {
	if f.existing == nil {
		return nil, ErrNotFound
	}
	v := *f.existing
	return &v, nil
}

func (f *fakeVoteStore) FindActiveByPair(ctx context.Context, placeID, userID uuid.UUID) (*Vote, error) {
	if f.active == nil {
		return nil, ErrNotFound
	}
	return f.active, nil
}

func (f *fakeVoteStore) Insert(ctx context.Context, placeID, userID uuid.UUID) (*Vote, error) {
	f.inserted = &Vote{ID: uuid.New(), PlaceID: placeID, UserID: userID, CreatedAt: time.Now()}
	return f.inserted, nil
}

func (f *fakeVoteStore) Restore(ctx context.Context, id uuid.UUID) error {
	f.restoredID = id
	return nil
}

func (f *fakeVoteStore) SoftDeleteByPair(ctx context.Context, placeID, userID uuid.UUID) error {
	f.deleted = append(f.deleted, [2]uuid.UUID{placeID, userID})
	return nil
}

func (f *fakeVoteStore) CountActiveByPlace(ctx context.Context, placeID uuid.UUID) (int, error) {
	return f.count, f.countErr
}

func (f *fakeVoteStore) ListActive(ctx context.Context, placeID *uuid.UUID) ([]Vote, error) {
	return f.list, nil
}

type fakePlaces struct {
	places map[uuid.UUID]*place.Place
}

func (f *fakePlaces) GetActive(ctx context.Context, id uuid.UUID) (*place.Place, error) {
	p, ok := f.places[id]
	if !ok {
		return nil, place.ErrNotFound
	}
	return p, nil
}

type fakeUsers struct {
	users map[uuid.UUID]*user.User
}

func (f *fakeUsers) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

type fakeNotifier struct {
	calls []notifyCall
	err   error
}

type notifyCall struct {
	ownerID    uuid.UUID
	placeID    uuid.UUID
	voterName  string
	totalVotes int
}

func (f *fakeNotifier) NotifyNewVote(ctx context.Context, ownerID uuid.UUID, placeName string, placeID uuid.UUID, voterName string, totalVotes int) error {
	f.calls = append(f.calls, notifyCall{ownerID: ownerID, placeID: placeID, voterName: voterName, totalVotes: totalVotes})
	return f.err
}

// ---- fixture ----

type voteFixture struct {
	store    *fakeVoteStore
	placesF  *fakePlaces
	usersF   *fakeUsers
	notifier *fakeNotifier
	svc      *Service

	owner *user.User
	voter *user.User
	place *place.Place
}

func newVoteFixture(t *testing.T) *voteFixture {
	t.Helper()

	owner := &user.User{ID: uuid.New(), Name: "Olga", LastName: "Dueña"}
	voter := &user.User{ID: uuid.New(), Name: "Ana", LastName: "García"}
	p := &place.Place{ID: uuid.New(), UserID: owner.ID, Name: "Café Central"}

	f := &voteFixture{
		store:    &fakeVoteStore{count: 1},
		placesF:  &fakePlaces{places: map[uuid.UUID]*place.Place{p.ID: p}},
		usersF:   &fakeUsers{users: map[uuid.UUID]*user.User{owner.ID: owner, voter.ID: voter}},
		notifier: &fakeNotifier{},
		owner:    owner,
		voter:    voter,
		place:    p,
	}
	f.svc = NewService(f.store, f.placesF, f.usersF, f.notifier, logging.NewLogger(true))

	return f
}

// ---- tests ----

func TestService_Cast_NewVote(t *testing.T) {
	f := newVoteFixture(t)

	v, err := f.svc.Cast(context.Background(), f.place.ID, f.voter.ID)
	require.NoError(t, err)
	require.NotNil(t, f.store.inserted)
	assert.Equal(t, f.store.inserted.ID, v.ID)
	assert.False(t, v.Retracted())

	require.Len(t, f.notifier.calls, 1)
	call := f.notifier.calls[0]
	assert.Equal(t, f.owner.ID, call.ownerID)
	assert.Equal(t, "Ana García", call.voterName)
	assert.Equal(t, 1, call.totalVotes)
}

func TestService_Cast_RestoresRetractedRow(t *testing.T) {
	f := newVoteFixture(t)
	f.store.existing = &Vote{
		ID:        uuid.New(),
		PlaceID:   f.place.ID,
		UserID:    f.voter.ID,
		DeletedAt: time.Now().Add(-time.Hour),
	}

	v, err := f.svc.Cast(context.Background(), f.place.ID, f.voter.ID)
	require.NoError(t, err)

	// Same row comes back, restored in place.
	assert.Equal(t, f.store.existing.ID, v.ID)
	assert.Equal(t, f.store.existing.ID, f.store.restoredID)
	assert.False(t, v.Retracted())
	assert.Nil(t, f.store.inserted)

	// A restore-cast notifies the owner just like a first cast.
	assert.Len(t, f.notifier.calls, 1)
}

func TestService_Cast_IdempotentRevote(t *testing.T) {
	f := newVoteFixture(t)
	f.store.existing = &Vote{ID: uuid.New(), PlaceID: f.place.ID, UserID: f.voter.ID}

	v, err := f.svc.Cast(context.Background(), f.place.ID, f.voter.ID)
	require.NoError(t, err)
	assert.Equal(t, f.store.existing.ID, v.ID)
	assert.Nil(t, f.store.inserted)
	assert.Equal(t, uuid.Nil, f.store.restoredID)
}

func TestService_Cast_PlaceNotFound(t *testing.T) {
	f := newVoteFixture(t)

	_, err := f.svc.Cast(context.Background(), uuid.New(), f.voter.ID)
	assert.ErrorIs(t, err, ErrPlaceNotFound)
	assert.Empty(t, f.notifier.calls)
}

func TestService_Cast_SelfVoteSkipsNotification(t *testing.T) {
	f := newVoteFixture(t)

	_, err := f.svc.Cast(context.Background(), f.place.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Empty(t, f.notifier.calls)
}

func TestService_Cast_NotificationFailureDoesNotFailVote(t *testing.T) {
	f := newVoteFixture(t)
	f.notifier.err = assert.AnError

	v, err := f.svc.Cast(context.Background(), f.place.ID, f.voter.ID)
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestService_Cast_CountFailureSkipsNotification(t *testing.T) {
	f := newVoteFixture(t)
	f.store.countErr = assert.AnError

	_, err := f.svc.Cast(context.Background(), f.place.ID, f.voter.ID)
	require.NoError(t, err)
	assert.Empty(t, f.notifier.calls)
}

func TestService_Retract_Idempotent(t *testing.T) {
	f := newVoteFixture(t)

	// No existing vote: still succeeds.
	require.NoError(t, f.svc.Retract(context.Background(), f.place.ID, f.voter.ID))
	require.NoError(t, f.svc.Retract(context.Background(), f.place.ID, f.voter.ID))
	assert.Len(t, f.store.deleted, 2)
}

func TestService_Status(t *testing.T) {
	f := newVoteFixture(t)

	voted, v, err := f.svc.Status(context.Background(), f.place.ID, f.voter.ID)
	require.NoError(t, err)
	assert.False(t, voted)
	assert.Nil(t, v)

	f.store.active = &Vote{ID: uuid.New(), PlaceID: f.place.ID, UserID: f.voter.ID}

	voted, v, err = f.svc.Status(context.Background(), f.place.ID, f.voter.ID)
	require.NoError(t, err)
	assert.True(t, voted)
	assert.Equal(t, f.store.active.ID, v.ID)
}

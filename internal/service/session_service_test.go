package service

import (
	"context"
	"testing"
	"time"

	"tria-chat-be/internal/entity"
	"tria-chat-be/internal/pkg/logger"
	"tria-chat-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionService(db *memDB, clock *fakeClock, pub *recordingPublisher) *sessionService {
	return &sessionService{
		uowFactory:     db,
		lifetime:       30 * 24 * time.Hour,
		eventPublisher: pub,
		logger:         logger.NewNopLogger(),
		now:            clock.Now,
	}
}

func TestSessionService_IssueAndValidate(t *testing.T) {
	db := newMemDB()
	clock := newFakeClock()
	svc := newTestSessionService(db, clock, &recordingPublisher{})
	ctx := context.Background()

	account := entity.Account{Id: uuid.New(), Email: "a@example.com"}
	db.accounts[account.Id] = account

	session, err := svc.Issue(ctx, &account)
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(30*24*time.Hour), session.ExpiresAt)
	_, err = uuid.Parse(session.SessionToken)
	assert.NoError(t, err)

	sc, err := svc.Validate(ctx, session.SessionToken)
	require.NoError(t, err)
	assert.True(t, sc.IsAuthenticated())
	assert.Equal(t, account.Id, sc.AccountID())
	assert.Equal(t, session.Id, sc.Session.Id)
}

func TestSessionService_ValidateRejectsUnknownAndEmpty(t *testing.T) {
	db := newMemDB()
	svc := newTestSessionService(db, newFakeClock(), &recordingPublisher{})

	_, err := svc.Validate(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = svc.Validate(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionService_ValidateDeletesExpired(t *testing.T) {
	db := newMemDB()
	clock := newFakeClock()
	svc := newTestSessionService(db, clock, &recordingPublisher{})
	ctx := context.Background()

	account := entity.Account{Id: uuid.New(), Email: "a@example.com"}
	db.accounts[account.Id] = account
	session, err := svc.Issue(ctx, &account)
	require.NoError(t, err)

	clock.Advance(30 * 24 * time.Hour)
	_, err = svc.Validate(ctx, session.SessionToken)
	assert.ErrorIs(t, err, ErrInvalidSession)
	assert.Empty(t, db.sessions)
}

func TestSessionService_SignOut(t *testing.T) {
	db := newMemDB()
	clock := newFakeClock()
	pub := &recordingPublisher{}
	svc := newTestSessionService(db, clock, pub)
	ctx := context.Background()

	sc := seedAccount(db, "a@example.com")
	require.NoError(t, svc.SignOut(ctx, sc))

	_, err := svc.Validate(ctx, sc.Session.SessionToken)
	assert.ErrorIs(t, err, ErrInvalidSession)
	assert.Equal(t, []string{events.AccountSignedOut}, pub.types())

	assert.ErrorIs(t, svc.SignOut(ctx, nil), ErrUnauthenticated)
}

func TestSessionService_PurgeExpired(t *testing.T) {
	db := newMemDB()
	clock := newFakeClock()
	svc := newTestSessionService(db, clock, &recordingPublisher{})
	ctx := context.Background()

	account := entity.Account{Id: uuid.New(), Email: "a@example.com"}
	db.accounts[account.Id] = account
	_, err := svc.Issue(ctx, &account)
	require.NoError(t, err)

	clock.Advance(10 * 24 * time.Hour)
	fresh, err := svc.Issue(ctx, &account)
	require.NoError(t, err)

	clock.Advance(25 * 24 * time.Hour)
	n, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, stillThere := db.sessions[fresh.Id]
	assert.True(t, stillThere)
}

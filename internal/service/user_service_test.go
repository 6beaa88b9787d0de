package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"tria-chat-be/internal/dto"
	"tria-chat-be/internal/pkg/logger"
	"tria-chat-be/pkg/persona"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	enabled bool
	err     error
	sent    []string
	data    []byte
}

func (m *fakeMailer) Enabled() bool { return m.enabled }

func (m *fakeMailer) SendTranscriptExport(toEmail, displayName, filename string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, toEmail+"|"+filename)
	m.data = data
	return nil
}

func newTestUserService(db *memDB, clock *fakeClock, mail *fakeMailer) *userService {
	return &userService{
		uowFactory:    db,
		conversations: newTestConversationService(db, clock, &recordingPublisher{}),
		emailService:  mail,
		logger:        logger.NewNopLogger(),
		now:           clock.Now,
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	db := newMemDB()
	clock := newFakeClock()
	svc := newTestUserService(db, clock, &fakeMailer{})
	session := seedAccount(db, "a@example.com")
	ctx := context.Background()

	res, err := svc.UpdateProfile(ctx, session, &dto.UpdateProfileRequest{DisplayName: "  Ada "})
	require.NoError(t, err)
	require.NotNil(t, res.DisplayName)
	assert.Equal(t, "Ada", *res.DisplayName)
	assert.Equal(t, clock.Now(), db.accounts[session.AccountID()].UpdatedAt)

	clock.Advance(time.Hour)
	res, err = svc.UpdateProfile(ctx, session, &dto.UpdateProfileRequest{DisplayName: ""})
	require.NoError(t, err)
	assert.Equal(t, "Ada", *res.DisplayName)
	assert.Equal(t, clock.Now().Add(-time.Hour), db.accounts[session.AccountID()].UpdatedAt)

	profile, err := svc.GetProfile(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, "Ada", *profile.DisplayName)
}

func TestUserService_DeleteAccountIsAStub(t *testing.T) {
	db := newMemDB()
	svc := newTestUserService(db, newFakeClock(), &fakeMailer{})
	session := seedAccount(db, "a@example.com")

	res, err := svc.DeleteAccount(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, DeleteAccountMessage, res.Message)
	assert.Len(t, db.accounts, 1)

	_, err = svc.DeleteAccount(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUserService_ExportByEmail(t *testing.T) {
	db := newMemDB()
	clock := newFakeClock()
	mail := &fakeMailer{enabled: true}
	svc := newTestUserService(db, clock, mail)
	session := seedAccount(db, "a@example.com")
	ctx := context.Background()

	_, err := svc.conversations.Create(ctx, session, &dto.CreateConversationRequest{ChatType: persona.ChatTypeDualPersona})
	require.NoError(t, err)

	plain, err := svc.Export(ctx, session, false)
	require.NoError(t, err)
	assert.False(t, plain.Emailed)
	assert.Empty(t, mail.sent)

	mailed, err := svc.Export(ctx, session, true)
	require.NoError(t, err)
	assert.True(t, mailed.Emailed)
	assert.Equal(t, []string{"a@example.com|chat-export-2025-03-14.json"}, mail.sent)

	var decoded dto.ExportResponse
	require.NoError(t, json.Unmarshal(mail.data, &decoded))
	assert.Len(t, decoded.Conversations, 1)
}

func TestUserService_ExportEmailFailuresAreSoft(t *testing.T) {
	db := newMemDB()
	clock := newFakeClock()
	session := seedAccount(db, "a@example.com")

	disabled := newTestUserService(db, clock, &fakeMailer{enabled: false})
	res, err := disabled.Export(context.Background(), session, true)
	require.NoError(t, err)
	assert.False(t, res.Emailed)

	failing := newTestUserService(db, clock, &fakeMailer{enabled: true, err: errors.New("smtp down")})
	res, err = failing.Export(context.Background(), session, true)
	require.NoError(t, err)
	assert.False(t, res.Emailed)
}

package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"tria-chat-be/internal/dto"
	"tria-chat-be/internal/pkg/logger"
	"tria-chat-be/internal/repository/memory"
	"tria-chat-be/pkg/llm"
	"tria-chat-be/pkg/persona"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoProvider answers with its name and remembers every prompt it saw.
type echoProvider struct {
	name    string
	mu      sync.Mutex
	prompts []string
	models  []string
}

func (p *echoProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	var o llm.Options
	for _, opt := range options {
		opt(&o)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, history[len(history)-1].Content)
	p.models = append(p.models, o.Model)
	return p.name + " reply", nil
}

func (p *echoProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

func (p *echoProvider) lastPrompt() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prompts[len(p.prompts)-1]
}

type capturingPublisher struct {
	mu       sync.Mutex
	payloads []dto.PublishTranscriptEntryMessage
}

func (p *capturingPublisher) Publish(ctx context.Context, payload []byte) error {
	var msg dto.PublishTranscriptEntryMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, msg)
	return nil
}

type chatFixture struct {
	db        *memDB
	clock     *fakeClock
	providers map[string]*echoProvider
	publisher *capturingPublisher
	guests    *memory.GuestRepository
	svc       *chatService
}

func newChatFixture() *chatFixture {
	f := &chatFixture{
		db:        newMemDB(),
		clock:     newFakeClock(),
		providers: map[string]*echoProvider{},
		publisher: &capturingPublisher{},
		guests:    memory.NewGuestRepository(time.Hour),
	}

	llmProviders := map[string]llm.LLMProvider{}
	for _, sender := range []string{persona.SenderLeo, persona.SenderMax, persona.SenderTutor1, persona.SenderTutor2} {
		p := &echoProvider{name: sender}
		f.providers[sender] = p
		llmProviders[sender] = p
	}

	orchestrator := persona.NewOrchestrator(llmProviders, persona.WithPacer(persona.NoPacing))
	f.svc = &chatService{
		uowFactory:       f.db,
		orchestrator:     orchestrator,
		turns:            persona.NewTurnQueue(),
		guests:           f.guests,
		publisherService: f.publisher,
		cfg:              ChatServiceConfig{DefaultModel: persona.ModelFast, ContextWindow: 5},
		logger:           logger.NewNopLogger(),
		now:              f.clock.Now,
	}
	return f
}

func senders(messages []dto.TranscriptEntryResponse) []string {
	out := make([]string, len(messages))
	for i, m := range messages {
		out[i] = m.Sender
	}
	return out
}

func TestChatService_FirstAuthenticatedTurnCreatesConversation(t *testing.T) {
	f := newChatFixture()
	session := seedAccount(f.db, "a@example.com")

	res, err := f.svc.SendMessage(context.Background(), session, &dto.SendMessageRequest{Message: " hello "})
	require.NoError(t, err)

	require.NotNil(t, res.ConversationId)
	assert.Empty(t, res.GuestId)
	assert.Equal(t, persona.ChatTypeDualPersona, res.ChatType)
	assert.Equal(t, persona.ModelFast, res.Model)
	assert.Equal(t, []string{"user", "leo", "max"}, senders(res.Messages))
	assert.Equal(t, "hello", res.Messages[0].Content)
	assert.Equal(t, "leo reply", res.Messages[1].Content)

	conversation, ok := f.db.conversations[*res.ConversationId]
	require.True(t, ok)
	assert.Equal(t, "Chat Mar 14 09:30", conversation.Title)
	assert.Equal(t, session.AccountID(), conversation.AccountId)

	require.Len(t, f.publisher.payloads, 3)
	for i, p := range f.publisher.payloads {
		assert.Equal(t, *res.ConversationId, p.ConversationId)
		assert.Equal(t, res.Messages[i].Sender, p.Sender)
	}
	require.NotNil(t, f.publisher.payloads[0].AccountId)
	assert.Equal(t, session.AccountID(), *f.publisher.payloads[0].AccountId)
	assert.Nil(t, f.publisher.payloads[1].AccountId)
	assert.Nil(t, f.publisher.payloads[2].AccountId)
}

func TestChatService_ExistingConversationUsesStoredHistory(t *testing.T) {
	f := newChatFixture()
	session := seedAccount(f.db, "a@example.com")
	ctx := context.Background()

	conversation, err := createConversation(ctx, f.db.NewUnitOfWork(ctx), session.AccountID(), "study", persona.ChatTypeStudyPair, f.clock.Now())
	require.NoError(t, err)
	seedMessage(f.db, conversation.Id, persona.SenderUser, "what is a prime?", f.clock.Now().Add(time.Second))
	seedMessage(f.db, conversation.Id, persona.SenderTutor1, "a number with two divisors", f.clock.Now().Add(2*time.Second))

	res, err := f.svc.SendMessage(ctx, session, &dto.SendMessageRequest{
		Message:        "is 1 prime?",
		ConversationId: &conversation.Id,
		Model:          persona.ModelSmart,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"user", "tutor1", "tutor2"}, senders(res.Messages))
	assert.Equal(t, persona.ModelSmart, res.Model)
	assert.Contains(t, f.providers[persona.SenderTutor1].lastPrompt(),
		"Student: what is a prime?\nTutor1: a number with two divisors\nStudent: is 1 prime?")
	assert.True(t, strings.HasSuffix(strings.SplitN(f.providers[persona.SenderTutor2].lastPrompt(), "\n\n", 2)[0],
		"Tutor1: tutor1 reply"))
}

func TestChatService_UnknownModelFallsBackToDefault(t *testing.T) {
	f := newChatFixture()

	res, err := f.svc.SendMessage(context.Background(), nil, &dto.SendMessageRequest{Message: "hi", Model: "gpt-17"})
	require.NoError(t, err)
	assert.Equal(t, persona.ModelFast, res.Model)
	assert.Equal(t, []string{persona.ModelFast}, f.providers[persona.SenderLeo].models)
}

func TestChatService_RejectsInvalidRequests(t *testing.T) {
	f := newChatFixture()
	alice := seedAccount(f.db, "alice@example.com")
	bob := seedAccount(f.db, "bob@example.com")
	ctx := context.Background()

	_, err := f.svc.SendMessage(ctx, alice, &dto.SendMessageRequest{Message: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = f.svc.SendMessage(ctx, alice, &dto.SendMessageRequest{Message: "hi", ChatType: "trio"})
	assert.ErrorIs(t, err, ErrInvalidChatType)

	conversation, err := createConversation(ctx, f.db.NewUnitOfWork(ctx), alice.AccountID(), "", persona.ChatTypeDualPersona, f.clock.Now())
	require.NoError(t, err)

	_, err = f.svc.SendMessage(ctx, bob, &dto.SendMessageRequest{Message: "hi", ConversationId: &conversation.Id})
	assert.ErrorIs(t, err, ErrConversationNotFound)

	_, err = f.svc.SendMessage(ctx, alice, &dto.SendMessageRequest{Message: "hi", ConversationId: &conversation.Id, ChatType: persona.ChatTypeStudyPair})
	assert.ErrorIs(t, err, ErrChatTypeMismatch)

	_, err = f.svc.SendMessage(ctx, nil, &dto.SendMessageRequest{Message: "hi", ConversationId: &conversation.Id})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	assert.Empty(t, f.publisher.payloads)
}

func TestChatService_GuestTranscriptAccumulates(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()

	first, err := f.svc.SendMessage(ctx, nil, &dto.SendMessageRequest{Message: "hi", ChatType: persona.ChatTypeStudyPair})
	require.NoError(t, err)
	require.NotEmpty(t, first.GuestId)
	assert.Nil(t, first.ConversationId)
	_, err = uuid.Parse(first.GuestId)
	require.NoError(t, err)

	second, err := f.svc.SendMessage(ctx, nil, &dto.SendMessageRequest{Message: "again", GuestId: first.GuestId})
	require.NoError(t, err)
	assert.Equal(t, persona.ChatTypeStudyPair, second.ChatType)
	assert.Contains(t, f.providers[persona.SenderTutor1].lastPrompt(),
		"Student: hi\nTutor1: tutor1 reply\nTutor2: tutor2 reply\nStudent: again")

	transcript, err := f.guests.Get(ctx, first.GuestId)
	require.NoError(t, err)
	assert.Len(t, transcript.Entries, 6)

	_, err = f.svc.SendMessage(ctx, nil, &dto.SendMessageRequest{Message: "x", GuestId: first.GuestId, ChatType: persona.ChatTypeDualPersona})
	assert.ErrorIs(t, err, ErrChatTypeMismatch)

	assert.Empty(t, f.publisher.payloads)
	assert.Empty(t, f.db.conversations)
}

func TestChatService_ConcurrentTurnsOnOneGuestAreSerialized(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	guestId := uuid.NewString()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.SendMessage(ctx, nil, &dto.SendMessageRequest{Message: "ping", GuestId: guestId})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	transcript, err := f.guests.Get(ctx, guestId)
	require.NoError(t, err)
	require.Len(t, transcript.Entries, 12)
	for i, e := range transcript.Entries {
		assert.Equal(t, []string{"user", "leo", "max"}[i%3], e.Sender)
	}
}

func TestChatService_Catalog(t *testing.T) {
	f := newChatFixture()

	assert.Len(t, f.svc.Models(), 2)
	pairs := f.svc.Personas()
	require.Len(t, pairs, 2)
	assert.Equal(t, persona.ChatTypeDualPersona, pairs[0].ChatType)
	assert.Equal(t, "Leo", pairs[0].Personas[0].Label)
	assert.Equal(t, "Student", pairs[1].UserLabel)
}

// abortingTurnRunner emits the user entry and then fails the turn.
type abortingTurnRunner struct {
	err error
}

func (r abortingTurnRunner) SendTurn(ctx context.Context, req persona.TurnRequest) (*persona.TurnResult, error) {
	entry := persona.Entry{Sender: persona.SenderUser, Content: req.UserText, Timestamp: time.Now()}
	if req.Sink != nil {
		_ = req.Sink.Emit(ctx, entry)
	}
	return &persona.TurnResult{Entries: []persona.Entry{entry}}, r.err
}

func TestChatService_AbortedFirstTurnLeavesNoConversation(t *testing.T) {
	f := newChatFixture()
	f.svc.orchestrator = abortingTurnRunner{err: context.Canceled}
	session := seedAccount(f.db, "a@example.com")

	_, err := f.svc.SendMessage(context.Background(), session, &dto.SendMessageRequest{Message: "hello"})
	require.ErrorIs(t, err, context.Canceled)

	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	assert.Empty(t, f.db.conversations)
	assert.Empty(t, f.db.messages)
}

func TestChatService_AbortedTurnKeepsExistingConversation(t *testing.T) {
	f := newChatFixture()
	f.svc.orchestrator = abortingTurnRunner{err: context.DeadlineExceeded}
	session := seedAccount(f.db, "a@example.com")
	ctx := context.Background()

	conversation, err := createConversation(ctx, f.db.NewUnitOfWork(ctx), session.AccountID(), "kept", persona.ChatTypeDualPersona, f.clock.Now())
	require.NoError(t, err)

	_, err = f.svc.SendMessage(ctx, session, &dto.SendMessageRequest{Message: "hello", ConversationId: &conversation.Id})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	assert.Contains(t, f.db.conversations, conversation.Id)
}

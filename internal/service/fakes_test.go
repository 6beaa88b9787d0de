package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"tria-chat-be/internal/entity"
	"tria-chat-be/internal/repository/contract"
	"tria-chat-be/internal/repository/specification"
	"tria-chat-be/internal/repository/unitofwork"
	"tria-chat-be/pkg/events"

	"github.com/google/uuid"
)

// memDB is an in-memory stand-in for the four tables. Begin snapshots the
// state and Rollback restores it, which is enough to observe atomicity.
type memDB struct {
	mu            sync.Mutex
	accounts      map[uuid.UUID]entity.Account
	sessions      map[uuid.UUID]entity.Session
	conversations map[uuid.UUID]entity.Conversation
	messages      map[uuid.UUID]entity.Message

	failConversationDelete error
	beforeConversationUpdate func()
}

func newMemDB() *memDB {
	return &memDB{
		accounts:      map[uuid.UUID]entity.Account{},
		sessions:      map[uuid.UUID]entity.Session{},
		conversations: map[uuid.UUID]entity.Conversation{},
		messages:      map[uuid.UUID]entity.Message{},
	}
}

type memSnapshot struct {
	accounts      map[uuid.UUID]entity.Account
	sessions      map[uuid.UUID]entity.Session
	conversations map[uuid.UUID]entity.Conversation
	messages      map[uuid.UUID]entity.Message
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (db *memDB) snapshot() *memSnapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	return &memSnapshot{
		accounts:      cloneMap(db.accounts),
		sessions:      cloneMap(db.sessions),
		conversations: cloneMap(db.conversations),
		messages:      cloneMap(db.messages),
	}
}

func (db *memDB) restore(s *memSnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.accounts = s.accounts
	db.sessions = s.sessions
	db.conversations = s.conversations
	db.messages = s.messages
}

func (db *memDB) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memUoW{db: db}
}

var _ unitofwork.RepositoryFactory = (*memDB)(nil)

type memUoW struct {
	db   *memDB
	snap *memSnapshot
}

func (u *memUoW) Begin(ctx context.Context) error {
	if u.snap != nil {
		return unitofwork.ErrTxAlreadyStarted
	}
	u.snap = u.db.snapshot()
	return nil
}

func (u *memUoW) Commit() error {
	if u.snap == nil {
		return unitofwork.ErrNoTransaction
	}
	u.snap = nil
	return nil
}

func (u *memUoW) Rollback() error {
	if u.snap == nil {
		return unitofwork.ErrNoTransaction
	}
	u.db.restore(u.snap)
	u.snap = nil
	return nil
}

func (u *memUoW) AccountRepository() contract.AccountRepository {
	return &memAccountRepo{db: u.db}
}

func (u *memUoW) SessionRepository() contract.SessionRepository {
	return &memSessionRepo{db: u.db}
}

func (u *memUoW) ConversationRepository() contract.ConversationRepository {
	return &memConversationRepo{db: u.db}
}

func (u *memUoW) MessageRepository() contract.MessageRepository {
	return &memMessageRepo{db: u.db}
}

// query is the subset of specifications the services use.
type query struct {
	id             *uuid.UUID
	email          *string
	accountID      *uuid.UUID
	token          *string
	conversationID *uuid.UUID
	chatType       *string
	order          *specification.OrderBy
	limit          int
}

func parseSpecs(specs []specification.Specification) query {
	var q query
	for _, s := range specs {
		switch v := s.(type) {
		case specification.ByID:
			q.id = &v.ID
		case specification.ByEmail:
			q.email = &v.Email
		case specification.AccountOwnedBy:
			q.accountID = &v.AccountID
		case specification.BySessionToken:
			q.token = &v.Token
		case specification.ByConversationID:
			q.conversationID = &v.ConversationID
		case specification.ByChatType:
			q.chatType = &v.ChatType
		case specification.OrderBy:
			o := v
			q.order = &o
		case specification.Pagination:
			q.limit = v.Limit
		default:
			panic("unsupported specification in fake")
		}
	}
	return q
}

func orderByTime[T any](items []T, q query, field func(T, string) time.Time) []T {
	if q.order != nil {
		sort.SliceStable(items, func(i, j int) bool {
			a, b := field(items[i], q.order.Field), field(items[j], q.order.Field)
			if q.order.Desc {
				return a.After(b)
			}
			return a.Before(b)
		})
	}
	if q.limit > 0 && len(items) > q.limit {
		items = items[:q.limit]
	}
	return items
}

// Accounts

type memAccountRepo struct{ db *memDB }

func (r *memAccountRepo) Create(ctx context.Context, a *entity.Account) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.accounts {
		if existing.Email == a.Email {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	r.db.accounts[a.Id] = *a
	return nil
}

func (r *memAccountRepo) Update(ctx context.Context, a *entity.Account) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.accounts[a.Id]; !ok {
		return contract.ErrRecordNotFound
	}
	r.db.accounts[a.Id] = *a
	return nil
}

func (r *memAccountRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Account, error) {
	q := parseSpecs(specs)
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.Account
	for _, a := range r.db.accounts {
		if q.id != nil && a.Id != *q.id {
			continue
		}
		if q.email != nil && a.Email != *q.email {
			continue
		}
		a := a
		out = append(out, &a)
	}
	return out, nil
}

func (r *memAccountRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Account, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *memAccountRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

// Sessions

type memSessionRepo struct{ db *memDB }

func (r *memSessionRepo) Create(ctx context.Context, s *entity.Session) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.sessions[s.Id] = *s
	return nil
}

func (r *memSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, id)
	return nil
}

func (r *memSessionRepo) DeleteByToken(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, s := range r.db.sessions {
		if s.SessionToken == token {
			delete(r.db.sessions, id)
		}
	}
	return nil
}

func (r *memSessionRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, s := range r.db.sessions {
		if !s.ExpiresAt.After(before) {
			delete(r.db.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r *memSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error) {
	q := parseSpecs(specs)
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, s := range r.db.sessions {
		if q.id != nil && s.Id != *q.id {
			continue
		}
		if q.token != nil && s.SessionToken != *q.token {
			continue
		}
		if q.accountID != nil && s.AccountId != *q.accountID {
			continue
		}
		s := s
		return &s, nil
	}
	return nil, nil
}

// Conversations

type memConversationRepo struct{ db *memDB }

func (r *memConversationRepo) Create(ctx context.Context, c *entity.Conversation) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.conversations[c.Id] = *c
	return nil
}

func (r *memConversationRepo) Update(ctx context.Context, c *entity.Conversation) error {
	if hook := r.db.beforeConversationUpdate; hook != nil {
		hook()
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.conversations[c.Id]
	if !ok {
		return contract.ErrRecordNotFound
	}
	stored.Title = c.Title
	stored.UpdatedAt = c.UpdatedAt
	r.db.conversations[c.Id] = stored
	return nil
}

func (r *memConversationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failConversationDelete != nil {
		return r.db.failConversationDelete
	}
	for _, m := range r.db.messages {
		if m.ConversationId == id {
			return errors.New("violates foreign key constraint")
		}
	}
	delete(r.db.conversations, id)
	return nil
}

func (r *memConversationRepo) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if c, ok := r.db.conversations[id]; ok && c.UpdatedAt.Before(at) {
		c.UpdatedAt = at
		r.db.conversations[id] = c
	}
	return nil
}

func (r *memConversationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	q := parseSpecs(specs)
	r.db.mu.Lock()
	var out []*entity.Conversation
	for _, c := range r.db.conversations {
		if q.id != nil && c.Id != *q.id {
			continue
		}
		if q.accountID != nil && c.AccountId != *q.accountID {
			continue
		}
		if q.chatType != nil && c.ChatType != *q.chatType {
			continue
		}
		c := c
		out = append(out, &c)
	}
	r.db.mu.Unlock()
	return orderByTime(out, q, func(c *entity.Conversation, field string) time.Time {
		if field == "created_at" {
			return c.CreatedAt
		}
		return c.UpdatedAt
	}), nil
}

func (r *memConversationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *memConversationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

// Messages

type memMessageRepo struct{ db *memDB }

func (r *memMessageRepo) Create(ctx context.Context, m *entity.Message) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.conversations[m.ConversationId]; !ok {
		return errors.New("violates foreign key constraint")
	}
	r.db.messages[m.Id] = *m
	return nil
}

func (r *memMessageRepo) DeleteByConversationID(ctx context.Context, conversationId uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, m := range r.db.messages {
		if m.ConversationId == conversationId {
			delete(r.db.messages, id)
		}
	}
	return nil
}

func (r *memMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	q := parseSpecs(specs)
	r.db.mu.Lock()
	var out []*entity.Message
	for _, m := range r.db.messages {
		if q.conversationID != nil && m.ConversationId != *q.conversationID {
			continue
		}
		m := m
		out = append(out, &m)
	}
	r.db.mu.Unlock()
	return orderByTime(out, q, func(m *entity.Message, _ string) time.Time { return m.CreatedAt }), nil
}

func (r *memMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *memMessageRepo) FindHistory(ctx context.Context, accountId uuid.UUID, chatType string, limit int) ([]*entity.MessageHistoryItem, error) {
	r.db.mu.Lock()
	var out []*entity.MessageHistoryItem
	for _, m := range r.db.messages {
		c, ok := r.db.conversations[m.ConversationId]
		if !ok || c.AccountId != accountId {
			continue
		}
		if chatType != "" && c.ChatType != chatType {
			continue
		}
		out = append(out, &entity.MessageHistoryItem{Message: m, ConversationTitle: c.Title, ChatType: c.ChatType})
	}
	r.db.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// recordingPublisher captures domain events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

// fixed clock helpers
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func seedAccount(db *memDB, email string) *entity.SessionContext {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	account := entity.Account{Id: uuid.New(), Email: email, CreatedAt: now, UpdatedAt: now}
	session := entity.Session{
		Id:           uuid.New(),
		AccountId:    account.Id,
		SessionToken: uuid.NewString(),
		ExpiresAt:    now.Add(24 * time.Hour * 365 * 10),
		CreatedAt:    now,
	}
	db.accounts[account.Id] = account
	db.sessions[session.Id] = session
	return &entity.SessionContext{Account: &account, Session: &session}
}

func seedMessage(db *memDB, conversationId uuid.UUID, sender, content string, at time.Time) {
	m := entity.Message{Id: uuid.New(), ConversationId: conversationId, Sender: sender, Content: content, CreatedAt: at}
	db.messages[m.Id] = m
}

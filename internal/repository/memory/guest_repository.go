package memory

import (
	"context"
	"sync"
	"time"

	"tria-chat-be/pkg/persona"
	"tria-chat-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type GuestRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
}

var _ store.GuestStore = (*GuestRepository)(nil)

// NewGuestRepository keeps transcripts for ttl after their last append and
// purges expired items every 10 minutes.
func NewGuestRepository(ttl time.Duration) *GuestRepository {
	return &GuestRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (r *GuestRepository) Get(ctx context.Context, id string) (*store.GuestTranscript, error) {
	x, found := r.cache.Get(id)
	if !found {
		return nil, store.ErrGuestNotFound
	}
	t := x.(*store.GuestTranscript)

	r.mu.Lock()
	defer r.mu.Unlock()
	out := *t
	out.Entries = append([]persona.Entry(nil), t.Entries...)
	return &out, nil
}

func (r *GuestRepository) Append(ctx context.Context, id, chatType string, entry persona.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := &store.GuestTranscript{ID: id, ChatType: chatType}
	if x, found := r.cache.Get(id); found {
		t = x.(*store.GuestTranscript)
	}
	t.Entries = append(t.Entries, entry)
	t.UpdatedAt = entry.Timestamp

	r.cache.Set(id, t, cache.DefaultExpiration)
	return nil
}

func (r *GuestRepository) Delete(ctx context.Context, id string) error {
	r.cache.Delete(id)
	return nil
}

package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tria-chat-be/pkg/persona"
	"tria-chat-be/pkg/store"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "guest:"

// GuestRepository stores guest transcripts in redis so every API instance
// sees the same visitor history. Entries live in a list, the chat type in a
// sibling key; both share one TTL refreshed on append.
type GuestRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ store.GuestStore = (*GuestRepository)(nil)

func NewGuestRepository(rdb *redis.Client, ttl time.Duration) *GuestRepository {
	return &GuestRepository{rdb: rdb, ttl: ttl}
}

func entriesKey(id string) string { return keyPrefix + id + ":entries" }
func metaKey(id string) string    { return keyPrefix + id + ":chat_type" }

func (r *GuestRepository) Get(ctx context.Context, id string) (*store.GuestTranscript, error) {
	chatType, err := r.rdb.Get(ctx, metaKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrGuestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read guest meta: %w", err)
	}

	raw, err := r.rdb.LRange(ctx, entriesKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read guest entries: %w", err)
	}

	t := &store.GuestTranscript{ID: id, ChatType: chatType, Entries: make([]persona.Entry, 0, len(raw))}
	for _, item := range raw {
		var e persona.Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("decode guest entry: %w", err)
		}
		t.Entries = append(t.Entries, e)
		t.UpdatedAt = e.Timestamp
	}
	return t, nil
}

func (r *GuestRepository) Append(ctx context.Context, id, chatType string, entry persona.Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, metaKey(id), chatType, r.ttl)
		pipe.RPush(ctx, entriesKey(id), payload)
		pipe.Expire(ctx, metaKey(id), r.ttl)
		pipe.Expire(ctx, entriesKey(id), r.ttl)
		return nil
	})
	return err
}

func (r *GuestRepository) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, metaKey(id), entriesKey(id)).Err()
}

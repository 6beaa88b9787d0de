package persona

import (
	"context"
	"sync"
)

// TurnQueue serializes turns per conversation key. Waiters are admitted one
// at a time; idle keys are dropped.
type TurnQueue struct {
	mu    sync.Mutex
	slots map[string]*turnSlot
}

type turnSlot struct {
	token chan struct{}
	refs  int
}

func NewTurnQueue() *TurnQueue {
	return &TurnQueue{slots: make(map[string]*turnSlot)}
}

// Acquire blocks until the key is free or ctx is done. The returned release
// func must be called exactly once.
func (q *TurnQueue) Acquire(ctx context.Context, key string) (func(), error) {
	q.mu.Lock()
	slot, ok := q.slots[key]
	if !ok {
		slot = &turnSlot{token: make(chan struct{}, 1)}
		q.slots[key] = slot
	}
	slot.refs++
	q.mu.Unlock()

	select {
	case slot.token <- struct{}{}:
	case <-ctx.Done():
		q.unref(key, slot)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.token
			q.unref(key, slot)
		})
	}, nil
}

func (q *TurnQueue) unref(key string, slot *turnSlot) {
	q.mu.Lock()
	defer q.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(q.slots, key)
	}
}

// Len reports how many keys are active or waited on.
func (q *TurnQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.slots)
}

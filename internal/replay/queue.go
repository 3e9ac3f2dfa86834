package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"famfin/internal/localstore"
)

// Queue is the durable pending-write queue. Ops live as one JSON array blob
// in the local store so they survive restarts alongside the data they
// describe.
type Queue struct {
	store *localstore.Store

	mu     sync.Mutex
	lastID int64
}

func NewQueue(store *localstore.Store) *Queue {
	return &Queue{store: store}
}

// Enqueue appends the op and returns it with its assigned id and queue
// timestamp.
func (q *Queue) Enqueue(ctx context.Context, op Op) (Op, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	ops, err := q.load(ctx)
	if err != nil {
		return Op{}, err
	}
	op.ID = q.newID()
	op.QueuedAt = time.Now().UTC()
	ops = append(ops, op)
	if err := q.save(ctx, ops); err != nil {
		return Op{}, err
	}
	return op, nil
}

// All returns the queued ops in enqueue order.
func (q *Queue) All(ctx context.Context) ([]Op, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load(ctx)
}

// Remove drops the op with the given id. Unknown ids are a no-op.
func (q *Queue) Remove(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	ops, err := q.load(ctx)
	if err != nil {
		return err
	}
	kept := ops[:0]
	for _, op := range ops {
		if op.ID != id {
			kept = append(kept, op)
		}
	}
	if len(kept) == len(ops) {
		return nil
	}
	return q.save(ctx, kept)
}

// Len returns the number of queued ops.
func (q *Queue) Len(ctx context.Context) (int, error) {
	ops, err := q.All(ctx)
	if err != nil {
		return 0, err
	}
	return len(ops), nil
}

func (q *Queue) load(ctx context.Context) ([]Op, error) {
	blob, err := q.store.Get(ctx, localstore.KeyPendingSync)
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, nil
	}
	var ops []Op
	if err := json.Unmarshal(blob, &ops); err != nil {
		return nil, fmt.Errorf("decode pending queue: %w", err)
	}
	return ops, nil
}

func (q *Queue) save(ctx context.Context, ops []Op) error {
	blob, err := json.Marshal(ops)
	if err != nil {
		return fmt.Errorf("encode pending queue: %w", err)
	}
	return q.store.Put(ctx, localstore.KeyPendingSync, blob)
}

// newID returns a nanosecond-timestamp id, bumped on collision. Callers
// must hold mu.
func (q *Queue) newID() string {
	now := time.Now().UnixNano()
	if now <= q.lastID {
		now = q.lastID + 1
	}
	q.lastID = now
	return strconv.FormatInt(now, 10)
}

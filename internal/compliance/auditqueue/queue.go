// Package auditqueue holds audit entries that could not be confirmed by the
// remote audit API. It is a bounded ring buffer persisted as one JSON array
// under a namespaced key, so entries survive process restarts.
package auditqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"miniminds/internal/compliance/models"
	"miniminds/internal/sentinel"
)

const (
	// DefaultCapacity bounds the queue when no capacity is configured.
	DefaultCapacity = 100

	// DefaultKey is the store key holding the serialized queue.
	DefaultKey = "audit_queue"

	corruptSuffix = ".corrupt"
)

// Store is the namespaced key-value capability the queue persists through.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

type item struct {
	seq   uint64
	entry models.AuditEntry
}

// Batch is a point-in-time copy of the queue. Through is the sequence number
// of its newest entry and is handed back to Acknowledge once the batch is
// confirmed remotely.
type Batch struct {
	Entries []models.AuditEntry
	Through uint64
}

// Len returns the number of entries in the batch.
func (b Batch) Len() int { return len(b.Entries) }

// Queue is safe for concurrent use. All mutations hold one mutex, so a flush
// cannot interleave with a push.
type Queue struct {
	mu       sync.Mutex
	store    Store
	key      string
	capacity int
	logger   *slog.Logger
	onEvict  func(models.AuditEntry)

	items   []item
	nextSeq uint64
}

// Option configures a Queue.
type Option func(*Queue)

// WithCapacity bounds the queue. Non-positive values keep the default.
func WithCapacity(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.capacity = n
		}
	}
}

// WithKey overrides the store key.
func WithKey(key string) Option {
	return func(q *Queue) {
		if key != "" {
			q.key = key
		}
	}
}

// WithLogger sets the logger used for persistence problems.
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// WithEvictionHook is called for each entry dropped because the queue was full.
func WithEvictionHook(fn func(models.AuditEntry)) Option {
	return func(q *Queue) {
		q.onEvict = fn
	}
}

// Open loads any persisted entries from store. Unreadable data is copied to
// "<key>.corrupt" and the queue starts empty rather than failing startup.
func Open(ctx context.Context, store Store, opts ...Option) (*Queue, error) {
	q := &Queue{
		store:    store,
		key:      DefaultKey,
		capacity: DefaultCapacity,
		logger:   slog.Default(),
		nextSeq:  1,
	}
	for _, opt := range opts {
		opt(q)
	}

	raw, err := store.Get(ctx, q.key)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return q, nil
	case err != nil:
		return nil, fmt.Errorf("load audit queue: %w", err)
	}

	var entries []models.AuditEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		q.logger.WarnContext(ctx, "audit queue data unreadable, starting empty",
			"key", q.key,
			"bytes", len(raw),
			"error", err,
		)
		if backupErr := store.Set(ctx, q.key+corruptSuffix, raw); backupErr != nil {
			return nil, fmt.Errorf("back up corrupt audit queue: %w", backupErr)
		}
		return q, nil
	}

	if over := len(entries) - q.capacity; over > 0 {
		q.logger.WarnContext(ctx, "persisted audit queue exceeds capacity, dropping oldest",
			"capacity", q.capacity,
			"dropped", over,
		)
		for _, e := range entries[:over] {
			q.evicted(ctx, e)
		}
		entries = entries[over:]
	}
	for _, e := range entries {
		q.items = append(q.items, item{seq: q.nextSeq, entry: e})
		q.nextSeq++
	}
	return q, nil
}

// Push appends entry, evicting the oldest entry when the queue is full, and
// persists the result. The entry stays queued in memory even when
// persistence fails; the error is returned so the caller can report it.
func (q *Queue) Push(ctx context.Context, entry models.AuditEntry) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= q.capacity {
		dropped := q.items[0]
		q.items = q.items[1:]
		q.evicted(ctx, dropped.entry)
	}
	q.items = append(q.items, item{seq: q.nextSeq, entry: entry})
	q.nextSeq++

	return q.persistLocked(ctx)
}

// Snapshot copies the current contents without removing them.
func (q *Queue) Snapshot() Batch {
	q.mu.Lock()
	defer q.mu.Unlock()

	b := Batch{Entries: make([]models.AuditEntry, len(q.items))}
	for i, it := range q.items {
		b.Entries[i] = it.entry
	}
	if n := len(q.items); n > 0 {
		b.Through = q.items[n-1].seq
	}
	return b
}

// Acknowledge removes every entry up to and including sequence number
// through. Entries pushed after the snapshot was taken are kept.
func (q *Queue) Acknowledge(ctx context.Context, through uint64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	keep := 0
	for keep < len(q.items) && q.items[keep].seq <= through {
		keep++
	}
	if keep == 0 {
		return nil
	}
	q.items = append([]item(nil), q.items[keep:]...)
	return q.persistLocked(ctx)
}

// Len returns the number of queued entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Capacity returns the configured bound.
func (q *Queue) Capacity() int {
	return q.capacity
}

func (q *Queue) persistLocked(ctx context.Context) error {
	if len(q.items) == 0 {
		if err := q.store.Remove(ctx, q.key); err != nil {
			return fmt.Errorf("clear audit queue: %w", err)
		}
		return nil
	}
	entries := make([]models.AuditEntry, len(q.items))
	for i, it := range q.items {
		entries[i] = it.entry
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode audit queue: %w", err)
	}
	if err := q.store.Set(ctx, q.key, data); err != nil {
		return fmt.Errorf("persist audit queue: %w", err)
	}
	return nil
}

func (q *Queue) evicted(ctx context.Context, e models.AuditEntry) {
	q.logger.WarnContext(ctx, "audit queue full, oldest entry evicted",
		"entry_id", e.ID,
		"timestamp", e.Timestamp,
		"capacity", q.capacity,
	)
	if q.onEvict != nil {
		q.onEvict(e)
	}
}

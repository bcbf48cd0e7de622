package auditqueue

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miniminds/internal/compliance/models"
	"miniminds/internal/platform/kvstore"
	"miniminds/internal/sentinel"
	"miniminds/pkg/testutil"
)

func newStore() *kvstore.Scoped {
	return kvstore.Scope(kvstore.NewInMemory(), "compliance")
}

func queries(entries []models.AuditEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Query
	}
	return out
}

func TestPushAndSnapshot(t *testing.T) {
	ctx := context.Background()
	q, err := Open(ctx, newStore())
	require.NoError(t, err)

	for _, e := range testutil.Entries(3) {
		require.NoError(t, q.Push(ctx, e))
	}

	b := q.Snapshot()
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []string{"query 0", "query 1", "query 2"}, queries(b.Entries))
	assert.Equal(t, 3, q.Len(), "snapshot does not remove entries")
}

func TestPushEvictsOldestAtCapacity(t *testing.T) {
	ctx := context.Background()
	var evicted []string
	var logs bytes.Buffer
	q, err := Open(ctx, newStore(),
		WithCapacity(3),
		WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))),
		WithEvictionHook(func(e models.AuditEntry) { evicted = append(evicted, e.Query) }),
	)
	require.NoError(t, err)

	for _, e := range testutil.Entries(5) {
		require.NoError(t, q.Push(ctx, e))
		assert.LessOrEqual(t, q.Len(), 3)
	}

	assert.Equal(t, []string{"query 2", "query 3", "query 4"}, queries(q.Snapshot().Entries))
	assert.Equal(t, []string{"query 0", "query 1"}, evicted)
	assert.Equal(t, 2, strings.Count(logs.String(), "oldest entry evicted"), "one log line per eviction")
}

func TestAcknowledgeKeepsEntriesPushedAfterSnapshot(t *testing.T) {
	ctx := context.Background()
	q, err := Open(ctx, newStore())
	require.NoError(t, err)
	entries := testutil.Entries(3)

	require.NoError(t, q.Push(ctx, entries[0]))
	require.NoError(t, q.Push(ctx, entries[1]))
	b := q.Snapshot()
	require.NoError(t, q.Push(ctx, entries[2]))

	require.NoError(t, q.Acknowledge(ctx, b.Through))

	assert.Equal(t, []string{"query 2"}, queries(q.Snapshot().Entries))
}

func TestAcknowledgeEverythingClearsStore(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	q, err := Open(ctx, store)
	require.NoError(t, err)
	require.NoError(t, q.Push(ctx, testutil.NewEntryBuilder().Build()))

	require.NoError(t, q.Acknowledge(ctx, q.Snapshot().Through))

	assert.Equal(t, 0, q.Len())
	_, err = store.Get(ctx, DefaultKey)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestAcknowledgeEmptySnapshotIsNoop(t *testing.T) {
	ctx := context.Background()
	q, err := Open(ctx, newStore())
	require.NoError(t, err)
	empty := q.Snapshot()
	require.NoError(t, q.Push(ctx, testutil.NewEntryBuilder().Build()))

	require.NoError(t, q.Acknowledge(ctx, empty.Through))
	assert.Equal(t, 1, q.Len())
}

func TestQueueSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	first, err := Open(ctx, store)
	require.NoError(t, err)
	for _, e := range testutil.Entries(2) {
		require.NoError(t, first.Push(ctx, e))
	}

	second, err := Open(ctx, store)
	require.NoError(t, err)

	got := second.Snapshot().Entries
	assert.Equal(t, testutil.Entries(2), got)
}

func TestOpenTrimsToCapacity(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	big, err := Open(ctx, store, WithCapacity(10))
	require.NoError(t, err)
	for _, e := range testutil.Entries(5) {
		require.NoError(t, big.Push(ctx, e))
	}

	small, err := Open(ctx, store, WithCapacity(2))
	require.NoError(t, err)
	assert.Equal(t, []string{"query 3", "query 4"}, queries(small.Snapshot().Entries))
}

func TestOpenBacksUpCorruptData(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	require.NoError(t, store.Set(ctx, DefaultKey, []byte("{not json")))

	q, err := Open(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 0, q.Len())

	backup, err := store.Get(ctx, DefaultKey+corruptSuffix)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(backup))
}

type failingStore struct {
	*kvstore.Scoped
	getErr error
	setErr error
}

func (f *failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Scoped.Get(ctx, key)
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Scoped.Set(ctx, key, value)
}

func TestOpenPropagatesStoreErrors(t *testing.T) {
	_, err := Open(context.Background(), &failingStore{Scoped: newStore(), getErr: errors.New("disk gone")})
	require.Error(t, err)
}

func TestPushKeepsEntryWhenPersistFails(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Scoped: newStore(), setErr: errors.New("disk full")}
	q, err := Open(ctx, store)
	require.NoError(t, err)

	err = q.Push(ctx, testutil.NewEntryBuilder().Build())

	require.Error(t, err)
	assert.Equal(t, 1, q.Len())
}

func TestConcurrentPushesRespectCapacity(t *testing.T) {
	ctx := context.Background()
	q, err := Open(ctx, newStore(), WithCapacity(50))
	require.NoError(t, err)

	result := testutil.RunConcurrent(200, func(idx int) error {
		return q.Push(ctx, testutil.NewEntryBuilder().WithQuery(fmt.Sprintf("q%d", idx)).Build())
	})

	assert.Equal(t, int32(200), result.Successes)
	assert.Equal(t, 50, q.Len())
}

func TestConcurrentPushDuringFlushLosesNothing(t *testing.T) {
	ctx := context.Background()
	q, err := Open(ctx, newStore(), WithCapacity(1000))
	require.NoError(t, err)
	for _, e := range testutil.Entries(100) {
		require.NoError(t, q.Push(ctx, e))
	}

	b := q.Snapshot()
	result := testutil.RunConcurrent(50, func(idx int) error {
		if idx == 0 {
			return q.Acknowledge(ctx, b.Through)
		}
		return q.Push(ctx, testutil.NewEntryBuilder().WithQuery(fmt.Sprintf("late %d", idx)).Build())
	})

	require.Equal(t, int32(50), result.Successes)
	assert.Equal(t, 49, q.Len(), "only the acknowledged snapshot is removed")
}

package conversation

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miniminds/internal/compliance/models"
	"miniminds/pkg/testutil"
)

const owner = "user:parent-1"

func msg(role models.Speaker, content string) models.Message {
	return models.Message{Role: role, Content: content, Timestamp: time.Unix(0, 0).UTC()}
}

func TestAppendAndHistory(t *testing.T) {
	s := New()
	s.Append(owner, "s1", msg(models.SpeakerUser, "hello"), msg(models.SpeakerAssistant, "hi"))
	s.Append(owner, "s2", msg(models.SpeakerUser, "other session"))

	got := s.History(owner, "s1")
	require.Len(t, got, 2)
	assert.Equal(t, "hello", got[0].Content)
	assert.Equal(t, "hi", got[1].Content)
	assert.Len(t, s.History(owner, "s2"), 1)
	assert.Empty(t, s.History(owner, "unknown"))
	assert.NotNil(t, s.History(owner, "unknown"))
}

func TestHistoryIsACopy(t *testing.T) {
	s := New()
	s.Append(owner, "s1", msg(models.SpeakerUser, "hello"))

	got := s.History(owner, "s1")
	got[0].Content = "mutated"

	assert.Equal(t, "hello", s.History(owner, "s1")[0].Content)
}

func TestMaxTurnsDropsOldest(t *testing.T) {
	s := New(WithMaxTurns(3))
	for i := range 5 {
		s.Append(owner, "s1", msg(models.SpeakerUser, fmt.Sprintf("m%d", i)))
	}

	got := s.History(owner, "s1")
	require.Len(t, got, 3)
	assert.Equal(t, "m2", got[0].Content)
	assert.Equal(t, "m4", got[2].Content)
}

func TestSubscribeReceivesInOrder(t *testing.T) {
	s := New()
	ch, cancel := s.Subscribe(owner, "s1")
	defer cancel()

	s.Append(owner, "s1", msg(models.SpeakerUser, "q"), msg(models.SpeakerAssistant, "a"))
	s.Append(owner, "s2", msg(models.SpeakerUser, "not mine"))

	assert.Equal(t, "q", (<-ch).Content)
	assert.Equal(t, "a", (<-ch).Content)
	select {
	case m := <-ch:
		t.Fatalf("unexpected message from another session: %q", m.Content)
	default:
	}
}

func TestCancelClosesChannel(t *testing.T) {
	s := New()
	ch, cancel := s.Subscribe(owner, "s1")

	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.NotPanics(t, func() { s.Append(owner, "s1", msg(models.SpeakerUser, "after cancel")) })
}

func TestSlowSubscriberIsDisconnected(t *testing.T) {
	s := New(WithSubscriberBuffer(1))
	ch, cancel := s.Subscribe(owner, "s1")
	defer cancel()

	s.Append(owner, "s1", msg(models.SpeakerUser, "one"), msg(models.SpeakerUser, "two"))

	assert.Equal(t, "one", (<-ch).Content)
	_, open := <-ch
	assert.False(t, open, "lagging subscriber is closed instead of blocking the writer")
	assert.Len(t, s.History(owner, "s1"), 2)
}

func TestClearDisconnectsSubscribers(t *testing.T) {
	s := New()
	ch, cancel := s.Subscribe(owner, "s1")
	defer cancel()
	s.Append(owner, "s1", msg(models.SpeakerUser, "hello"))
	<-ch

	s.Clear(owner, "s1")

	_, open := <-ch
	assert.False(t, open)
	assert.Empty(t, s.History(owner, "s1"))
}

func TestConcurrentAppendsKeepEveryTurn(t *testing.T) {
	s := New(WithMaxTurns(1000))
	result := testutil.RunConcurrent(100, func(idx int) error {
		s.Append(owner, "s1", msg(models.SpeakerUser, fmt.Sprintf("m%d", idx)))
		return nil
	})

	assert.Equal(t, int32(100), result.Successes)
	assert.Len(t, s.History(owner, "s1"), 100)
}

func TestDisconnectAllKeepsHistory(t *testing.T) {
	s := New()
	a, cancelA := s.Subscribe(owner, "s1")
	b, cancelB := s.Subscribe(owner, "s2")
	s.Append(owner, "s1", msg(models.SpeakerUser, "hello"))
	<-a

	s.DisconnectAll()
	cancelA()
	cancelB()

	_, open := <-a
	assert.False(t, open)
	_, open = <-b
	assert.False(t, open)
	assert.Len(t, s.History(owner, "s1"), 1)
}

func TestSessionsAreScopedToOwner(t *testing.T) {
	s := New()
	s.Append(owner, "shared-id", msg(models.SpeakerUser, "Did Emma nap today?"))

	assert.Empty(t, s.History("ip:203.0.113.9", "shared-id"), "another caller sees an empty session")
	assert.Empty(t, s.History("user:parent-2", "shared-id"))

	ch, cancel := s.Subscribe("user:parent-2", "shared-id")
	defer cancel()
	s.Append(owner, "shared-id", msg(models.SpeakerUser, "second turn"))
	select {
	case m := <-ch:
		t.Fatalf("subscriber received another owner's turn: %q", m.Content)
	default:
	}
	assert.Len(t, s.History(owner, "shared-id"), 2)
}

func TestIdleSessionsAreSwept(t *testing.T) {
	now := time.Unix(1_772_443_800, 0)
	s := New(WithIdleTTL(time.Hour), WithClock(func() time.Time { return now }))

	s.Append(owner, "old", msg(models.SpeakerUser, "hello"))
	_, cancel := s.Subscribe(owner, "watched")
	defer cancel()
	require.Equal(t, 2, s.Len())

	now = now.Add(time.Hour)
	s.Append(owner, "new", msg(models.SpeakerUser, "hi"))

	assert.Equal(t, 2, s.Len(), "idle session dropped, subscribed session kept")
	assert.Empty(t, s.History(owner, "old"))
	assert.Len(t, s.History(owner, "new"), 1)
}

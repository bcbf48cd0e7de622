package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := New("audit", WithFailureThreshold(3))

	assert.Equal(t, StateChange{}, b.RecordFailure())
	assert.Equal(t, StateChange{}, b.RecordFailure())
	assert.True(t, b.Allow())

	change := b.RecordFailure()
	assert.True(t, change.Opened)
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := New("audit", WithFailureThreshold(2))

	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()

	assert.Equal(t, StateClosed, b.State(), "non-consecutive failures must not open the circuit")
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	b := New("audit", WithFailureThreshold(1), WithCooldown(time.Minute), WithClock(clock.Now))

	b.RecordFailure()
	assert.False(t, b.Allow())

	clock.Advance(time.Minute)
	assert.True(t, b.Allow(), "cooldown elapsed, one probe admitted")
	assert.Equal(t, StateHalfOpen, b.State())
	assert.False(t, b.Allow(), "only one probe at a time")

	t.Run("failed probe reopens", func(t *testing.T) {
		b.RecordFailure()
		assert.Equal(t, StateOpen, b.State())
		assert.False(t, b.Allow())
	})

	t.Run("successful probe closes", func(t *testing.T) {
		clock.Advance(time.Minute)
		assert.True(t, b.Allow())
		change := b.RecordSuccess()
		assert.True(t, change.Closed)
		assert.Equal(t, StateClosed, b.State())
	})
}

func TestBreakerSuccessWhileOpenCloses(t *testing.T) {
	b := New("audit", WithFailureThreshold(1))
	b.RecordFailure()

	change := b.RecordSuccess()

	assert.True(t, change.Closed)
	assert.True(t, b.Allow())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half_open", StateHalfOpen.String())
}

// Package conversation keeps the ordered user/assistant turns of each session
// and notifies live subscribers as turns are appended. It is observational
// state only and is not part of the compliance record.
//
// Sessions are scoped to an owner (see models.Principal.Owner): the same
// session id presented by a different caller names a different, empty session.
package conversation

import (
	"sync"
	"time"

	"miniminds/internal/compliance/metrics"
	"miniminds/internal/compliance/models"
)

const (
	defaultMaxTurns   = 200
	defaultSubscriber = 16
	defaultIdleTTL    = 2 * time.Hour
)

type key struct {
	owner, session string
}

type session struct {
	messages   []models.Message
	subs       map[uint64]chan models.Message
	lastActive time.Time
}

// Store is safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	sessions  map[key]*session
	nextSub   uint64
	lastSweep time.Time

	maxTurns   int
	bufferSize int
	idleTTL    time.Duration
	metrics    *metrics.Metrics
	now        func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithMaxTurns bounds the retained history per session; older turns are dropped.
func WithMaxTurns(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxTurns = n
		}
	}
}

// WithSubscriberBuffer sets how many undelivered messages a subscriber may
// hold before it is disconnected.
func WithSubscriberBuffer(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.bufferSize = n
		}
	}
}

// WithIdleTTL sets how long a session without appends or subscribers is kept.
func WithIdleTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.idleTTL = d
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		sessions:   make(map[key]*session),
		maxTurns:   defaultMaxTurns,
		bufferSize: defaultSubscriber,
		idleTTL:    defaultIdleTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastSweep = s.now()
	return s
}

// sessionLocked returns the session, creating it, and marks it active. Idle
// sessions without subscribers are swept at most once per idle TTL.
func (s *Store) sessionLocked(k key) *session {
	now := s.now()
	if now.Sub(s.lastSweep) >= s.idleTTL {
		for id, sess := range s.sessions {
			if len(sess.subs) == 0 && now.Sub(sess.lastActive) >= s.idleTTL {
				delete(s.sessions, id)
			}
		}
		s.lastSweep = now
	}

	sess, ok := s.sessions[k]
	if !ok {
		sess = &session{subs: make(map[uint64]chan models.Message)}
		s.sessions[k] = sess
	}
	sess.lastActive = now
	return sess
}

// Len returns the number of retained sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Append adds msg to the session history and delivers it to subscribers in
// append order. A subscriber whose buffer is full is disconnected (its
// channel is closed) rather than blocking the writer; it can resubscribe and
// reload History.
func (s *Store) Append(owner, sessionID string, msgs ...models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessionLocked(key{owner, sessionID})
	for _, msg := range msgs {
		sess.messages = append(sess.messages, msg)
		for id, ch := range sess.subs {
			select {
			case ch <- msg:
			default:
				close(ch)
				delete(sess.subs, id)
				s.metrics.AddHistorySubscribers(-1)
			}
		}
	}
	if over := len(sess.messages) - s.maxTurns; over > 0 {
		sess.messages = append([]models.Message(nil), sess.messages[over:]...)
	}
}

// History returns a copy of the session's turns, oldest first.
func (s *Store) History(owner, sessionID string) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[key{owner, sessionID}]
	if !ok {
		return []models.Message{}
	}
	out := make([]models.Message, len(sess.messages))
	copy(out, sess.messages)
	return out
}

// Subscribe returns a channel receiving every message appended to the
// session from now on, and a cancel function that closes it. Cancel is safe
// to call more than once.
func (s *Store) Subscribe(owner, sessionID string) (<-chan models.Message, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessionLocked(key{owner, sessionID})
	id := s.nextSub
	s.nextSub++
	ch := make(chan models.Message, s.bufferSize)
	sess.subs[id] = ch
	s.metrics.AddHistorySubscribers(1)

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := sess.subs[id]; ok {
			close(c)
			delete(sess.subs, id)
			sess.lastActive = s.now()
			s.metrics.AddHistorySubscribers(-1)
		}
	}
	return ch, cancel
}

// Clear drops a session's history and disconnects its subscribers.
func (s *Store) Clear(owner, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{owner, sessionID}
	sess, ok := s.sessions[k]
	if !ok {
		return
	}
	for id, ch := range sess.subs {
		close(ch)
		delete(sess.subs, id)
		s.metrics.AddHistorySubscribers(-1)
	}
	delete(s.sessions, k)
}

// DisconnectAll closes every live subscription and keeps the history. Used
// on shutdown so streaming clients end cleanly.
func (s *Store) DisconnectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		for id, ch := range sess.subs {
			close(ch)
			delete(sess.subs, id)
			s.metrics.AddHistorySubscribers(-1)
		}
	}
}

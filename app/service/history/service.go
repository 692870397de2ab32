package history

import (
	"sync"
	"time"

	"studymate/app/config"

	"github.com/samber/do"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message exchange unit within a session. Immutable once appended.
type Turn struct {
	Role Role
	Text string
	At   time.Time
}

// Service keeps per-session conversation history in process memory.
// Retention is a sliding window: once a session exceeds the turn cap,
// the oldest turns are dropped.
type Service struct {
	mu       sync.RWMutex
	maxTurns int
	sessions map[string]*session
}

type session struct {
	mu    sync.Mutex
	turns []Turn
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewWithLimit(cfg.History.MaxTurns), nil
}

// NewWithLimit builds a Service capping each session at maxTurns turns.
func NewWithLimit(maxTurns int) *Service {
	if maxTurns <= 0 {
		maxTurns = 20
	}

	return &Service{
		maxTurns: maxTurns,
		sessions: make(map[string]*session),
	}
}

// Append adds turns to a session in submission order. All turns are appended
// atomically under the session lock, so two concurrent requests for the same
// session never interleave their user/assistant pairs.
func (s *Service) Append(sessionID string, turns ...Turn) {
	if len(turns) == 0 {
		return
	}

	sess := s.getOrCreate(sessionID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	now := time.Now()
	for _, turn := range turns {
		if turn.At.IsZero() {
			turn.At = now
		}
		sess.turns = append(sess.turns, turn)
	}

	if overflow := len(sess.turns) - s.maxTurns; overflow > 0 {
		sess.turns = append(sess.turns[:0], sess.turns[overflow:]...)
	}
}

// Turns returns a copy of the session's turns in append order.
// Unknown sessions yield an empty slice.
func (s *Service) Turns(sessionID string) []Turn {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	copied := make([]Turn, len(sess.turns))
	copy(copied, sess.turns)

	return copied
}

// Reset clears a session's turn history. Resetting an unknown session is a no-op.
func (s *Service) Reset(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
}

func (s *Service) getOrCreate(sessionID string) *session {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok = s.sessions[sessionID]; ok {
		return sess
	}

	sess = &session{}
	s.sessions[sessionID] = sess

	return sess
}

package httpserver

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	contractx "github.com/tanpawarit/buildershub-receptionist/agent/contract"
)

// textSession is a call carried over HTTP: what the receptionist "says" is
// collected and returned in the response.
type textSession struct {
	id string

	// turn serializes requests for one call.
	turn sync.Mutex

	mu     sync.Mutex
	spoken []string
	ended  bool
}

func newTextSession() *textSession {
	return &textSession{id: uuid.NewString()}
}

func (s *textSession) ID() string { return s.id }

func (s *textSession) Say(ctx context.Context, text string, _ bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return contractx.ErrSessionEnded
	}
	s.spoken = append(s.spoken, text)
	return nil
}

// History is filled in by the receptionist from the stored call.
func (s *textSession) History() []contractx.ChatMessage { return nil }

func (s *textSession) Shutdown(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = true
	return nil
}

func (s *textSession) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// drain returns and clears everything said since the last call.
func (s *textSession) drain() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.spoken
	s.spoken = nil
	if out == nil {
		out = []string{}
	}
	return out
}

type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*trackedSession
}

type trackedSession struct {
	sess     *textSession
	lastSeen time.Time
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*trackedSession)}
}

func (r *sessionRegistry) add(s *textSession, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.id] = &trackedSession{sess: s, lastSeen: now}
}

// get returns the session and marks it active.
func (r *sessionRegistry) get(id string, now time.Time) (*textSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	t.lastSeen = now
	return t.sess, true
}

func (r *sessionRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *sessionRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// expire removes sessions idle since before cutoff and returns their ids.
// A session in the middle of a turn is left alone.
func (r *sessionRegistry) expire(cutoff time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string
	for id, t := range r.sessions {
		if !t.lastSeen.Before(cutoff) {
			continue
		}
		if !t.sess.turn.TryLock() {
			continue
		}
		t.sess.turn.Unlock()
		delete(r.sessions, id)
		ids = append(ids, id)
	}
	return ids
}

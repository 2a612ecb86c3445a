package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a simple in-process session store for local/dev use.
type InMemoryStore struct {
	mu                sync.RWMutex
	sessions          map[string]*Session
	inactivityTimeout time.Duration
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*Session)}
}

// SetInactivityTimeout enables expiry of idle sessions. Zero (the default)
// keeps sessions forever.
func (s *InMemoryStore) SetInactivityTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inactivityTimeout = d
}

func (s *InMemoryStore) Create(_ context.Context, sessionID, userID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSession(s.createLocked(sessionID, userID)), nil
}

func (s *InMemoryStore) createLocked(sessionID, userID string) *Session {
	if existing, ok := s.sessions[sessionID]; ok {
		return existing
	}
	now := time.Now().UTC()
	sess := &Session{
		ID:             sessionID,
		UserID:         userID,
		StartedAt:      now,
		LastActivityAt: now,
	}
	s.sessions[sessionID] = sess
	return sess
}

func (s *InMemoryStore) Get(_ context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSession(sess), nil
}

func (s *InMemoryStore) Append(_ context.Context, sessionID string, ex Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = s.createLocked(sessionID, "")
	}

	if ex.ID == "" {
		ex.ID = uuid.NewString()
	}
	if ex.Timestamp.IsZero() {
		ex.Timestamp = time.Now().UTC()
	}
	ex.Seq = sess.NextSeq
	sess.NextSeq++
	sess.Exchanges = append(sess.Exchanges, ex)
	sess.LastActivityAt = ex.Timestamp
	return nil
}

func (s *InMemoryStore) Trim(_ context.Context, sessionID string, max int) error {
	if max <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	if n := len(sess.Exchanges); n > max {
		// Drop oldest first, keeping the retained entries in order.
		kept := make([]Exchange, max)
		copy(kept, sess.Exchanges[n-max:])
		sess.Exchanges = kept
	}
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

func (s *InMemoryStore) Close() error { return nil }

// StartJanitor periodically drops sessions idle beyond the configured
// inactivity timeout. It is a no-op when no timeout is set.
func (s *InMemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.expireIdle()
			}
		}
	}()
}

func (s *InMemoryStore) expireIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inactivityTimeout <= 0 {
		return
	}
	now := time.Now().UTC()
	for id, sess := range s.sessions {
		if now.Sub(sess.LastActivityAt) >= s.inactivityTimeout {
			delete(s.sessions, id)
		}
	}
}

func cloneSession(sess *Session) *Session {
	c := *sess
	c.Exchanges = make([]Exchange, len(sess.Exchanges))
	copy(c.Exchanges, sess.Exchanges)
	return &c
}

// Package session holds agent conversations in process memory with idle
// expiry. The store is the only cross-request state besides the rate
// limiter and is handed to handlers as a dependency, so it can later be
// swapped for a durable keyed store without touching route logic.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/formgate/formgate/internal/model"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session not found")

// Store is an in-memory session table.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	ttl      time.Duration
	now      func() time.Time
}

// New creates a store. ttl is the idle timeout; 0 means sessions never expire.
func New(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*model.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// newID builds a session id from a timestamp plus a random component, unique
// enough without a database sequence.
func newID(now time.Time) string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return fmt.Sprintf("sess_%d_%s", now.UnixMilli(), hex.EncodeToString(b))
}

// Create stores a new session for the given intake answers and returns it.
func (s *Store) Create(intake map[string]any) *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := &model.Session{
		ID:           newID(now),
		Intake:       intake,
		CreatedAt:    now,
		LastActivity: now,
	}
	s.sessions[sess.ID] = sess
	return sess
}

// Get returns the session for id, or ErrNotFound. An expired session is
// evicted on access.
func (s *Store) Get(id string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id)
}

func (s *Store) getLocked(id string) (*model.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("get %q: %w", id, ErrNotFound)
	}
	if s.ttl > 0 && s.now().Sub(sess.LastActivity) > s.ttl {
		delete(s.sessions, id)
		return nil, fmt.Errorf("get %q: %w", id, ErrNotFound)
	}
	return sess, nil
}

// AppendMessage appends to an existing session and bumps its activity
// timestamp. Appending to a missing session is an error; it never creates
// one.
func (s *Store) AppendMessage(id string, msg model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getLocked(id)
	if err != nil {
		return err
	}
	sess.Messages = append(sess.Messages, msg)
	sess.LastActivity = s.now()
	return nil
}

// History returns a copy of the session's most recent n messages (all of
// them when n <= 0). Copying keeps readers off the store's internal slice.
func (s *Store) History(id string, n int) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getLocked(id)
	if err != nil {
		return nil, err
	}
	msgs := sess.Messages
	if n > 0 && len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle past the ttl. No-op when ttl is 0.
func (s *Store) Sweep() {
	if s.ttl == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	for id, sess := range s.sessions {
		if sess.LastActivity.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}

// StartSweeper runs Sweep every interval until ctx is cancelled.
func (s *Store) StartSweeper(ctx context.Context, every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

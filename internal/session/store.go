package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"taicc-readiness/utilities"
)

var ErrSessionNotFound = errors.New("session not found or expired")

// Store keeps live sessions in a bounded LRU. Every Get renews the idle
// timeout; sessions untouched for ttl are dropped.
type Store struct {
	cache *expirable.LRU[string, *Session]
	now   func() time.Time
}

func NewStore(size int, ttl time.Duration) *Store {
	onEvict := func(id string, _ *Session) {
		utilities.Debug("Session %s evicted", id)
	}
	return &Store{
		cache: expirable.NewLRU[string, *Session](size, onEvict, ttl),
		now:   time.Now,
	}
}

// Create starts a new session in the login state.
func (s *Store) Create() *Session {
	sess := newSession(uuid.NewString(), s.now())
	s.cache.Add(sess.ID, sess)
	return sess
}

func (s *Store) Get(id string) (*Session, error) {
	sess, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.cache.Add(id, sess)
	return sess, nil
}

func (s *Store) Delete(id string) {
	s.cache.Remove(id)
}

func (s *Store) Len() int {
	return s.cache.Len()
}

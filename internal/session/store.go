package session

import (
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	defaultTTL             = 12 * time.Hour
	defaultCleanupInterval = 10 * time.Minute
)

// Store keeps sessions in memory. A session not touched for TTL is evicted
// and the user starts over from Idle.
type Store struct {
	mu    sync.Mutex
	cache *cache.Cache
}

type Config struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

func NewStore(cfg Config) *Store {
	if cfg.TTL == 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = defaultCleanupInterval
	}
	return &Store{
		cache: cache.New(cfg.TTL, cfg.CleanupInterval),
	}
}

// Get returns the session of the user, creating an Idle one on first contact.
// Every call extends the session lifetime.
func (s *Store) Get(userID int64) *Session {
	key := strconv.FormatInt(userID, 10)

	s.mu.Lock()
	defer s.mu.Unlock()
	if x, found := s.cache.Get(key); found {
		sess := x.(*Session)
		s.cache.Set(key, sess, cache.DefaultExpiration)
		return sess
	}
	sess := &Session{UserID: userID}
	s.cache.Set(key, sess, cache.DefaultExpiration)
	return sess
}

func (s *Store) Delete(userID int64) {
	s.cache.Delete(strconv.FormatInt(userID, 10))
}

// Len counts live sessions, expired ones not yet cleaned up included.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}

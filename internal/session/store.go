package session

import (
	"sync"
	"time"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/platform"
)

// entry is a cached client handle and the instant it stops being valid.
type entry struct {
	client    *platform.Client
	expiresAt time.Time
}

// Store holds at most one verified client per account identity.
// It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock replaces time.Now, for tests that need to move time forward.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty Store whose entries live for ttl.
func NewStore(ttl time.Duration, opts ...StoreOption) *Store {
	s := &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the client cached for identity if it has not expired.
// An expired entry is removed.
func (s *Store) Get(identity string) (*platform.Client, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[identity]
	if !ok {
		return nil, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, identity)
		return nil, false
	}
	return e.client, true
}

// Put stores client for identity, replacing any previous entry, and returns
// the expiry instant.
func (s *Store) Put(identity string, client *platform.Client) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := s.now().Add(s.ttl)
	s.entries[identity] = entry{client: client, expiresAt: expiresAt}
	return expiresAt
}

// Evict removes the entry for identity. It reports whether one existed.
func (s *Store) Evict(identity string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[identity]
	delete(s.entries, identity)
	return ok
}

// Purge removes every expired entry and returns how many were removed.
func (s *Store) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

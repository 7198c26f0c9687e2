package credential

import (
	"sync"
	"time"
)

// Credential is an OAuth-derived authorization credential. It is the
// only pipeline entity that outlives a single submission call.
type Credential struct {
	// Header is the complete Authorization header value,
	// e.g. "Bearer eyJh...".
	Header string `json:"header"`

	// Token is the raw bearer token.
	Token string `json:"token"`

	// ExpiresAt is the instant the credential stops being usable.
	ExpiresAt time.Time `json:"expiresAt"`

	Username string `json:"username,omitempty"`
	UserID   string `json:"userId,omitempty"`
}

// ValidAt reports whether the credential is usable at t. Expiry exactly
// equal to t counts as expired; only a strictly future expiry is valid.
func (c Credential) ValidAt(t time.Time) bool {
	return c.ExpiresAt.After(t)
}

// Store persists the most recently saved credential.
type Store interface {
	// Load returns the last saved credential regardless of expiry, or
	// nil when none was ever saved. Load never fails; unreadable
	// persisted state is reported as absence.
	Load() *Credential

	// Save replaces the stored credential.
	Save(Credential) error

	// Clear removes the stored credential, if any.
	Clear() error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu   sync.RWMutex
	cred *Credential
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() *Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return nil
	}
	c := *s.cred
	return &c
}

func (s *MemoryStore) Save(c Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = &c
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = nil
	return nil
}

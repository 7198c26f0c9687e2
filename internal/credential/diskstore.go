package credential

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/peterbourgon/diskv/v3"
)

const diskKey = "credential.json"

// DiskStore persists the credential under a cache directory so it
// survives process restarts. Reads and writes are serialized with a
// read-write lock so a save from one in-flight authentication never
// races a load from a concurrent submission.
type DiskStore struct {
	mu sync.RWMutex
	d  *diskv.Diskv
}

// NewDiskStore creates a store rooted at dir. The directory is created
// lazily on first save.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{
		d: diskv.New(diskv.Options{
			BasePath:     dir,
			Transform:    func(string) []string { return nil },
			CacheSizeMax: 64 * 1024,
		}),
	}
}

func (s *DiskStore) Load() *Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, err := s.d.Read(diskKey)
	if err != nil {
		// Absence and unreadable state look the same to callers.
		return nil
	}
	var c Credential
	if err := json.Unmarshal(b, &c); err != nil {
		slog.Warn("credential: discarding corrupt cache entry", "err", err)
		return nil
	}
	return &c
}

func (s *DiskStore) Save(c Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.d.Write(diskKey, b)
}

func (s *DiskStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.d.Has(diskKey) {
		return nil
	}
	return s.d.Erase(diskKey)
}

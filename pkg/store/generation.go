// Package store keeps a ledger of generated configuration files.
package store

import (
	"errors"
	"os"
	"sort"
	"sync"
	"time"
)

var ErrGenerationNotFound = errors.New("no generation recorded for path")

// Generation records one materialization of a configuration file.
type Generation struct {
	Path      string      `json:"path"`
	Source    string      `json:"source"`
	Checksum  string      `json:"checksum"`
	Entries   int         `json:"entries"`
	Owner     string      `json:"owner,omitempty"`
	Group     string      `json:"group,omitempty"`
	Mode      os.FileMode `json:"mode"`
	Changed   bool        `json:"changed"`
	WrittenAt time.Time   `json:"written_at"`
}

// GenerationStore records the latest generation per target path.
type GenerationStore interface {
	Record(gen Generation) error
	Get(path string) (*Generation, error)
	List() ([]Generation, error)
}

type memoryStore struct {
	mu   sync.Mutex
	gens map[string]Generation // target path -> latest generation
}

func NewMemoryStore() *memoryStore {
	return &memoryStore{gens: make(map[string]Generation)}
}

func (s *memoryStore) Record(gen Generation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[gen.Path] = gen
	return nil
}

func (s *memoryStore) Get(path string) (*Generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gen, ok := s.gens[path]
	if !ok {
		return nil, ErrGenerationNotFound
	}
	return &gen, nil
}

func (s *memoryStore) List() ([]Generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gens := make([]Generation, 0, len(s.gens))
	for _, gen := range s.gens {
		gens = append(gens, gen)
	}
	sort.Slice(gens, func(i, j int) bool { return gens[i].Path < gens[j].Path })
	return gens, nil
}

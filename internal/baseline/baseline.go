// Package baseline exposes the previously generated payload, the last-resort
// source for every provider.
package baseline

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"pricing-ingest/internal/pricing"
)

// Store reads the previous payload from disk at most once per run.
// A missing file is a bootstrap run: the payload is empty, not an error.
type Store struct {
	path string

	once    sync.Once
	payload *pricing.Payload
	exists  bool
	err     error
}

// NewStore returns a Store for the payload at path. Nothing is read until
// the first call to Load.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the previous payload. Every call returns the same value.
func (s *Store) Load() (*pricing.Payload, error) {
	s.once.Do(s.load)
	return s.payload, s.err
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("no previous pricing payload, bootstrapping", "path", s.path)
		s.payload = empty()
		return
	}
	if err != nil {
		s.err = fmt.Errorf("read previous payload: %w", err)
		s.payload = empty()
		return
	}
	p, err := pricing.Decode(data)
	if err != nil {
		s.err = fmt.Errorf("decode previous payload %s: %w", s.path, err)
		s.payload = empty()
		return
	}
	s.payload = p
	s.exists = true
}

// Exists reports whether a previous payload was found and decoded.
func (s *Store) Exists() bool {
	s.once.Do(s.load)
	return s.exists
}

func empty() *pricing.Payload {
	p := &pricing.Payload{}
	p.Normalize()
	return p
}

// Package crud implements the record editor shared by the dashboard pages:
// a Store caching the collection, a Form holding one draft and a Dispatcher sending
// mutations to the backend and refreshing the Store.
package crud

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
)

// Record is anything with a stable identifier.
type Record interface {
	RecordID() string
}

type (
	// Lister fetches a whole collection.
	Lister[R Record] interface {
		List(ctx context.Context) ([]R, error)
	}

	// Backend is the remote collection a Dispatcher mutates.
	Backend[R Record, D any] interface {
		Lister[R]
		Create(ctx context.Context, draft D) (R, error)
		Update(ctx context.Context, id string, draft D) (R, error)
		Delete(ctx context.Context, id string) error
	}
)

// Store is the client side cache of a collection. It is replaced wholesale on every
// successful Load and never patched.
type Store[R Record] struct {
	noun     string // plural, eg. "courses"
	lister   Lister[R]
	notifier core.Notifier
	logger   core.Logger

	mu      sync.RWMutex
	records []R
	loaded  bool
}

func NewStore[R Record](noun string, lister Lister[R], notifier core.Notifier, logger core.Logger) *Store[R] {
	return &Store[R]{
		noun:     noun,
		lister:   lister,
		notifier: notifier,
		logger:   logger,
	}
}

// Load fetches the full collection and replaces the cached records.
// On failure the previous records are kept and a generic notice is surfaced.
func (s *Store[R]) Load(ctx context.Context) error {
	records, err := s.lister.List(ctx)
	if err != nil {
		s.logger.Error(fmt.Sprintf("loading %s", s.noun), err)
		s.notifier.Notify(core.Failure(fmt.Sprintf("Failed to load %s.", s.noun)))
		return errors.Wrapf(err, "loading %s", s.noun)
	}
	if records == nil {
		records = []R{}
	}

	s.mu.Lock()
	s.records = records
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Records returns a copy of the cached records, in backend order.
func (s *Store[R]) Records() []R {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]R, len(s.records))
	copy(out, s.records)
	return out
}

// Find returns the cached record with the given id.
func (s *Store[R]) Find(id string) (R, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.RecordID() == id {
			return r, true
		}
	}
	var zero R
	return zero, false
}

func (s *Store[R]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Loaded reports whether at least one Load succeeded.
func (s *Store[R]) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

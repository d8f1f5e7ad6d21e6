// Package memory is an in-process record store for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"finsight/internal/core"
	"finsight/internal/store"
)

type item struct {
	rec core.Record
	seq uint64
}

// Store keeps records in memory, one slice per kind.
type Store struct {
	mu    sync.Mutex
	now   func() time.Time
	seq   uint64
	items map[core.Kind][]item
}

func New() *Store {
	return &Store{now: time.Now, items: make(map[core.Kind][]item)}
}

// Create validates and stores a record.
func (s *Store) Create(_ context.Context, n core.NewRecord) (core.Record, error) {
	if err := n.Validate(); err != nil {
		return core.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	r := core.Record{
		ID:          uuid.NewString(),
		OwnerID:     n.OwnerID,
		Kind:        n.Kind,
		Amount:      n.Amount,
		OccurredAt:  core.At(n.OccurredAt),
		RecordedAt:  s.now().UTC(),
		Label:       n.Label,
		Description: n.Description,
	}
	s.items[n.Kind] = append(s.items[n.Kind], item{rec: r, seq: s.seq})
	return r, nil
}

// Seed stores a record as-is, bypassing validation. Tests use it to plant
// records a real store might hold, such as ones with malformed dates.
func (s *Store) Seed(r core.Record) core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = s.now().UTC()
	}
	s.items[r.Kind] = append(s.items[r.Kind], item{rec: r, seq: s.seq})
	return r
}

// List returns the owner's records of one kind, newest recorded first.
func (s *Store) List(_ context.Context, owner string, kind core.Kind) ([]core.Record, error) {
	if !kind.Valid() {
		return nil, core.ErrInvalidKind
	}
	s.mu.Lock()
	var matched []item
	for _, it := range s.items[kind] {
		if it.rec.OwnerID == owner {
			matched = append(matched, it)
		}
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].rec.RecordedAt.Equal(matched[j].rec.RecordedAt) {
			return matched[i].rec.RecordedAt.After(matched[j].rec.RecordedAt)
		}
		return matched[i].seq > matched[j].seq
	})
	out := make([]core.Record, len(matched))
	for i, it := range matched {
		out[i] = it.rec
	}
	return out, nil
}

// Get returns one of the owner's records by kind and ID.
func (s *Store) Get(_ context.Context, owner string, kind core.Kind, id string) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items[kind] {
		if it.rec.ID == id && it.rec.OwnerID == owner {
			return it.rec, nil
		}
	}
	return core.Record{}, store.ErrNotFound
}

func (s *Store) Close() error { return nil }

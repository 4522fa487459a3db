package library

import (
	"context"
	"sync"
	"time"

	"catalog/internal/models"
)

// state is the in-memory mirror of the persisted snapshot. Every mutation
// goes through commit, which flushes once and restores the previous contents
// if either the mutation or the flush fails.
type state struct {
	mu      sync.Mutex
	books   []models.Book
	history []models.HistoryEntry
	nextID  int64

	store *Store
	now   func() time.Time
}

func newState(store *Store, snap Snapshot) *state {
	// A lost or stale counter must not hand out ids that are still in use
	for _, b := range snap.Books {
		if b.ID >= snap.NextID {
			snap.NextID = b.ID + 1
		}
	}
	return &state{
		books:   snap.Books,
		history: snap.History,
		nextID:  snap.NextID,
		store:   store,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *state) snapshot() Snapshot {
	books := make([]models.Book, len(s.books))
	for i, b := range s.books {
		books[i] = b.Clone()
	}
	history := make([]models.HistoryEntry, len(s.history))
	copy(history, s.history)
	return Snapshot{Books: books, History: history, NextID: s.nextID}
}

func (s *state) restore(snap Snapshot) {
	s.books = snap.Books
	s.history = snap.History
	s.nextID = snap.NextID
}

// commit runs fn under the state lock and persists the result.
func (s *state) commit(ctx context.Context, fn func(now time.Time) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.snapshot()
	if err := fn(s.now()); err != nil {
		s.restore(backup)
		return err
	}
	if err := s.store.Save(ctx, s.snapshot()); err != nil {
		s.restore(backup)
		return err
	}
	return nil
}

// read runs fn under the state lock without persisting.
func (s *state) read(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

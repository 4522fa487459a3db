package library

import (
	"context"
	"fmt"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"catalog/internal/models"
	"catalog/internal/storage"
)

// Keys under which the catalog is persisted.
const (
	KeyBooks   = "library_books"
	KeyHistory = "library_history"
	KeyNextID  = "library_next_id"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Snapshot is the full persisted state of the catalog.
type Snapshot struct {
	Books   []models.Book
	History []models.HistoryEntry
	NextID  int64
}

// EmptySnapshot is what Load returns when nothing was saved yet.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Books:   []models.Book{},
		History: []models.HistoryEntry{},
		NextID:  1,
	}
}

// Store translates a Snapshot to and from the key-value medium.
type Store struct {
	db     storage.Storage
	logger *zap.Logger
}

// NewStore creates a store adapter over db.
func NewStore(db storage.Storage, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Load returns the last saved snapshot. Keys that are absent or cannot be
// decoded fall back to their defaults; only medium failures are returned.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	snap := EmptySnapshot()

	raw, ok, err := s.db.Get(ctx, KeyBooks)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", models.ErrStorage, err)
	}
	if ok {
		var books []models.Book
		if err := json.UnmarshalFromString(raw, &books); err != nil {
			s.logger.Warn("Discarding corrupt books payload", zap.Error(err))
		} else if books != nil {
			snap.Books = books
		}
	}

	raw, ok, err = s.db.Get(ctx, KeyHistory)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", models.ErrStorage, err)
	}
	if ok {
		var history []models.HistoryEntry
		if err := json.UnmarshalFromString(raw, &history); err != nil {
			s.logger.Warn("Discarding corrupt history payload", zap.Error(err))
		} else if history != nil {
			snap.History = history
		}
	}

	raw, ok, err = s.db.Get(ctx, KeyNextID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", models.ErrStorage, err)
	}
	if ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			s.logger.Warn("Discarding corrupt next id", zap.String("value", raw))
		} else {
			snap.NextID = id
		}
	}

	return snap, nil
}

// Save writes all three keys in one PutMany call.
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	books := snap.Books
	if books == nil {
		books = []models.Book{}
	}
	history := snap.History
	if history == nil {
		history = []models.HistoryEntry{}
	}

	booksJSON, err := json.MarshalToString(books)
	if err != nil {
		return fmt.Errorf("failed to encode books: %w", err)
	}
	historyJSON, err := json.MarshalToString(history)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	err = s.db.PutMany(ctx, []storage.Entry{
		{Key: KeyBooks, Value: booksJSON},
		{Key: KeyHistory, Value: historyJSON},
		{Key: KeyNextID, Value: strconv.FormatInt(snap.NextID, 10)},
	})
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrStorage, err)
	}
	return nil
}

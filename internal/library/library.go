// Package library holds the catalog core: the book repository, the capped
// history log, the store adapter that persists both, and the Library facade
// that combines them into the borrow/return workflow.
package library

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"catalog/internal/models"
	"catalog/internal/storage"
)

// Library is the single owner of the catalog state. It is safe for
// concurrent use.
type Library struct {
	st      *state
	books   *Repository
	history *HistoryLog
	logger  *zap.Logger
}

// Open loads the persisted catalog from db.
func Open(ctx context.Context, db storage.Storage, logger *zap.Logger) (*Library, error) {
	store := NewStore(db, logger)
	snap, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	st := newState(store, snap)
	logger.Info("Catalog loaded",
		zap.Int("books", len(snap.Books)),
		zap.Int("history", len(snap.History)),
		zap.Int64("next_id", snap.NextID),
	)

	return &Library{
		st:      st,
		books:   &Repository{st: st},
		history: &HistoryLog{st: st},
		logger:  logger,
	}, nil
}

// Books returns the book repository.
func (l *Library) Books() *Repository { return l.books }

// History returns the history log.
func (l *Library) History() *HistoryLog { return l.history }

// ListBooks returns every book in insertion order.
func (l *Library) ListBooks() []models.Book {
	return l.books.List()
}

// GetBook returns a single book.
func (l *Library) GetBook(id int64) (models.Book, error) {
	return l.books.Get(id)
}

// ListHistory returns the activity log, newest first.
func (l *Library) ListHistory() []models.HistoryEntry {
	return l.history.List()
}

// AddBook validates fields and adds a new available book.
func (l *Library) AddBook(ctx context.Context, fields models.BookFields) (models.Book, error) {
	book, err := l.books.Add(ctx, fields)
	if err != nil {
		return models.Book{}, err
	}
	l.logger.Info("Book added", zap.Int64("book_id", book.ID), zap.String("title", book.Title))
	return book, nil
}

// EditBook overwrites title, author and isbn of an existing book.
func (l *Library) EditBook(ctx context.Context, id int64, fields models.BookFields) (models.Book, error) {
	fields, err := fields.Normalize()
	if err != nil {
		return models.Book{}, err
	}
	book, err := l.books.Update(ctx, id, models.PatchFromFields(fields))
	if err != nil {
		return models.Book{}, err
	}
	l.logger.Info("Book updated", zap.Int64("book_id", id))
	return book, nil
}

// RemoveBook deletes a book. Its history entries stay.
func (l *Library) RemoveBook(ctx context.Context, id int64) error {
	if err := l.books.Delete(ctx, id); err != nil {
		return err
	}
	l.logger.Info("Book deleted", zap.Int64("book_id", id))
	return nil
}

// BorrowBook marks an available book as borrowed and records the event.
// Both changes are saved together or not at all.
func (l *Library) BorrowBook(ctx context.Context, id int64, borrowerName string) (models.Book, error) {
	borrower, err := models.ValidateBorrower(borrowerName)
	if err != nil {
		return models.Book{}, err
	}

	var book models.Book
	err = l.st.commit(ctx, func(now time.Time) error {
		current, err := l.current(id)
		if err != nil {
			return err
		}
		if current.Status != models.StatusAvailable {
			return fmt.Errorf("%w: book %d is already borrowed by %s", models.ErrInvalidTransition, id, current.BorrowedBy)
		}

		status := models.StatusBorrowed
		book, err = l.books.update(id, models.BookPatch{
			Status:       &status,
			BorrowedBy:   &borrower,
			BorrowedDate: &now,
		}, now)
		if err != nil {
			return err
		}
		l.history.push(models.HistoryFields{
			BookID:       id,
			BookTitle:    current.Title,
			BorrowerName: borrower,
			Action:       models.ActionBorrowed,
		}, now)
		return nil
	})
	if err != nil {
		return models.Book{}, err
	}

	l.logger.Info("Book borrowed", zap.Int64("book_id", id), zap.String("borrower", borrower))
	return book.Clone(), nil
}

// ReturnBook marks a borrowed book as available and records the event.
func (l *Library) ReturnBook(ctx context.Context, id int64) (models.Book, error) {
	var book models.Book
	err := l.st.commit(ctx, func(now time.Time) error {
		current, err := l.current(id)
		if err != nil {
			return err
		}
		if current.Status != models.StatusBorrowed {
			return fmt.Errorf("%w: book %d is not borrowed", models.ErrInvalidTransition, id)
		}

		borrower := current.BorrowedBy
		if borrower == "" {
			borrower = models.UnknownBorrower
		}

		status := models.StatusAvailable
		book, err = l.books.update(id, models.BookPatch{
			Status:          &status,
			ClearBorrowedBy: true,
			ReturnedDate:    &now,
		}, now)
		if err != nil {
			return err
		}
		l.history.push(models.HistoryFields{
			BookID:       id,
			BookTitle:    current.Title,
			BorrowerName: borrower,
			Action:       models.ActionReturned,
		}, now)
		return nil
	})
	if err != nil {
		return models.Book{}, err
	}

	l.logger.Info("Book returned", zap.Int64("book_id", id))
	return book.Clone(), nil
}

// Search returns books whose title, author or isbn contains query,
// ignoring case. An empty query matches every book.
func (l *Library) Search(query string) []models.Book {
	q := strings.ToLower(strings.TrimSpace(query))

	matches := []models.Book{}
	for _, b := range l.books.List() {
		if strings.Contains(strings.ToLower(b.Title), q) ||
			strings.Contains(strings.ToLower(b.Author), q) ||
			strings.Contains(strings.ToLower(b.ISBN), q) {
			matches = append(matches, b)
		}
	}
	return matches
}

// Stats counts books by status and history entries.
func (l *Library) Stats() models.Stats {
	var stats models.Stats
	l.st.read(func() {
		stats.TotalBooks = len(l.st.books)
		for _, b := range l.st.books {
			if b.Status == models.StatusAvailable {
				stats.AvailableBooks++
			}
		}
		stats.BorrowedBooks = stats.TotalBooks - stats.AvailableBooks
		stats.RecentActivity = len(l.st.history)
	})
	return stats
}

// current must be called with the state lock held.
func (l *Library) current(id int64) (models.Book, error) {
	i := l.books.indexOf(id)
	if i < 0 {
		return models.Book{}, notFound(id)
	}
	return l.st.books[i], nil
}

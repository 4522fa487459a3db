package library

import (
	"context"
	"fmt"
	"time"

	"catalog/internal/models"
)

// Repository owns the ordered book collection. Books keep insertion order.
type Repository struct {
	st *state
}

// List returns all books in insertion order.
func (r *Repository) List() []models.Book {
	var books []models.Book
	r.st.read(func() {
		books = make([]models.Book, len(r.st.books))
		for i, b := range r.st.books {
			books[i] = b.Clone()
		}
	})
	return books
}

// Get returns the book with the given id.
func (r *Repository) Get(id int64) (models.Book, error) {
	var (
		book models.Book
		err  error
	)
	r.st.read(func() {
		i := r.indexOf(id)
		if i < 0 {
			err = notFound(id)
			return
		}
		book = r.st.books[i].Clone()
	})
	return book, err
}

// Add creates a book with a fresh id and status Available.
func (r *Repository) Add(ctx context.Context, fields models.BookFields) (models.Book, error) {
	fields, err := fields.Normalize()
	if err != nil {
		return models.Book{}, err
	}

	var book models.Book
	err = r.st.commit(ctx, func(now time.Time) error {
		book = r.add(fields, now)
		return nil
	})
	if err != nil {
		return models.Book{}, err
	}
	return book.Clone(), nil
}

// Update merges patch onto the book with the given id.
func (r *Repository) Update(ctx context.Context, id int64, patch models.BookPatch) (models.Book, error) {
	if err := patch.Validate(); err != nil {
		return models.Book{}, err
	}

	var book models.Book
	err := r.st.commit(ctx, func(now time.Time) error {
		var err error
		book, err = r.update(id, patch, now)
		return err
	})
	if err != nil {
		return models.Book{}, err
	}
	return book.Clone(), nil
}

// Delete removes the book with the given id. History entries that point at
// it are left alone.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.st.commit(ctx, func(time.Time) error {
		i := r.indexOf(id)
		if i < 0 {
			return notFound(id)
		}
		r.st.books = append(r.st.books[:i], r.st.books[i+1:]...)
		return nil
	})
}

func (r *Repository) add(fields models.BookFields, now time.Time) models.Book {
	book := models.Book{
		ID:        r.st.nextID,
		Title:     fields.Title,
		Author:    fields.Author,
		ISBN:      fields.ISBN,
		Status:    models.StatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.st.nextID++
	r.st.books = append(r.st.books, book)
	return book
}

func (r *Repository) update(id int64, patch models.BookPatch, now time.Time) (models.Book, error) {
	i := r.indexOf(id)
	if i < 0 {
		return models.Book{}, notFound(id)
	}
	patch.Apply(&r.st.books[i])
	r.st.books[i].UpdatedAt = now
	return r.st.books[i], nil
}

func (r *Repository) indexOf(id int64) int {
	for i := range r.st.books {
		if r.st.books[i].ID == id {
			return i
		}
	}
	return -1
}

func notFound(id int64) error {
	return fmt.Errorf("%w: id %d", models.ErrNotFound, id)
}

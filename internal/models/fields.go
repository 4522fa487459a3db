package models

import (
	"fmt"
	"strings"
	"time"
)

// BookFields are the user-editable fields required to create a book.
type BookFields struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
}

// Normalize trims every field and checks that none is empty.
func (f BookFields) Normalize() (BookFields, error) {
	out := BookFields{
		Title:  strings.TrimSpace(f.Title),
		Author: strings.TrimSpace(f.Author),
		ISBN:   strings.TrimSpace(f.ISBN),
	}
	if err := requireNonEmpty("title", out.Title); err != nil {
		return BookFields{}, err
	}
	if err := requireNonEmpty("author", out.Author); err != nil {
		return BookFields{}, err
	}
	if err := requireNonEmpty("isbn", out.ISBN); err != nil {
		return BookFields{}, err
	}
	return out, nil
}

// BookPatch is a partial update of a book. A nil slot leaves the field
// untouched. ClearBorrowedBy removes the borrower.
type BookPatch struct {
	Title           *string
	Author          *string
	ISBN            *string
	Status          *Status
	BorrowedBy      *string
	ClearBorrowedBy bool
	BorrowedDate    *time.Time
	ReturnedDate    *time.Time
}

// PatchFromFields builds a patch that overwrites title, author and isbn.
func PatchFromFields(f BookFields) BookPatch {
	return BookPatch{Title: &f.Title, Author: &f.Author, ISBN: &f.ISBN}
}

// Validate trims the string slots in place and rejects empty values and
// unknown statuses.
func (p *BookPatch) Validate() error {
	for _, slot := range []struct {
		name string
		v    *string
	}{
		{"title", p.Title},
		{"author", p.Author},
		{"isbn", p.ISBN},
		{"borrowedBy", p.BorrowedBy},
	} {
		if slot.v == nil {
			continue
		}
		*slot.v = strings.TrimSpace(*slot.v)
		if err := requireNonEmpty(slot.name, *slot.v); err != nil {
			return err
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, *p.Status)
	}
	if p.ClearBorrowedBy && p.BorrowedBy != nil {
		return fmt.Errorf("%w: borrowedBy both set and cleared", ErrValidation)
	}
	return nil
}

// Apply merges the patch onto b. It does not touch UpdatedAt.
func (p BookPatch) Apply(b *Book) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.ISBN != nil {
		b.ISBN = *p.ISBN
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.BorrowedBy != nil {
		b.BorrowedBy = *p.BorrowedBy
	}
	if p.ClearBorrowedBy {
		b.BorrowedBy = ""
	}
	if p.BorrowedDate != nil {
		t := *p.BorrowedDate
		b.BorrowedDate = &t
	}
	if p.ReturnedDate != nil {
		t := *p.ReturnedDate
		b.ReturnedDate = &t
	}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusAvailable || s == StatusBorrowed
}

// ValidateBorrower trims name and rejects an empty one.
func ValidateBorrower(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := requireNonEmpty("borrowerName", name); err != nil {
		return "", err
	}
	return name, nil
}

func requireNonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%w: %s is required", ErrValidation, field)
	}
	return nil
}

package models

import "time"

// Status is the circulation state of a book.
type Status string

const (
	StatusAvailable Status = "Available"
	StatusBorrowed  Status = "Borrowed"
)

// Action is the kind of circulation event recorded in the history log.
type Action string

const (
	ActionBorrowed Action = "Borrowed"
	ActionReturned Action = "Returned"
)

// UnknownBorrower is recorded on return when the book had no borrower.
const UnknownBorrower = "Unknown"

// Book represents a book in the catalog
type Book struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Author       string     `json:"author"`
	ISBN         string     `json:"isbn"`
	Status       Status     `json:"status"`
	BorrowedBy   string     `json:"borrowedBy,omitempty"`
	BorrowedDate *time.Time `json:"borrowedDate,omitempty"`
	ReturnedDate *time.Time `json:"returnedDate,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Clone returns a deep copy of the book.
func (b Book) Clone() Book {
	if b.BorrowedDate != nil {
		t := *b.BorrowedDate
		b.BorrowedDate = &t
	}
	if b.ReturnedDate != nil {
		t := *b.ReturnedDate
		b.ReturnedDate = &t
	}
	return b
}

// HistoryEntry represents a single borrow or return event.
// BookTitle is a snapshot taken when the event happened.
type HistoryEntry struct {
	ID           int64     `json:"id"`
	BookID       int64     `json:"bookId"`
	BookTitle    string    `json:"bookTitle"`
	BorrowerName string    `json:"borrowerName"`
	Action       Action    `json:"action"`
	Date         time.Time `json:"date"`
}

// HistoryFields are the caller-supplied parts of a history entry.
type HistoryFields struct {
	BookID       int64
	BookTitle    string
	BorrowerName string
	Action       Action
}

// Stats holds catalog counters
type Stats struct {
	TotalBooks     int `json:"totalBooks"`
	AvailableBooks int `json:"availableBooks"`
	BorrowedBooks  int `json:"borrowedBooks"`
	RecentActivity int `json:"recentActivity"`
}

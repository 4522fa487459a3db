package library

import (
	"context"
	"time"

	"catalog/internal/models"
)

// MaxHistory is the number of entries the log keeps; older ones are dropped.
const MaxHistory = 50

// HistoryLog is the newest-first record of borrow and return events.
type HistoryLog struct {
	st *state
}

// List returns the log, newest first.
func (h *HistoryLog) List() []models.HistoryEntry {
	var entries []models.HistoryEntry
	h.st.read(func() {
		entries = make([]models.HistoryEntry, len(h.st.history))
		copy(entries, h.st.history)
	})
	return entries
}

// Append records a new entry at the front of the log.
func (h *HistoryLog) Append(ctx context.Context, fields models.HistoryFields) (models.HistoryEntry, error) {
	var entry models.HistoryEntry
	err := h.st.commit(ctx, func(now time.Time) error {
		entry = h.push(fields, now)
		return nil
	})
	if err != nil {
		return models.HistoryEntry{}, err
	}
	return entry, nil
}

func (h *HistoryLog) push(fields models.HistoryFields, now time.Time) models.HistoryEntry {
	entry := models.HistoryEntry{
		ID:           h.nextID(now),
		BookID:       fields.BookID,
		BookTitle:    fields.BookTitle,
		BorrowerName: fields.BorrowerName,
		Action:       fields.Action,
		Date:         now,
	}

	history := make([]models.HistoryEntry, 0, len(h.st.history)+1)
	history = append(history, entry)
	history = append(history, h.st.history...)
	if len(history) > MaxHistory {
		history = history[:MaxHistory]
	}
	h.st.history = history
	return entry
}

// nextID is the timestamp in milliseconds, bumped past the newest entry when
// the clock has not moved forward.
func (h *HistoryLog) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if len(h.st.history) > 0 && id <= h.st.history[0].ID {
		id = h.st.history[0].ID + 1
	}
	return id
}

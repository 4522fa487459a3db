package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"catalog/internal/models"
)

// sendMessage sends msg and logs delivery failures
func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) {
	if b.api == nil {
		b.sent = append(b.sent, msg.Text) // For testing
		return
	}

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message", zap.Error(err), zap.Int64("chat_id", msg.ChatID))
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

// replyError turns a catalog error into a short notification
func (b *Bot) replyError(chatID int64, action string, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		b.reply(chatID, "❌ Book not found.")
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrInvalidTransition):
		b.reply(chatID, fmt.Sprintf("⚠️ %v", err))
	default:
		b.logger.Error("Catalog operation failed", zap.String("action", action), zap.Error(err))
		b.reply(chatID, fmt.Sprintf("❌ Error %s. Please try again.", action))
	}
}

// parseID reads a book id from command arguments
func parseID(args string) (int64, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return 0, fmt.Errorf("missing book id")
	}
	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid book id %q", args)
	}
	return id, nil
}

func formatBook(b models.Book) string {
	line := fmt.Sprintf("#%d %s by %s (ISBN %s) [%s]", b.ID, b.Title, b.Author, b.ISBN, b.Status)
	if b.Status == models.StatusBorrowed && b.BorrowedBy != "" {
		line += " - " + b.BorrowedBy
	}
	return line
}

func formatBooks(books []models.Book) string {
	lines := make([]string, 0, len(books))
	for _, b := range books {
		lines = append(lines, formatBook(b))
	}
	return strings.Join(lines, "\n")
}

func formatHistory(entries []models.HistoryEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		borrower := e.BorrowerName
		if borrower == "" {
			borrower = "N/A"
		}
		lines = append(lines, fmt.Sprintf("%s  %s  %s  %s",
			e.Date.Local().Format(time.DateTime), e.Action, e.BookTitle, borrower))
	}
	return strings.Join(lines, "\n")
}

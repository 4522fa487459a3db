package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleDeleteCallback processes the delete confirmation buttons
func (b *Bot) handleDeleteCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID
	data := strings.TrimPrefix(query.Data, "delete:")

	if data == "cancel" {
		b.reply(chatID, "Deletion cancelled.")
		return
	}

	id, err := parseID(data)
	if err != nil {
		b.logger.Warn("Malformed delete callback", zap.String("data", query.Data))
		return
	}

	if err := b.lib.RemoveBook(ctx, id); err != nil {
		b.replyError(chatID, "deleting book", err)
		return
	}

	b.logger.Info("Book deleted via bot",
		zap.Int64("book_id", id),
		zap.Int64("user_id", query.From.ID),
	)
	b.reply(chatID, fmt.Sprintf("🗑 Book #%d deleted successfully!", id))
}

// handleReturnCallback processes the return buttons under /books
func (b *Bot) handleReturnCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	id, err := parseID(strings.TrimPrefix(query.Data, "return:"))
	if err != nil {
		b.logger.Warn("Malformed return callback", zap.String("data", query.Data))
		return
	}
	b.returnBook(ctx, query.Message.Chat.ID, id)
}

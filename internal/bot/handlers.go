package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleMessage processes a single message
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleMessage", zap.Any("panic", r))
			b.reply(message.Chat.ID, "An error occurred while processing your request. Please try again.")
		}
	}()

	userID := message.From.ID
	ctx := context.Background()

	// Any command interrupts an ongoing conversation
	if state := b.state(userID); state != nil {
		if message.IsCommand() {
			b.clearState(userID)
		} else {
			b.handleConversation(ctx, message, state)
			return
		}
	}

	if !message.IsCommand() {
		b.reply(message.Chat.ID, "Use /start to see available commands.")
		return
	}

	args := message.CommandArguments()
	switch message.Command() {
	case "start", "help":
		b.handleStart(message)
	case "books":
		b.handleBooks(message)
	case "add":
		b.handleAddStart(message)
	case "edit":
		b.handleEditStart(message, args)
	case "delete":
		b.handleDeleteStart(message, args)
	case "borrow":
		b.handleBorrowStart(message, args)
	case "return":
		b.handleReturn(ctx, message, args)
	case "history":
		b.handleHistory(message)
	case "search":
		b.handleSearch(message, args)
	case "stats":
		b.handleStats(message)
	default:
		b.reply(message.Chat.ID, "Unknown command. Use /start to see available commands.")
	}
}

// handleCallbackQuery processes inline keyboard button clicks
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleCallbackQuery", zap.Any("panic", r))
		}
	}()

	// Answer the callback query to remove loading state
	if b.api != nil {
		if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
			b.logger.Warn("Failed to answer callback query", zap.Error(err))
		}
	}

	if query.Message == nil {
		return
	}

	ctx := context.Background()
	data := query.Data
	switch {
	case strings.HasPrefix(data, "delete:"):
		b.handleDeleteCallback(ctx, query)
	case strings.HasPrefix(data, "return:"):
		b.handleReturnCallback(ctx, query)
	}
}

func (b *Bot) state(userID int64) *ConversationState {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()
	return b.states[userID]
}

func (b *Bot) setState(userID int64, state *ConversationState) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()
	b.states[userID] = state
}

func (b *Bot) clearState(userID int64) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()
	delete(b.states, userID)
}

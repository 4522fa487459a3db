package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"catalog/internal/models"
)

// keepValue is what a user sends during /edit to keep the current value
const keepValue = "-"

// handleConversation processes multi-step conversations
func (b *Bot) handleConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	switch state.Command {
	case "add", "edit":
		b.handleBookFormConversation(ctx, message, state)
	case "borrow":
		b.handleBorrowConversation(ctx, message, state)
	}

	// Clean up completed conversations
	if state.Step == stepDone {
		b.clearState(message.From.ID)
	}
}

var formPrompts = map[int]struct {
	key   string
	label string
}{
	1: {"title", "title"},
	2: {"author", "author"},
	3: {"isbn", "ISBN"},
}

// handleBookFormConversation collects title, author and ISBN for /add and /edit
func (b *Bot) handleBookFormConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	prompt, ok := formPrompts[state.Step]
	if !ok {
		state.Step = stepDone
		return
	}

	value := strings.TrimSpace(message.Text)
	if state.Command == "edit" && value == keepValue {
		value = currentField(state.Data["book"].(models.Book), prompt.key)
	}
	if value == "" {
		b.reply(message.Chat.ID, fmt.Sprintf("The %s cannot be empty. Please enter the %s:", prompt.label, prompt.label))
		return
	}
	state.Data[prompt.key] = value

	if state.Step < len(formPrompts) {
		state.Step++
		next := formPrompts[state.Step]
		if state.Command == "edit" {
			current := currentField(state.Data["book"].(models.Book), next.key)
			b.reply(message.Chat.ID, fmt.Sprintf("Send a new %s or \"-\" to keep %q:", next.label, current))
		} else {
			b.reply(message.Chat.ID, fmt.Sprintf("Please enter the %s:", next.label))
		}
		return
	}

	fields := models.BookFields{
		Title:  state.Data["title"].(string),
		Author: state.Data["author"].(string),
		ISBN:   state.Data["isbn"].(string),
	}
	state.Step = stepDone

	if state.Command == "edit" {
		book, err := b.lib.EditBook(ctx, state.Data["id"].(int64), fields)
		if err != nil {
			b.replyError(message.Chat.ID, "saving book", err)
			return
		}
		b.reply(message.Chat.ID, "✅ Book updated successfully!\n"+formatBook(book))
		return
	}

	book, err := b.lib.AddBook(ctx, fields)
	if err != nil {
		b.replyError(message.Chat.ID, "saving book", err)
		return
	}
	b.reply(message.Chat.ID, "✅ Book added successfully!\n"+formatBook(book))
}

// handleBorrowConversation waits for the borrower's name
func (b *Bot) handleBorrowConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	name := strings.TrimSpace(message.Text)
	if name == "" {
		b.reply(message.Chat.ID, "Please enter borrower name:")
		return
	}

	state.Step = stepDone
	book, err := b.lib.BorrowBook(ctx, state.Data["id"].(int64), name)
	if err != nil {
		b.replyError(message.Chat.ID, "borrowing book", err)
		return
	}
	b.reply(message.Chat.ID, fmt.Sprintf("✅ %q borrowed by %s.", book.Title, book.BorrowedBy))
}

func currentField(book models.Book, key string) string {
	switch key {
	case "title":
		return book.Title
	case "author":
		return book.Author
	case "isbn":
		return book.ISBN
	}
	return ""
}

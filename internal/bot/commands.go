package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"catalog/internal/models"
)

// handleStart shows welcome message and available commands
func (b *Bot) handleStart(message *tgbotapi.Message) {
	text := `Welcome to the Library Catalog! 📚

Available commands:
/books - List all books
/add - Add a new book
/edit <id> - Edit a book
/delete <id> - Delete a book
/borrow <id> - Lend a book to someone
/return <id> - Mark a book as returned
/search <text> - Find books by title, author or ISBN
/history - Show recent activity
/stats - Show catalog counters`

	b.reply(message.Chat.ID, text)
}

// handleBooks lists the catalog with a return button for each borrowed book
func (b *Bot) handleBooks(message *tgbotapi.Message) {
	books := b.lib.ListBooks()
	if len(books) == 0 {
		b.reply(message.Chat.ID, "No books yet. Add one with /add")
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, "📚 Books:\n"+formatBooks(books))

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, book := range books {
		if book.Status != models.StatusBorrowed {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("↩️ Return #%d %s", book.ID, book.Title),
				fmt.Sprintf("return:%d", book.ID),
			),
		))
	}
	if len(rows) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	b.sendMessage(msg)
}

// handleAddStart initiates the add book conversation
func (b *Bot) handleAddStart(message *tgbotapi.Message) {
	b.setState(message.From.ID, &ConversationState{
		Command: "add",
		Step:    1,
		Data:    make(map[string]interface{}),
	})
	b.reply(message.Chat.ID, "Please enter the book title:")
}

// handleEditStart initiates the edit conversation for an existing book
func (b *Bot) handleEditStart(message *tgbotapi.Message, args string) {
	id, err := parseID(args)
	if err != nil {
		b.reply(message.Chat.ID, "Usage: /edit <id>")
		return
	}

	book, err := b.lib.GetBook(id)
	if err != nil {
		b.replyError(message.Chat.ID, "editing book", err)
		return
	}

	b.setState(message.From.ID, &ConversationState{
		Command: "edit",
		Step:    1,
		Data: map[string]interface{}{
			"id":   id,
			"book": book,
		},
	})
	b.reply(message.Chat.ID, fmt.Sprintf("Editing #%d. Send a new title or \"-\" to keep %q:", id, book.Title))
}

// handleDeleteStart asks for confirmation before deleting
func (b *Bot) handleDeleteStart(message *tgbotapi.Message, args string) {
	id, err := parseID(args)
	if err != nil {
		b.reply(message.Chat.ID, "Usage: /delete <id>")
		return
	}

	book, err := b.lib.GetBook(id)
	if err != nil {
		b.replyError(message.Chat.ID, "deleting book", err)
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf("Are you sure you want to delete %q?", book.Title))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", fmt.Sprintf("delete:%d", id)),
			tgbotapi.NewInlineKeyboardButtonData("Cancel", "delete:cancel"),
		),
	)
	b.sendMessage(msg)
}

// handleBorrowStart asks for the borrower's name
func (b *Bot) handleBorrowStart(message *tgbotapi.Message, args string) {
	id, err := parseID(args)
	if err != nil {
		b.reply(message.Chat.ID, "Usage: /borrow <id>")
		return
	}

	book, err := b.lib.GetBook(id)
	if err != nil {
		b.replyError(message.Chat.ID, "borrowing book", err)
		return
	}
	if book.Status != models.StatusAvailable {
		b.reply(message.Chat.ID, fmt.Sprintf("⚠️ %q is already borrowed by %s.", book.Title, book.BorrowedBy))
		return
	}

	b.setState(message.From.ID, &ConversationState{
		Command: "borrow",
		Step:    1,
		Data:    map[string]interface{}{"id": id},
	})
	b.reply(message.Chat.ID, fmt.Sprintf("Who is borrowing %q?", book.Title))
}

// handleReturn marks a book as returned
func (b *Bot) handleReturn(ctx context.Context, message *tgbotapi.Message, args string) {
	id, err := parseID(args)
	if err != nil {
		b.reply(message.Chat.ID, "Usage: /return <id>")
		return
	}
	b.returnBook(ctx, message.Chat.ID, id)
}

func (b *Bot) returnBook(ctx context.Context, chatID, id int64) {
	book, err := b.lib.ReturnBook(ctx, id)
	if err != nil {
		b.replyError(chatID, "returning book", err)
		return
	}
	b.reply(chatID, fmt.Sprintf("✅ %q returned successfully!", book.Title))
}

// handleHistory shows the activity log, newest first
func (b *Bot) handleHistory(message *tgbotapi.Message) {
	entries := b.lib.ListHistory()
	if len(entries) == 0 {
		b.reply(message.Chat.ID, "No activity yet.")
		return
	}
	b.reply(message.Chat.ID, "🕘 Recent activity:\n"+formatHistory(entries))
}

// handleSearch filters the catalog by title, author or ISBN
func (b *Bot) handleSearch(message *tgbotapi.Message, query string) {
	books := b.lib.Search(query)
	if len(books) == 0 {
		b.reply(message.Chat.ID, fmt.Sprintf("No books match %q.", query))
		return
	}
	b.reply(message.Chat.ID, "🔎 Results:\n"+formatBooks(books))
}

// handleStats shows catalog counters
func (b *Bot) handleStats(message *tgbotapi.Message) {
	s := b.lib.Stats()
	text := fmt.Sprintf("📊 Catalog\nTotal: %d\nAvailable: %d\nBorrowed: %d\nRecent activity: %d",
		s.TotalBooks, s.AvailableBooks, s.BorrowedBooks, s.RecentActivity)
	b.reply(message.Chat.ID, text)
}

package bot

import (
	"context"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"catalog/internal/library"
	"catalog/internal/models"
	"catalog/internal/storage/stubs"
)

// Note: We can't easily mock tgbotapi.BotAPI, so tests run with a nil api
// and inspect the texts collected in b.sent

const (
	testUserID = int64(123)
	testChatID = int64(456)
)

func newTestBot(t *testing.T) *Bot {
	t.Helper()
	lib, err := library.Open(context.Background(), stubs.NewMockDB(), zap.NewNop())
	require.NoError(t, err)
	return newBot(nil, lib, zap.NewNop())
}

func text(s string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: testUserID},
		Chat: &tgbotapi.Chat{ID: testChatID},
		Text: s,
	}
}

// command builds a message Telegram would flag as a bot command
func command(s string) *tgbotapi.Message {
	msg := text(s)
	name := strings.SplitN(s, " ", 2)[0]
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}}
	return msg
}

func callback(data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: testUserID},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: testChatID}},
		Data:    data,
	}
}

func (b *Bot) lastSent() string {
	if len(b.sent) == 0 {
		return ""
	}
	return b.sent[len(b.sent)-1]
}

func TestBot_AddConversation(t *testing.T) {
	bot := newTestBot(t)

	bot.handleMessage(command("/add"))
	state := bot.state(testUserID)
	require.NotNil(t, state)
	assert.Equal(t, "add", state.Command)
	assert.Equal(t, 1, state.Step)

	bot.handleMessage(text("Dune"))
	assert.Equal(t, 2, state.Step)

	// Empty input is re-asked without advancing
	bot.handleMessage(text("   "))
	assert.Equal(t, 2, state.Step)
	assert.Contains(t, bot.lastSent(), "cannot be empty")

	bot.handleMessage(text("Herbert"))
	bot.handleMessage(text("123"))

	assert.Nil(t, bot.state(testUserID), "conversation should be finished")
	assert.Contains(t, bot.lastSent(), "Book added successfully")

	books := bot.lib.ListBooks()
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "Herbert", books[0].Author)
	assert.Equal(t, "123", books[0].ISBN)
}

func TestBot_EditConversationKeepsFields(t *testing.T) {
	bot := newTestBot(t)
	ctx := context.Background()
	book, err := bot.lib.AddBook(ctx, models.BookFields{Title: "Dune", Author: "Herbert", ISBN: "123"})
	require.NoError(t, err)

	bot.handleMessage(command("/edit 1"))
	bot.handleMessage(text("-"))
	bot.handleMessage(text("Frank Herbert"))
	bot.handleMessage(text("-"))

	got, err := bot.lib.GetBook(book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, "Frank Herbert", got.Author)
	assert.Equal(t, "123", got.ISBN)
	assert.Contains(t, bot.lastSent(), "Book updated successfully")
}

func TestBot_EditUnknownBook(t *testing.T) {
	bot := newTestBot(t)

	bot.handleMessage(command("/edit 42"))
	assert.Nil(t, bot.state(testUserID))
	assert.Contains(t, bot.lastSent(), "Book not found")

	bot.handleMessage(command("/edit abc"))
	assert.Contains(t, bot.lastSent(), "Usage: /edit")
}

func TestBot_BorrowAndReturn(t *testing.T) {
	bot := newTestBot(t)
	ctx := context.Background()
	_, err := bot.lib.AddBook(ctx, models.BookFields{Title: "Dune", Author: "Herbert", ISBN: "123"})
	require.NoError(t, err)

	bot.handleMessage(command("/borrow 1"))
	require.NotNil(t, bot.state(testUserID))
	bot.handleMessage(text("Alice"))
	assert.Contains(t, bot.lastSent(), "borrowed by Alice")

	book, err := bot.lib.GetBook(1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBorrowed, book.Status)

	// Borrowing again is refused before asking for a name
	bot.handleMessage(command("/borrow 1"))
	assert.Nil(t, bot.state(testUserID))
	assert.Contains(t, bot.lastSent(), "already borrowed")

	bot.handleMessage(command("/return 1"))
	assert.Contains(t, bot.lastSent(), "returned successfully")

	bot.handleMessage(command("/return 1"))
	assert.Contains(t, bot.lastSent(), "not borrowed")

	history := bot.lib.ListHistory()
	require.Len(t, history, 2)
	assert.Equal(t, models.ActionReturned, history[0].Action)
	assert.Equal(t, "Alice", history[0].BorrowerName)
}

func TestBot_ReturnButton(t *testing.T) {
	bot := newTestBot(t)
	ctx := context.Background()
	book, err := bot.lib.AddBook(ctx, models.BookFields{Title: "Dune", Author: "Herbert", ISBN: "123"})
	require.NoError(t, err)
	_, err = bot.lib.BorrowBook(ctx, book.ID, "Alice")
	require.NoError(t, err)

	bot.handleCallbackQuery(callback("return:1"))

	got, err := bot.lib.GetBook(book.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, got.Status)
}

func TestBot_DeleteRequiresConfirmation(t *testing.T) {
	bot := newTestBot(t)
	ctx := context.Background()
	_, err := bot.lib.AddBook(ctx, models.BookFields{Title: "Dune", Author: "Herbert", ISBN: "123"})
	require.NoError(t, err)

	bot.handleMessage(command("/delete 1"))
	assert.Contains(t, bot.lastSent(), "Are you sure")
	assert.Len(t, bot.lib.ListBooks(), 1)

	bot.handleCallbackQuery(callback("delete:cancel"))
	assert.Len(t, bot.lib.ListBooks(), 1)

	bot.handleCallbackQuery(callback("delete:1"))
	assert.Empty(t, bot.lib.ListBooks())
	assert.Contains(t, bot.lastSent(), "deleted successfully")

	bot.handleCallbackQuery(callback("delete:1"))
	assert.Contains(t, bot.lastSent(), "Book not found")
}

func TestBot_CommandInterruptsConversation(t *testing.T) {
	bot := newTestBot(t)

	bot.handleMessage(command("/add"))
	require.NotNil(t, bot.state(testUserID))

	bot.handleMessage(command("/stats"))
	assert.Nil(t, bot.state(testUserID))
	assert.Contains(t, bot.lastSent(), "Total: 0")
}

func TestBot_SearchAndHistory(t *testing.T) {
	bot := newTestBot(t)
	ctx := context.Background()
	_, err := bot.lib.AddBook(ctx, models.BookFields{Title: "Dune", Author: "Herbert", ISBN: "123"})
	require.NoError(t, err)

	bot.handleMessage(command("/search DUNE"))
	assert.Contains(t, bot.lastSent(), "#1 Dune by Herbert")

	bot.handleMessage(command("/search xyz"))
	assert.Contains(t, bot.lastSent(), "No books match")

	bot.handleMessage(command("/history"))
	assert.Equal(t, "No activity yet.", bot.lastSent())

	_, err = bot.lib.BorrowBook(ctx, 1, "Alice")
	require.NoError(t, err)
	bot.handleMessage(command("/history"))
	assert.Contains(t, bot.lastSent(), "Borrowed  Dune  Alice")
}

func TestBot_HandleWebhookUpdateIgnoresAnonymous(t *testing.T) {
	bot := newTestBot(t)

	bot.HandleWebhookUpdate(tgbotapi.Update{Message: &tgbotapi.Message{Text: "/start"}})
	assert.Empty(t, bot.sent)

	bot.HandleWebhookUpdate(tgbotapi.Update{Message: command("/start")})
	assert.Contains(t, bot.lastSent(), "Welcome")
}

func TestParseID(t *testing.T) {
	id, err := parseID(" 7 ")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	for _, bad := range []string{"", "x", "0", "-3"} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
	}
}

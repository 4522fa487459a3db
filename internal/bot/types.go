package bot

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"catalog/internal/library"
)

// Bot represents the Telegram bot wrapper
type Bot struct {
	api      *tgbotapi.BotAPI
	lib      *library.Library
	states   map[int64]*ConversationState
	statesMu sync.Mutex
	logger   *zap.Logger

	// sent collects outgoing texts when api is nil (tests)
	sent []string
}

// ConversationState tracks the state of multi-step commands
type ConversationState struct {
	Command string
	Step    int
	Data    map[string]interface{}
}

// stepDone marks a finished conversation
const stepDone = -1

package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"catalog/internal/library"
)

// NewBot creates a new Telegram bot
func NewBot(token string, lib *library.Library, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Bot created", zap.String("bot_username", api.Self.UserName))

	return newBot(api, lib, logger), nil
}

func newBot(api *tgbotapi.BotAPI, lib *library.Library, logger *zap.Logger) *Bot {
	return &Bot{
		api:    api,
		lib:    lib,
		states: make(map[int64]*ConversationState),
		logger: logger,
	}
}

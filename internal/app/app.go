package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"catalog/internal/bot"
	"catalog/internal/config"
	"catalog/internal/library"
	"catalog/internal/storage"
	"catalog/internal/storage/ch"
	"catalog/internal/storage/sqlite"
	"catalog/internal/storage/stubs"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// App represents the application
type App struct {
	config *config.Config
	logger *zap.Logger
	db     storage.Storage
	lib    *library.Library
	bot    *bot.Bot
	server *http.Server
}

// New creates and initializes a new application instance
func New() (*App, error) {
	// Load .env file if it exists
	envErr := godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	if envErr != nil {
		logger.Info("No .env file found, using system environment variables")
	}

	app := &App{config: cfg, logger: logger}

	logger.Info("Starting Home Library Catalog...",
		zap.String("storage", cfg.StorageBackend),
		zap.Bool("bot_enabled", cfg.TelegramToken != ""),
	)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	lib, err := library.Open(context.Background(), app.db, logger)
	if err != nil {
		app.db.Close()
		return nil, err
	}
	app.lib = lib

	if err := app.initBot(); err != nil {
		app.db.Close()
		return nil, err
	}

	app.initHTTPServer()

	return app, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

// openStorage builds the configured key-value backend
func openStorage(cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		return stubs.NewMockDB(), nil
	case config.BackendSQLite:
		logger.Info("Opening SQLite database", zap.String("path", cfg.SQLitePath))
		return sqlite.New(cfg.SQLitePath)
	case config.BackendClickHouse:
		logger.Info("Connecting to ClickHouse",
			zap.String("host", cfg.ClickHouseHost),
			zap.Int("port", cfg.ClickHousePort),
			zap.String("database", cfg.ClickHouseDatabase),
			zap.String("user", cfg.ClickHouseUser),
			zap.Bool("tls", cfg.ClickHouseUseTLS),
		)
		return ch.NewClickHouseDB(
			cfg.ClickHouseHost,
			cfg.ClickHousePort,
			cfg.ClickHouseDatabase,
			cfg.ClickHouseUser,
			cfg.ClickHousePassword,
			cfg.ClickHouseUseTLS,
		)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}

// initDatabase opens the storage backend and prepares its schema
func (a *App) initDatabase() error {
	db, err := openStorage(a.config, a.logger)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", a.config.StorageBackend, err)
	}

	if err := db.Initialize(context.Background()); err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.logger.Info("Database initialized successfully")

	a.db = db
	return nil
}

// initBot initializes the Telegram bot when a token is configured
func (a *App) initBot() error {
	if a.config.TelegramToken == "" {
		a.logger.Warn("TELEGRAM_BOT_TOKEN not set, running HTTP API only")
		return nil
	}

	telegramBot, err := bot.NewBot(a.config.TelegramToken, a.lib, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	a.bot = telegramBot
	return nil
}

// routes builds the HTTP handler: health checks, the JSON API and the webhook
func (a *App) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	})

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		mode := "api only"
		switch {
		case a.bot == nil:
		case a.config.WebhookMode:
			mode = "webhook"
		default:
			mode = "polling"
		}
		fmt.Fprintf(w, "Home Library Catalog is running (mode: %s)", mode)
	})

	mux.HandleFunc("POST /telegram-webhook", func(w http.ResponseWriter, r *http.Request) {
		if a.bot == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			a.logger.Warn("Error decoding webhook update", zap.Error(err))
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		// Process update in background to respond quickly to Telegram
		go a.bot.HandleWebhookUpdate(update)

		w.WriteHeader(http.StatusOK)
	})

	bot.NewHTTPServer(a.lib, a.logger).RegisterRoutes(mux)
	return mux
}

// initHTTPServer starts the HTTP server in the background
func (a *App) initHTTPServer() {
	a.server = &http.Server{
		Addr:         ":" + a.config.Port,
		Handler:      a.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		a.logger.Info("Starting HTTP server", zap.String("port", a.config.Port))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server error", zap.Error(err))
		}
	}()
}

// Run starts the application and blocks until shutdown
func (a *App) Run() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if a.bot != nil {
		if a.config.WebhookMode {
			a.logger.Info("Starting bot in WEBHOOK mode", zap.String("webhook_url", a.config.WebhookURL))
			if err := a.bot.StartWebhook(a.config.WebhookURL); err != nil {
				return fmt.Errorf("failed to setup webhook: %w", err)
			}
		} else {
			go func() {
				if err := a.bot.Start(); err != nil {
					a.logger.Error("Bot polling stopped", zap.Error(err))
				}
			}()
		}
	}

	<-sigChan

	a.logger.Info("Shutting down...")
	return a.Shutdown()
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown() error {
	defer func() { _ = a.logger.Sync() }()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("HTTP server shutdown error", zap.Error(err))
	}

	if a.bot != nil {
		a.bot.Stop()
	}

	if err := a.db.Close(); err != nil {
		a.logger.Error("Error closing database", zap.Error(err))
		return err
	}

	a.logger.Info("Shutdown complete")
	return nil
}

// Package bot wires the relay assistant together: configuration, storage,
// the identity store, the outbound dispatcher, the chat transport, the model
// client and the health endpoint.
package bot

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gembot/internal/bot/assistant"
	"github.com/dmitrijs2005/gembot/internal/bot/chatlog"
	"github.com/dmitrijs2005/gembot/internal/bot/config"
	"github.com/dmitrijs2005/gembot/internal/bot/health"
	"github.com/dmitrijs2005/gembot/internal/bot/identity"
	"github.com/dmitrijs2005/gembot/internal/bot/outbound"
	"github.com/dmitrijs2005/gembot/internal/bot/repositories/allowlist"
	"github.com/dmitrijs2005/gembot/internal/bot/repositories/repomanager"
	"github.com/dmitrijs2005/gembot/internal/bot/session"
	"github.com/dmitrijs2005/gembot/internal/bot/telegram"
	"github.com/dmitrijs2005/gembot/internal/bot/transport"
	"github.com/dmitrijs2005/gembot/internal/dbx"
	"github.com/dmitrijs2005/gembot/internal/logging"
)

// UpdateSource yields inbound updates until its context is cancelled.
type UpdateSource interface {
	Updates(ctx context.Context) <-chan transport.Update
}

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	source     UpdateSource
	handler    *Handler
	dispatcher *outbound.Dispatcher
	health     *health.Server
}

// NewApp opens storage, loads the allow-list and connects to Telegram and
// Gemini. Any failure here is fatal for the process.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, rm, err := repomanager.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	store, err := identity.NewStore(ctx, allowListRepo(cfg, db, rm), cfg.AllowedUsers, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("allow-list init error: %w", err)
	}

	tg, err := telegram.New(cfg.TelegramToken, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	gem, err := assistant.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.SystemInstruction)
	if err != nil {
		db.Close()
		return nil, err
	}

	queue := outbound.NewQueue(db, rm)
	app := newApp(cfg, logger, db, tg,
		NewHandler(store, gem, tg, chatlog.NewService(db, rm), session.NewStore(cfg.HistoryLimit), logger),
		outbound.NewDispatcher(queue, tg, logger, cfg.DispatchInterval, cfg.DispatchMaxAttempts),
	)
	return app, nil
}

func newApp(cfg *config.Config, logger logging.Logger, db *sql.DB, src UpdateSource, h *Handler, d *outbound.Dispatcher) *App {
	app := &App{
		config:     cfg,
		logger:     logger,
		db:         db,
		source:     src,
		handler:    h,
		dispatcher: d,
	}
	if cfg.HealthAddr != "" {
		app.health = health.NewServer(cfg.HealthAddr, logger)
	}
	return app
}

// allowListRepo picks the JSON file backend when configured, otherwise the
// database with transactional saves.
func allowListRepo(cfg *config.Config, db *sql.DB, rm repomanager.RepositoryManager) allowlist.Repository {
	if cfg.AllowListFile != "" {
		return allowlist.NewFileRepository(cfg.AllowListFile)
	}
	return allowlist.NewTxRepository(db, func(tx dbx.DBTX) allowlist.Repository {
		return rm.AllowList(tx)
	})
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHealthServer(ctx context.Context) {
	if err := app.health.Run(ctx); err != nil {
		// the bot keeps running without probes
		app.logger.Error(ctx, "health server error", "error", err)
	}
}

// Run serves updates and drains the outbound queue until ctx is cancelled or
// the process receives SIGINT/SIGTERM, then waits for in-flight work.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting bot...")
	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	if app.health != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startHealthServer(ctx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.dispatcher.Run(ctx)
	}()

	for u := range app.source.Updates(ctx) {
		wg.Add(1)
		go func(u transport.Update) {
			defer wg.Done()
			app.handler.Handle(ctx, u)
		}(u)
	}

	cancelFunc()
	wg.Wait()
	app.logger.Info(context.Background(), "Bot stopped")
}

// Close releases the database handle.
func (app *App) Close() error {
	return app.db.Close()
}

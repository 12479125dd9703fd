package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/gembot/internal/bot"
	"github.com/dmitrijs2005/gembot/internal/bot/config"
	"github.com/dmitrijs2005/gembot/internal/logging"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer closer.Close()

	app, err := bot.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		closer.Close()
		os.Exit(1)
	}
	defer app.Close()

	app.Run(ctx)
}

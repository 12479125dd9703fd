package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gembot/internal/dashboard"
	"github.com/dmitrijs2005/gembot/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := dashboard.LoadConfig()
	if err != nil {
		return err
	}

	// stdout belongs to the UI; dashboard diagnostics go to stderr
	logger, closer, err := logging.New(logging.Options{Level: "warn", Format: "text", Stderr: true})
	if err != nil {
		return err
	}
	defer closer.Close()

	return dashboard.Run(ctx, cfg, logger, os.Stdout)
}

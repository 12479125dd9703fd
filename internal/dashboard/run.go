package dashboard

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/dmitrijs2005/gembot/internal/bot/chatlog"
	"github.com/dmitrijs2005/gembot/internal/bot/outbound"
	"github.com/dmitrijs2005/gembot/internal/bot/repositories/repomanager"
	"github.com/dmitrijs2005/gembot/internal/filex"
	"github.com/dmitrijs2005/gembot/internal/logging"
)

const (
	tailLines = 200
	tailBytes = 64 << 10
)

var isTerminal = term.IsTerminal

// Run opens the bot database and either enqueues a single message
// (cfg.SendTo), starts the interactive UI, or prints one snapshot when out
// is not a terminal.
func Run(ctx context.Context, cfg *Config, logger logging.Logger, out io.Writer) error {
	db, rm, err := repomanager.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	queue := outbound.NewQueue(db, rm)
	log := chatlog.NewService(db, rm)
	logger = logger.With("module", "dashboard")

	if cfg.SendTo != 0 || cfg.Text != "" {
		id, err := queue.Enqueue(ctx, cfg.SendTo, cfg.Text, "")
		if err != nil {
			return err
		}
		logger.Info(ctx, "reply queued", "envelope_id", id, "user_id", cfg.SendTo)
		_, err = fmt.Fprintf(out, "queued message #%d for %d\n", id, cfg.SendTo)
		return err
	}

	tail := func() ([]string, error) {
		return filex.TailLines(cfg.LogFile, tailLines, tailBytes)
	}

	f, ok := out.(*os.File)
	if !ok || !isTerminal(int(f.Fd())) {
		snap, err := log.Snapshot(ctx, topUsers, recentChats)
		if err != nil {
			return err
		}
		lines, err := tail()
		if err != nil {
			logger.Warn(ctx, "failed to read bot log", "error", err)
		}
		if len(lines) > logLines {
			lines = lines[len(lines)-logLines:]
		}
		return WriteSnapshot(out, cfg.GeminiModel, snap, lines)
	}

	p := tea.NewProgram(NewModel(ctx, log, queue, tail, cfg),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithOutput(f),
	)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}

package bot

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gembot/internal/bot/config"
	"github.com/dmitrijs2005/gembot/internal/bot/outbound"
	"github.com/dmitrijs2005/gembot/internal/bot/repositories/allowlist"
	"github.com/dmitrijs2005/gembot/internal/bot/repositories/repomanager"
	"github.com/dmitrijs2005/gembot/internal/bot/session"
	"github.com/dmitrijs2005/gembot/internal/bot/transport"
	"github.com/dmitrijs2005/gembot/internal/common"
	"github.com/dmitrijs2005/gembot/internal/logging"
)

type chanSource struct {
	ch chan transport.Update
}

func (s *chanSource) Updates(ctx context.Context) <-chan transport.Update {
	out := make(chan transport.Update)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case u := <-s.ch:
				out <- u
			}
		}
	}()
	return out
}

func TestApp_RunHandlesUpdatesAndDispatches(t *testing.T) {
	ctx := context.Background()
	db, rm, err := repomanager.Open(ctx, common.DriverSQLite, filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.HealthAddr = ""

	chat := &fakeChat{}
	queue := outbound.NewQueue(db, rm)
	_, err = queue.Enqueue(ctx, 1, "from operator", "")
	require.NoError(t, err)

	src := &chanSource{ch: make(chan transport.Update)}
	h := NewHandler(&fakeAuth{allowed: map[int64]bool{1: true}}, &fakeAssistant{response: "pong"}, chat, &fakeRecorder{}, session.NewStore(0), logging.NewDiscard())
	d := outbound.NewDispatcher(queue, chat, logging.NewDiscard(), 10*time.Millisecond, 0)
	app := newApp(cfg, logging.NewDiscard(), db, src, h, d)
	defer app.Close()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		app.Run(runCtx)
		close(done)
	}()

	src.ch <- transport.Update{CallerID: 1, ChatID: 1, Text: "ping"}

	require.Eventually(t, func() bool {
		msgs := chat.messages()
		return len(msgs) == 2
	}, 3*time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []string{"pong", "[Admin]: from operator"}, chat.messages())

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestAllowListRepo_SelectsBackend(t *testing.T) {
	cfg := &config.Config{AllowListFile: filepath.Join(t.TempDir(), "users.json")}
	assert.IsType(t, &allowlist.FileRepository{}, allowListRepo(cfg, nil, repomanager.NewSQLiteRepositoryManager()))

	cfg.AllowListFile = ""
	assert.IsType(t, &allowlist.TxRepository{}, allowListRepo(cfg, nil, repomanager.NewSQLiteRepositoryManager()))
}

func TestNewApp_ValidatesConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	_, err := NewApp(context.Background(), cfg, logging.NewDiscard())
	assert.ErrorIs(t, err, common.ErrorValidation)
}

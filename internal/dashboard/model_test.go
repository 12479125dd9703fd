package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gembot/internal/bot/chatlog"
	"github.com/dmitrijs2005/gembot/internal/bot/models"
)

type fakeSource struct {
	snap *chatlog.Snapshot
	err  error
}

func (f *fakeSource) Snapshot(ctx context.Context, topUsers, recent int) (*chatlog.Snapshot, error) {
	return f.snap, f.err
}

type enqueued struct {
	userID  int64
	content string
}

type fakeQueue struct {
	calls []enqueued
	err   error
}

func (f *fakeQueue) Enqueue(ctx context.Context, userID int64, content, typ string) (int64, error) {
	f.calls = append(f.calls, enqueued{userID: userID, content: content})
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.calls)), nil
}

func testSnapshot() *chatlog.Snapshot {
	return &chatlog.Snapshot{
		Usage: models.Usage{InputTokens: 1200, OutputTokens: 340},
		TopUsers: []models.UserStat{
			{Username: "alice", TotalMessages: 5},
			{Username: "bob", TotalMessages: 2},
		},
		Hourly: []models.HourlyActivity{{Hour: "09", Count: 4}, {Hour: "10", Count: 1}},
		Recent: []models.ChatMessage{
			{UserID: 11, Username: "alice", Role: models.RoleModel, Content: "sure,\nhere you go"},
			{UserID: 22, Username: "bob", Role: models.RoleUser, Content: "hello"},
		},
		Queue:   map[models.EnvelopeStatus]int64{models.StatusPending: 1, models.StatusSent: 3},
		TakenAt: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func testConfig() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(Model)
	require.True(t, ok)
	return mm, cmd
}

func loaded(t *testing.T, q *fakeQueue) Model {
	t.Helper()
	m := NewModel(context.Background(), &fakeSource{snap: testSnapshot()}, q, nil, testConfig())
	m, _ = update(t, m, snapshotMsg{snap: testSnapshot()})
	return m
}

func TestModel_FetchCommand(t *testing.T) {
	src := &fakeSource{snap: testSnapshot()}
	m := NewModel(context.Background(), src, &fakeQueue{}, nil, testConfig())

	msg := m.fetch()()
	sm, ok := msg.(snapshotMsg)
	require.True(t, ok)
	assert.NoError(t, sm.err)
	assert.Same(t, src.snap, sm.snap)
}

func TestModel_ViewShowsSnapshot(t *testing.T) {
	m := loaded(t, &fakeQueue{})
	view := m.View()

	for _, want := range []string{"Live Chats", "alice", "bob", "sure, here you go", "In: 1200 Out: 340", "pending=1 sent=3", "09h"} {
		assert.Contains(t, view, want)
	}
}

func TestModel_ReplyFlow(t *testing.T) {
	q := &fakeQueue{}
	m := loaded(t, q)

	m, _ = update(t, m, key("down"))
	m, _ = update(t, m, key("enter"))
	require.True(t, m.inputMode)
	assert.Equal(t, int64(22), m.selected)

	for _, r := range "on my way" {
		m, _ = update(t, m, key(string(r)))
	}
	m, cmd := update(t, m, key("enter"))
	require.NotNil(t, cmd)
	assert.False(t, m.inputMode)

	msg := cmd()
	require.Equal(t, []enqueued{{userID: 22, content: "on my way"}}, q.calls)

	m, _ = update(t, m, msg)
	assert.Contains(t, m.status, "queued for 22")
}

func TestModel_EscCancelsReply(t *testing.T) {
	q := &fakeQueue{}
	m := loaded(t, q)

	m, _ = update(t, m, key("enter"))
	m, _ = update(t, m, key("x"))
	m, _ = update(t, m, key("esc"))

	assert.False(t, m.inputMode)
	assert.Equal(t, "", m.input.Value())
	assert.Empty(t, q.calls)
}

func TestModel_EmptyReplyIsIgnored(t *testing.T) {
	q := &fakeQueue{}
	m := loaded(t, q)

	m, _ = update(t, m, key("enter"))
	_, cmd := update(t, m, key("enter"))
	assert.Nil(t, cmd)
	assert.Empty(t, q.calls)
}

func TestModel_EnqueueErrorShown(t *testing.T) {
	m := loaded(t, &fakeQueue{})
	m, _ = update(t, m, enqueuedMsg{userID: 5, err: errors.New("db locked")})
	assert.Contains(t, m.status, "db locked")
}

func TestModel_SnapshotErrorShown(t *testing.T) {
	m := loaded(t, &fakeQueue{})
	m, _ = update(t, m, snapshotMsg{err: errors.New("no such table")})
	assert.Contains(t, m.View(), "no such table")
}

func TestModel_Quit(t *testing.T) {
	m := loaded(t, &fakeQueue{})
	_, cmd := update(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_Logs(t *testing.T) {
	tail := func() ([]string, error) { return []string{"line one", "line two"}, nil }
	m := NewModel(context.Background(), &fakeSource{snap: testSnapshot()}, &fakeQueue{}, tail, testConfig())

	msg := m.fetchLogs()()
	m, _ = update(t, m, msg)
	assert.True(t, strings.Contains(m.View(), "line two"))
}

func TestActivityBars(t *testing.T) {
	out := activityBars([]models.HourlyActivity{{Hour: "01", Count: 10}, {Hour: "02", Count: 1}}, 10)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "01h "+strings.Repeat("█", 10)+" 10", lines[0])
	assert.Equal(t, "02h █ 1", lines[1])
}

// Package dashboard is the operator console: a terminal UI over the bot's
// database that shows live chats, the busiest users, hourly activity, token
// usage and the bot log, and lets the operator reply to a user through the
// outbound queue.
package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/dmitrijs2005/gembot/internal/bot/chatlog"
)

const (
	recentChats = 15
	topUsers    = 10
	logLines    = 8
)

// SnapshotSource loads the data for one refresh.
type SnapshotSource interface {
	Snapshot(ctx context.Context, topUsers, recent int) (*chatlog.Snapshot, error)
}

// Enqueuer accepts operator replies.
type Enqueuer interface {
	Enqueue(ctx context.Context, userID int64, content, typ string) (int64, error)
}

// LogTailer returns the latest log lines.
type LogTailer func() ([]string, error)

type snapshotMsg struct {
	snap *chatlog.Snapshot
	err  error
}

type logMsg struct {
	lines []string
	err   error
}

type refreshTickMsg struct{}

type logTickMsg struct{}

type enqueuedMsg struct {
	userID int64
	id     int64
	err    error
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	paneStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	focusStyle = paneStyle.BorderForeground(lipgloss.Color("2"))
	logStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
)

// Model is the bubbletea model of the dashboard.
type Model struct {
	ctx     context.Context
	source  SnapshotSource
	queue   Enqueuer
	tail    LogTailer
	model   string
	refresh time.Duration
	logTick time.Duration

	chats  table.Model
	users  table.Model
	input  textinput.Model
	snap   *chatlog.Snapshot
	recent []int64 // user id per chats row
	logs   []string
	status string
	err    error

	selected  int64
	inputMode bool
	width     int
}

func NewModel(ctx context.Context, source SnapshotSource, queue Enqueuer, tail LogTailer, cfg *Config) Model {
	chats := table.New(
		table.WithColumns([]table.Column{
			{Title: "User", Width: 14},
			{Title: "Role", Width: 6},
			{Title: "Content", Width: 44},
		}),
		table.WithHeight(recentChats),
		table.WithFocused(true),
	)
	users := table.New(
		table.WithColumns([]table.Column{
			{Title: "Username", Width: 16},
			{Title: "Msgs", Width: 6},
		}),
		table.WithHeight(topUsers),
	)

	input := textinput.New()
	input.Placeholder = "select a chat and press enter to reply"
	input.CharLimit = 4000
	input.Width = 60

	return Model{
		ctx:     ctx,
		source:  source,
		queue:   queue,
		tail:    tail,
		model:   cfg.GeminiModel,
		refresh: cfg.Refresh,
		logTick: cfg.LogRefresh,
		chats:   chats,
		users:   users,
		input:   input,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.fetchLogs(), m.scheduleRefresh(), m.scheduleLogs())
}

func (m Model) fetch() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.source.Snapshot(m.ctx, topUsers, recentChats)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m Model) fetchLogs() tea.Cmd {
	if m.tail == nil {
		return nil
	}
	return func() tea.Msg {
		lines, err := m.tail()
		return logMsg{lines: lines, err: err}
	}
}

func (m Model) scheduleRefresh() tea.Cmd {
	return tea.Tick(m.refresh, func(time.Time) tea.Msg { return refreshTickMsg{} })
}

func (m Model) scheduleLogs() tea.Cmd {
	if m.tail == nil || m.logTick <= 0 {
		return nil
	}
	return tea.Tick(m.logTick, func(time.Time) tea.Msg { return logTickMsg{} })
}

func (m Model) enqueue(userID int64, text string) tea.Cmd {
	return func() tea.Msg {
		id, err := m.queue.Enqueue(m.ctx, userID, text, "")
		return enqueuedMsg{userID: userID, id: id, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case refreshTickMsg:
		return m, tea.Batch(m.fetch(), m.scheduleRefresh())

	case logTickMsg:
		return m, tea.Batch(m.fetchLogs(), m.scheduleLogs())

	case snapshotMsg:
		m.err = msg.err
		if msg.err == nil {
			m.applySnapshot(msg.snap)
		}
		return m, nil

	case logMsg:
		if msg.err == nil {
			m.logs = msg.lines
		}
		return m, nil

	case enqueuedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("reply to %d failed: %v", msg.userID, msg.err)
		} else {
			m.status = fmt.Sprintf("reply #%d queued for %d", msg.id, msg.userID)
		}
		return m, m.fetch()

	case tea.KeyMsg:
		if m.inputMode {
			return m.handleInputKeys(msg)
		}
		return m.handleTableKeys(msg)
	}
	return m, nil
}

func (m Model) handleTableKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "r":
		return m, m.fetch()
	case "enter":
		idx := m.chats.Cursor()
		if idx < 0 || idx >= len(m.recent) {
			return m, nil
		}
		m.selected = m.recent[idx]
		m.inputMode = true
		m.chats.Blur()
		m.input.Placeholder = "reply to " + strconv.FormatInt(m.selected, 10)
		return m, m.input.Focus()
	}

	var cmd tea.Cmd
	m.chats, cmd = m.chats.Update(msg)
	return m, cmd
}

func (m Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.leaveInput()
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		userID := m.selected
		m.leaveInput()
		if text == "" || userID == 0 {
			return m, nil
		}
		return m, m.enqueue(userID, text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) leaveInput() {
	m.inputMode = false
	m.input.SetValue("")
	m.input.Blur()
	m.chats.Focus()
}

func (m *Model) applySnapshot(snap *chatlog.Snapshot) {
	m.snap = snap

	rows := make([]table.Row, 0, len(snap.Recent))
	m.recent = make([]int64, 0, len(snap.Recent))
	for _, c := range snap.Recent {
		rows = append(rows, table.Row{
			c.Username,
			string(c.Role),
			ansi.Truncate(oneLine(c.Content), 44, "…"),
		})
		m.recent = append(m.recent, c.UserID)
	}
	m.chats.SetRows(rows)

	urows := make([]table.Row, 0, len(snap.TopUsers))
	for _, u := range snap.TopUsers {
		urows = append(urows, table.Row{u.Username, strconv.FormatInt(u.TotalMessages, 10)})
	}
	m.users.SetRows(urows)
}

func (m Model) View() string {
	chats := paneStyle
	if !m.inputMode {
		chats = focusStyle
	}
	top := lipgloss.JoinHorizontal(lipgloss.Top,
		chats.Render(titleStyle.Render("Live Chats (enter to reply)")+"\n"+m.chats.View()),
		paneStyle.Render(titleStyle.Render("Top Users")+"\n"+m.users.View()),
	)

	middle := lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Render(titleStyle.Render("Bot Log")+"\n"+m.renderLogs()),
		paneStyle.Render(titleStyle.Render("Activity (24h)")+"\n"+m.renderActivity()),
	)

	reply := paneStyle
	if m.inputMode {
		reply = focusStyle
	}
	bottom := lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Render(titleStyle.Render("System")+"\n"+m.renderSystem()),
		reply.Render(titleStyle.Render("Quick Reply")+"\n"+m.input.View()),
	)

	footer := mutedStyle.Render("↑/↓ select • enter reply • esc cancel • r refresh • q quit")
	if m.status != "" {
		footer = m.status + "  " + footer
	}
	if m.err != nil {
		footer = errorStyle.Render("error: "+m.err.Error()) + "  " + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left, top, middle, bottom, footer)
}

func (m Model) renderLogs() string {
	if len(m.logs) == 0 {
		return mutedStyle.Render("no log output yet")
	}
	lines := m.logs
	if len(lines) > logLines {
		lines = lines[len(lines)-logLines:]
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = logStyle.Render(ansi.Truncate(l, 70, "…"))
	}
	return strings.Join(out, "\n")
}

func (m Model) renderActivity() string {
	if m.snap == nil || len(m.snap.Hourly) == 0 {
		return mutedStyle.Render("no activity")
	}
	return barStyle.Render(activityBars(m.snap.Hourly, 20))
}

func (m Model) renderSystem() string {
	if m.snap == nil {
		return mutedStyle.Render("loading…")
	}
	return systemLines(m.model, m.snap)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

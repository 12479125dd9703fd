package dashboard

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/dmitrijs2005/gembot/internal/bot/chatlog"
	"github.com/dmitrijs2005/gembot/internal/bot/models"
)

// activityBars renders one horizontal bar per hour, scaled to width.
func activityBars(hours []models.HourlyActivity, width int) string {
	var peak int64
	for _, h := range hours {
		if h.Count > peak {
			peak = h.Count
		}
	}
	if peak == 0 {
		peak = 1
	}

	var b strings.Builder
	for i, h := range hours {
		n := int(h.Count * int64(width) / peak)
		if n == 0 && h.Count > 0 {
			n = 1
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%sh %s %d", h.Hour, strings.Repeat("█", n), h.Count)
	}
	return b.String()
}

func systemLines(model string, snap *chatlog.Snapshot) string {
	return fmt.Sprintf("API: %s | In: %d Out: %d\nQueue: %s | updated %s",
		model, snap.Usage.InputTokens, snap.Usage.OutputTokens,
		queueSummary(snap.Queue), snap.TakenAt.Format("15:04:05"))
}

func queueSummary(counts map[models.EnvelopeStatus]int64) string {
	if len(counts) == 0 {
		return "empty"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[models.EnvelopeStatus(k)])
	}
	return strings.Join(parts, " ")
}

// WriteSnapshot prints a plain-text report, used when stdout is not a terminal.
func WriteSnapshot(w io.Writer, model string, snap *chatlog.Snapshot, logs []string) error {
	var b strings.Builder

	b.WriteString("== System ==\n")
	b.WriteString(systemLines(model, snap))
	b.WriteString("\n\n== Live Chats ==\n")
	for _, c := range snap.Recent {
		fmt.Fprintf(&b, "%-14s %-6s %d  %s\n", c.Username, c.Role, c.UserID, ansi.Truncate(oneLine(c.Content), 60, "…"))
	}
	b.WriteString("\n== Top Users ==\n")
	for _, u := range snap.TopUsers {
		fmt.Fprintf(&b, "%-16s %d\n", u.Username, u.TotalMessages)
	}
	b.WriteString("\n== Activity (24h) ==\n")
	if len(snap.Hourly) > 0 {
		b.WriteString(activityBars(snap.Hourly, 20))
		b.WriteByte('\n')
	}
	if len(logs) > 0 {
		b.WriteString("\n== Bot Log ==\n")
		for _, l := range logs {
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

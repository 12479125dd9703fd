// Package messages stores the conversation log and answers the aggregate
// queries the dashboard shows: token usage, most active users, hourly
// activity and the latest chat lines.
package messages

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gembot/internal/bot/models"
)

type Repository interface {
	Insert(ctx context.Context, m *models.ChatMessage) error
	Usage(ctx context.Context) (models.Usage, error)
	// UserStats counts user-authored messages per username, busiest first.
	UserStats(ctx context.Context, limit int) ([]models.UserStat, error)
	// HourlyActivity counts messages per hour of day since the given time.
	HourlyActivity(ctx context.Context, since time.Time) ([]models.HourlyActivity, error)
	// Recent returns the latest messages, newest first.
	Recent(ctx context.Context, limit int) ([]models.ChatMessage, error)
}

const defaultLimit = 20

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return defaultLimit
	}
	return limit
}

func usernameOrAnonymous(name string) string {
	if name == "" {
		return "anonymous"
	}
	return name
}

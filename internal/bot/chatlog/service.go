// Package chatlog records conversation lines and serves the aggregates the
// operator dashboard displays.
package chatlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gembot/internal/bot/models"
	"github.com/dmitrijs2005/gembot/internal/bot/repositories/repomanager"
)

type Service struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewService(db *sql.DB, m repomanager.RepositoryManager) *Service {
	return &Service{db: db, repomanager: m, now: time.Now}
}

// Record appends one line to the log. Missing type defaults to text.
func (s *Service) Record(ctx context.Context, m *models.ChatMessage) error {
	if m.Type == "" {
		m.Type = models.MessageTypeText
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	if err := s.repomanager.Messages(s.db).Insert(ctx, m); err != nil {
		return fmt.Errorf("chat log error: %w", err)
	}
	return nil
}

// Snapshot is everything the dashboard shows in one refresh.
type Snapshot struct {
	Usage    models.Usage
	TopUsers []models.UserStat
	Hourly   []models.HourlyActivity
	Recent   []models.ChatMessage
	Queue    map[models.EnvelopeStatus]int64
	TakenAt  time.Time
}

// Snapshot gathers usage, the busiest users, activity over the last 24
// hours, the latest lines and queue counters.
func (s *Service) Snapshot(ctx context.Context, topUsers, recent int) (*Snapshot, error) {
	repo := s.repomanager.Messages(s.db)
	now := s.now()
	snap := &Snapshot{TakenAt: now}

	var err error
	if snap.Usage, err = repo.Usage(ctx); err != nil {
		return nil, err
	}
	if snap.TopUsers, err = repo.UserStats(ctx, topUsers); err != nil {
		return nil, err
	}
	if snap.Hourly, err = repo.HourlyActivity(ctx, now.Add(-24*time.Hour)); err != nil {
		return nil, err
	}
	if snap.Recent, err = repo.Recent(ctx, recent); err != nil {
		return nil, err
	}
	if snap.Queue, err = s.repomanager.Outbound(s.db).CountByStatus(ctx); err != nil {
		return nil, err
	}
	return snap, nil
}

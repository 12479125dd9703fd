// Package outbound implements the operator mailbox: a durable queue of
// messages an operator wants delivered into live conversations, and the
// dispatcher that drains it.
package outbound

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gembot/internal/bot/models"
	"github.com/dmitrijs2005/gembot/internal/bot/repositories/repomanager"
	"github.com/dmitrijs2005/gembot/internal/common"
)

// Queue is the enqueue/inspect surface over the outbound table.
type Queue struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewQueue(db *sql.DB, m repomanager.RepositoryManager) *Queue {
	return &Queue{db: db, repomanager: m, now: time.Now}
}

// Enqueue stores a pending envelope for userID and returns its id.
func (q *Queue) Enqueue(ctx context.Context, userID int64, content, typ string) (int64, error) {
	if userID == 0 {
		return 0, fmt.Errorf("%w: user id is required", common.ErrorValidation)
	}
	if strings.TrimSpace(content) == "" {
		return 0, fmt.Errorf("%w: content is required", common.ErrorValidation)
	}
	if typ == "" {
		typ = common.DefaultEnvelopeType
	}

	e := &models.OutboundEnvelope{
		UserID:    userID,
		Content:   content,
		Type:      typ,
		Status:    models.StatusPending,
		CreatedAt: q.now(),
	}
	id, err := q.repomanager.Outbound(q.db).Insert(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("enqueue error: %w", err)
	}
	return id, nil
}

// ListPending returns pending envelopes in insertion order.
func (q *Queue) ListPending(ctx context.Context) ([]models.OutboundEnvelope, error) {
	items, err := q.repomanager.Outbound(q.db).ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending error: %w", err)
	}
	return items, nil
}

// MarkSent records a confirmed delivery. Calling it again is a no-op.
func (q *Queue) MarkSent(ctx context.Context, id int64) error {
	if err := q.repomanager.Outbound(q.db).MarkSent(ctx, id, q.now()); err != nil {
		return fmt.Errorf("mark sent error: %w", err)
	}
	return nil
}

// RecordFailure counts a failed delivery and returns the resulting status.
func (q *Queue) RecordFailure(ctx context.Context, id int64, reason string, maxAttempts int) (models.EnvelopeStatus, error) {
	st, err := q.repomanager.Outbound(q.db).RecordFailure(ctx, id, reason, maxAttempts)
	if err != nil {
		return "", fmt.Errorf("record failure error: %w", err)
	}
	return st, nil
}

// Get returns one envelope by id.
func (q *Queue) Get(ctx context.Context, id int64) (*models.OutboundEnvelope, error) {
	return q.repomanager.Outbound(q.db).GetByID(ctx, id)
}

// Stats returns envelope counts per status.
func (q *Queue) Stats(ctx context.Context) (map[models.EnvelopeStatus]int64, error) {
	return q.repomanager.Outbound(q.db).CountByStatus(ctx)
}

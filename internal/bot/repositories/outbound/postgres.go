package outbound

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gembot/internal/bot/models"
	"github.com/dmitrijs2005/gembot/internal/common"
	"github.com/dmitrijs2005/gembot/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, e *models.OutboundEnvelope) (int64, error) {
	query :=
		`INSERT INTO outbound_queue (user_id, content, type, status, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		e.UserID, e.Content, e.Type, string(models.StatusPending), e.CreatedAt.UTC()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) ListPending(ctx context.Context) ([]models.OutboundEnvelope, error) {
	query :=
		`SELECT id, user_id, content, type, status, attempts, last_error, created_at, sent_at
		 FROM outbound_queue
		 WHERE status = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, string(models.StatusPending))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.OutboundEnvelope{}
	for rows.Next() {
		e, err := scanPostgres(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) MarkSent(ctx context.Context, id int64, at time.Time) error {
	query :=
		`UPDATE outbound_queue SET status = $1, sent_at = $2
		 WHERE id = $3 AND status = $4
		 `

	res, err := r.db.ExecContext(ctx, query, string(models.StatusSent), at.UTC(), id, string(models.StatusPending))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if ra == 1 {
		return nil
	}

	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM outbound_queue WHERE id = $1`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RecordFailure(ctx context.Context, id int64, reason string, maxAttempts int) (models.EnvelopeStatus, error) {
	query :=
		`UPDATE outbound_queue
		 SET attempts = attempts + 1,
		     last_error = $1,
		     status = CASE WHEN $2 > 0 AND attempts + 1 >= $2 THEN $3 ELSE status END
		 WHERE id = $4 AND status = $5
		 RETURNING status
		 `

	var status string
	err := r.db.QueryRowContext(ctx, query,
		reason, maxAttempts, string(models.StatusFailed), id, string(models.StatusPending)).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", common.ErrorNotFound
	}
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return models.EnvelopeStatus(status), nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.OutboundEnvelope, error) {
	query :=
		`SELECT id, user_id, content, type, status, attempts, last_error, created_at, sent_at
		 FROM outbound_queue
		 WHERE id = $1
		 `

	e, err := scanPostgres(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	return e, err
}

func (r *PostgresRepository) CountByStatus(ctx context.Context) (map[models.EnvelopeStatus]int64, error) {
	return countByStatus(ctx, r.db)
}

func scanPostgres(s scanner) (*models.OutboundEnvelope, error) {
	var e models.OutboundEnvelope
	var status string
	var sentAt sql.NullTime

	err := s.Scan(&e.ID, &e.UserID, &e.Content, &e.Type, &status, &e.Attempts, &e.LastError, &e.CreatedAt, &sentAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	e.Status = models.EnvelopeStatus(status)
	if sentAt.Valid {
		t := sentAt.Time
		e.SentAt = &t
	}
	return &e, nil
}

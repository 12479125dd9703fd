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

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const sqliteColumns = `id, user_id, content, type, status, attempts, last_error, created_at, sent_at`

func (r *SQLiteRepository) Insert(ctx context.Context, e *models.OutboundEnvelope) (int64, error) {
	query := `INSERT INTO outbound_queue (user_id, content, type, status, created_at)
			VALUES (?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		e.UserID, e.Content, e.Type, string(models.StatusPending), dbx.FormatTime(e.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("failed to insert envelope: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get envelope id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) ListPending(ctx context.Context) ([]models.OutboundEnvelope, error) {
	query := `SELECT ` + sqliteColumns + ` FROM outbound_queue WHERE status = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, string(models.StatusPending))
	if err != nil {
		return nil, fmt.Errorf("failed to select pending envelopes: %w", err)
	}
	defer rows.Close()

	result := []models.OutboundEnvelope{}
	for rows.Next() {
		e, err := scanSQLite(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) MarkSent(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE outbound_queue SET status = ?, sent_at = ? WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, query, string(models.StatusSent), dbx.FormatTime(at), id, string(models.StatusPending))
	if err != nil {
		return fmt.Errorf("failed to mark envelope %d sent: %w", id, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 1 {
		return nil
	}

	// nothing changed: either already sent (no-op) or no such envelope
	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM outbound_queue WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check envelope %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) RecordFailure(ctx context.Context, id int64, reason string, maxAttempts int) (models.EnvelopeStatus, error) {
	query := `UPDATE outbound_queue
		SET attempts = attempts + 1,
			last_error = ?,
			status = CASE WHEN ? > 0 AND attempts + 1 >= ? THEN ? ELSE status END
		WHERE id = ? AND status = ?
		RETURNING status`

	var status string
	err := r.db.QueryRowContext(ctx, query,
		reason, maxAttempts, maxAttempts, string(models.StatusFailed), id, string(models.StatusPending)).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", common.ErrorNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to record failure for envelope %d: %w", id, err)
	}
	return models.EnvelopeStatus(status), nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.OutboundEnvelope, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM outbound_queue WHERE id = ?`, id)
	e, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	return e, err
}

func (r *SQLiteRepository) CountByStatus(ctx context.Context) (map[models.EnvelopeStatus]int64, error) {
	return countByStatus(ctx, r.db)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLite(s scanner) (*models.OutboundEnvelope, error) {
	var e models.OutboundEnvelope
	var status, createdAt string
	var sentAt sql.NullString

	err := s.Scan(&e.ID, &e.UserID, &e.Content, &e.Type, &status, &e.Attempts, &e.LastError, &createdAt, &sentAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan envelope: %w", err)
	}
	e.Status = models.EnvelopeStatus(status)

	if e.CreatedAt, err = dbx.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if sentAt.Valid {
		t, err := dbx.ParseTime(sentAt.String)
		if err != nil {
			return nil, err
		}
		e.SentAt = &t
	}
	return &e, nil
}

func countByStatus(ctx context.Context, db dbx.DBTX) (map[models.EnvelopeStatus]int64, error) {
	rows, err := db.QueryContext(ctx, `SELECT status, COUNT(*) FROM outbound_queue GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count envelopes: %w", err)
	}
	defer rows.Close()

	result := make(map[models.EnvelopeStatus]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan envelope count: %w", err)
		}
		result[models.EnvelopeStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

package messages

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gembot/internal/bot/models"
	"github.com/dmitrijs2005/gembot/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, m *models.ChatMessage) error {
	query := `INSERT INTO messages (user_id, username, role, content, type, input_tokens, output_tokens, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	created := m.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	res, err := r.db.ExecContext(ctx, query,
		m.UserID, usernameOrAnonymous(m.Username), string(m.Role), m.Content, m.Type,
		m.InputTokens, m.OutputTokens, dbx.FormatTime(created))
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		m.ID = id
	}
	return nil
}

func (r *SQLiteRepository) Usage(ctx context.Context) (models.Usage, error) {
	var u models.Usage
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0) FROM messages`).
		Scan(&u.InputTokens, &u.OutputTokens)
	if err != nil {
		return models.Usage{}, fmt.Errorf("failed to sum token usage: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) UserStats(ctx context.Context, limit int) ([]models.UserStat, error) {
	query := `SELECT username, COUNT(*) AS total, MAX(created_at)
			FROM messages
			WHERE role = ?
			GROUP BY username
			ORDER BY total DESC, username
			LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, string(models.RoleUser), clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to select user stats: %w", err)
	}
	defer rows.Close()

	result := []models.UserStat{}
	for rows.Next() {
		var s models.UserStat
		var last string
		if err := rows.Scan(&s.Username, &s.TotalMessages, &last); err != nil {
			return nil, fmt.Errorf("failed to scan user stat: %w", err)
		}
		if s.LastActive, err = dbx.ParseTime(last); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) HourlyActivity(ctx context.Context, since time.Time) ([]models.HourlyActivity, error) {
	query := `SELECT strftime('%H', created_at) AS hour, COUNT(*)
			FROM messages
			WHERE created_at > ?
			GROUP BY hour
			ORDER BY hour`

	rows, err := r.db.QueryContext(ctx, query, dbx.FormatTime(since))
	if err != nil {
		return nil, fmt.Errorf("failed to select hourly activity: %w", err)
	}
	defer rows.Close()

	return scanActivity(rows)
}

func (r *SQLiteRepository) Recent(ctx context.Context, limit int) ([]models.ChatMessage, error) {
	query := `SELECT id, user_id, username, role, content, type, input_tokens, output_tokens, created_at
			FROM messages
			ORDER BY id DESC
			LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to select recent messages: %w", err)
	}
	defer rows.Close()

	result := []models.ChatMessage{}
	for rows.Next() {
		var m models.ChatMessage
		var role, created string
		if err := rows.Scan(&m.ID, &m.UserID, &m.Username, &role, &m.Content, &m.Type,
			&m.InputTokens, &m.OutputTokens, &created); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = models.Role(role)
		if m.CreatedAt, err = dbx.ParseTime(created); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowsScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanActivity(rows rowsScanner) ([]models.HourlyActivity, error) {
	result := []models.HourlyActivity{}
	for rows.Next() {
		var a models.HourlyActivity
		if err := rows.Scan(&a.Hour, &a.Count); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

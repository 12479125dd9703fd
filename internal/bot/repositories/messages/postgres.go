package messages

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gembot/internal/bot/models"
	"github.com/dmitrijs2005/gembot/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, m *models.ChatMessage) error {
	query :=
		`INSERT INTO messages (user_id, username, role, content, type, input_tokens, output_tokens, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id
		 `

	created := m.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	err := r.db.QueryRowContext(ctx, query,
		m.UserID, usernameOrAnonymous(m.Username), string(m.Role), m.Content, m.Type,
		m.InputTokens, m.OutputTokens, created.UTC()).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Usage(ctx context.Context) (models.Usage, error) {
	query :=
		`SELECT COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0)
		 FROM messages
		 `

	var u models.Usage
	if err := r.db.QueryRowContext(ctx, query).Scan(&u.InputTokens, &u.OutputTokens); err != nil {
		return models.Usage{}, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) UserStats(ctx context.Context, limit int) ([]models.UserStat, error) {
	query :=
		`SELECT username, COUNT(*) AS total, MAX(created_at)
		 FROM messages
		 WHERE role = $1
		 GROUP BY username
		 ORDER BY total DESC, username
		 LIMIT $2
		 `

	rows, err := r.db.QueryContext(ctx, query, string(models.RoleUser), clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.UserStat{}
	for rows.Next() {
		var s models.UserStat
		if err := rows.Scan(&s.Username, &s.TotalMessages, &s.LastActive); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) HourlyActivity(ctx context.Context, since time.Time) ([]models.HourlyActivity, error) {
	query :=
		`SELECT to_char(created_at AT TIME ZONE 'UTC', 'HH24') AS hour, COUNT(*)
		 FROM messages
		 WHERE created_at > $1
		 GROUP BY hour
		 ORDER BY hour
		 `

	rows, err := r.db.QueryContext(ctx, query, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return scanActivity(rows)
}

func (r *PostgresRepository) Recent(ctx context.Context, limit int) ([]models.ChatMessage, error) {
	query :=
		`SELECT id, user_id, username, role, content, type, input_tokens, output_tokens, created_at
		 FROM messages
		 ORDER BY id DESC
		 LIMIT $1
		 `

	rows, err := r.db.QueryContext(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.ChatMessage{}
	for rows.Next() {
		var m models.ChatMessage
		var role string
		if err := rows.Scan(&m.ID, &m.UserID, &m.Username, &role, &m.Content, &m.Type,
			&m.InputTokens, &m.OutputTokens, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		m.Role = models.Role(role)
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

package allowlist

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gembot/internal/bot/models"
	"github.com/dmitrijs2005/gembot/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Load(ctx context.Context) ([]models.AuthorizedUser, error) {
	query :=
		`SELECT user_id, username FROM authorized_users
		 ORDER BY position
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

func (r *PostgresRepository) Save(ctx context.Context, users []models.AuthorizedUser) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM authorized_users`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	query :=
		`INSERT INTO authorized_users (position, user_id, username)
		 VALUES ($1, $2, $3)
		 `

	for i, u := range users {
		if _, err := r.db.ExecContext(ctx, query, i, nullID(u.ID), nullName(u.Username)); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

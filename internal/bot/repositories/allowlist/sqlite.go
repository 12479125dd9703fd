package allowlist

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gembot/internal/bot/models"
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

func (r *SQLiteRepository) Load(ctx context.Context) ([]models.AuthorizedUser, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id, username FROM authorized_users ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to select authorized users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// Save deletes all rows and inserts users with their slice index as position.
// Run it inside a transaction (see TxRepository) so readers never observe a
// half-written set.
func (r *SQLiteRepository) Save(ctx context.Context, users []models.AuthorizedUser) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM authorized_users`); err != nil {
		return fmt.Errorf("failed to clear authorized users: %w", err)
	}

	for i, u := range users {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO authorized_users (position, user_id, username) VALUES (?, ?, ?)`,
			i, nullID(u.ID), nullName(u.Username))
		if err != nil {
			return fmt.Errorf("failed to insert authorized user #%d: %w", i, err)
		}
	}
	return nil
}

func scanUsers(rows *sql.Rows) ([]models.AuthorizedUser, error) {
	result := []models.AuthorizedUser{}
	for rows.Next() {
		var id sql.NullInt64
		var name sql.NullString
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan authorized user: %w", err)
		}
		u := models.AuthorizedUser{Username: name.String}
		if id.Valid {
			u.ID = models.Int64Ptr(id.Int64)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate authorized users: %w", err)
	}
	return result, nil
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func nullName(name string) sql.NullString {
	return sql.NullString{String: name, Valid: name != ""}
}

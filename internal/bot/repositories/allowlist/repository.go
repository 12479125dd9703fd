// Package allowlist persists the set of callers allowed to use the bot.
//
// The set is small and always read and written as a whole. Implementations
// keep insertion order: Load returns records in the order they were saved.
//
// Key Types
//
//   - type Repository: interface used by the identity store
//   - type SQLiteRepository: SQLite implementation over dbx.DBTX
//   - type PostgresRepository: PostgreSQL implementation over dbx.DBTX
//   - type FileRepository: indented JSON file, one array of records
//   - type TxRepository: runs Save of a SQL repository in a transaction
package allowlist

import (
	"context"

	"github.com/dmitrijs2005/gembot/internal/bot/models"
)

type Repository interface {
	// Load returns every record in insertion order. An empty store yields
	// an empty slice and no error.
	Load(ctx context.Context) ([]models.AuthorizedUser, error)

	// Save replaces the stored set with users.
	Save(ctx context.Context, users []models.AuthorizedUser) error
}

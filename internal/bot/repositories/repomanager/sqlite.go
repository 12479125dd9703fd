package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gembot/internal/bot/migrations"
	"github.com/dmitrijs2005/gembot/internal/bot/repositories/allowlist"
	"github.com/dmitrijs2005/gembot/internal/bot/repositories/messages"
	"github.com/dmitrijs2005/gembot/internal/bot/repositories/outbound"
	"github.com/dmitrijs2005/gembot/internal/dbx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager vends SQLite-backed repositories.
type SQLiteRepositoryManager struct{}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}

func (m *SQLiteRepositoryManager) AllowList(db dbx.DBTX) allowlist.Repository {
	return allowlist.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Outbound(db dbx.DBTX) outbound.Repository {
	return outbound.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Messages(db dbx.DBTX) messages.Repository {
	return messages.NewSQLiteRepository(db)
}

// RunMigrations applies the embedded SQLite migrations.
func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.SQLite)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, "sqlite")
}

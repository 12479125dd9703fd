// Package repomanager vends backend-specific repositories and runs schema
// migrations, so services can stay unaware of which SQL engine is in use.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gembot/internal/bot/repositories/allowlist"
	"github.com/dmitrijs2005/gembot/internal/bot/repositories/messages"
	"github.com/dmitrijs2005/gembot/internal/bot/repositories/outbound"
	"github.com/dmitrijs2005/gembot/internal/common"
	"github.com/dmitrijs2005/gembot/internal/dbx"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	AllowList(db dbx.DBTX) allowlist.Repository
	Outbound(db dbx.DBTX) outbound.Repository
	Messages(db dbx.DBTX) messages.Repository
}

var sqlitePragmas = []string{
	"PRAGMA busy_timeout = 5000",
	"PRAGMA journal_mode = WAL",
}

// New returns the manager for a database/sql driver name.
func New(driver string) (RepositoryManager, error) {
	switch driver {
	case common.DriverSQLite:
		return NewSQLiteRepositoryManager(), nil
	case common.DriverPostgres:
		return NewPostgresRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrorUnsupportedDriver, driver)
	}
}

// Open connects to the database, applies migrations and returns the handle
// together with the matching manager.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, RepositoryManager, error) {
	m, err := New(driver)
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}

	if driver == common.DriverSQLite {
		// the bot and the dashboard share the file; one connection per
		// process, WAL and a busy timeout keep them from failing on locks
		db.SetMaxOpenConns(1)
		for _, pragma := range sqlitePragmas {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				db.Close()
				return nil, nil, fmt.Errorf("db pragma error: %w", err)
			}
		}
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrations error: %w", err)
	}

	return db, m, nil
}

package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gembot/internal/bot/migrations"
	"github.com/dmitrijs2005/gembot/internal/bot/repositories/allowlist"
	"github.com/dmitrijs2005/gembot/internal/bot/repositories/messages"
	"github.com/dmitrijs2005/gembot/internal/bot/repositories/outbound"
	"github.com/dmitrijs2005/gembot/internal/dbx"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories.
type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) AllowList(db dbx.DBTX) allowlist.Repository {
	return allowlist.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Outbound(db dbx.DBTX) outbound.Repository {
	return outbound.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Messages(db dbx.DBTX) messages.Repository {
	return messages.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded PostgreSQL migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Postgres)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, "postgres")
}

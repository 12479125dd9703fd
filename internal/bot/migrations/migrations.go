// Package migrations embeds the goose migrations for every supported backend.
package migrations

import "embed"

// SQLite holds migrations for the modernc.org/sqlite backend, under "sqlite".
//
//go:embed sqlite/*.sql
var SQLite embed.FS

// Postgres holds migrations for the pgx backend, under "postgres".
//
//go:embed postgres/*.sql
var Postgres embed.FS

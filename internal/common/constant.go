// Package common contains shared constants and sentinel errors used across
// the bot and the dashboard.
package common

// AdminPrefix marks operator-authored messages delivered by the dispatcher.
const AdminPrefix = "[Admin]: "

// DefaultEnvelopeType is the payload kind used when none is given.
const DefaultEnvelopeType = "text"

// Database drivers understood by repomanager.Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

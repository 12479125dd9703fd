package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/gembot/internal/flagx"
)

// parseFlags overlays Config with command-line flags.
//
// Supported flags:
//
//	-d string    database DSN
//	-driver      database driver (sqlite or pgx)
//	-u string    allowed users, comma separated
//	-m string    Gemini model
//	-i duration  dispatch interval (e.g. "3s")
//	-n int       dispatch max attempts, 0 retries forever
//	-a string    health endpoint address, empty disables it
//	-l string    log level
//	-f string    log file
//	-auth string allow-list JSON file
//
// Other flags in args are ignored so the JSON and .env loaders can share them.
func parseFlags(c *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-d", "-driver", "-u", "-m", "-i", "-n", "-a", "-l", "-f", "-auth"})

	fs := flag.NewFlagSet("bot", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&c.DatabaseDSN, "d", c.DatabaseDSN, "database DSN")
	fs.StringVar(&c.DatabaseDriver, "driver", c.DatabaseDriver, "database driver")
	fs.StringVar(&c.AllowedUsers, "u", c.AllowedUsers, "allowed users")
	fs.StringVar(&c.GeminiModel, "m", c.GeminiModel, "gemini model")
	fs.DurationVar(&c.DispatchInterval, "i", c.DispatchInterval, "dispatch interval")
	fs.IntVar(&c.DispatchMaxAttempts, "n", c.DispatchMaxAttempts, "dispatch max attempts")
	fs.StringVar(&c.HealthAddr, "a", c.HealthAddr, "health endpoint address")
	fs.StringVar(&c.LogLevel, "l", c.LogLevel, "log level")
	fs.StringVar(&c.LogFile, "f", c.LogFile, "log file")
	fs.StringVar(&c.AllowListFile, "auth", c.AllowListFile, "allow-list JSON file")

	return fs.Parse(args)
}

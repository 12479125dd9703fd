// Package config handles configuration for the bot process: defaults, an
// optional .env file, environment variables, a JSON overlay and finally
// command-line flags, each layer overriding the previous one.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/gembot/internal/bot/assistant"
	"github.com/dmitrijs2005/gembot/internal/bot/outbound"
	"github.com/dmitrijs2005/gembot/internal/bot/session"
	"github.com/dmitrijs2005/gembot/internal/common"
)

// Config holds runtime settings for the bot.
//
// Fields:
//   - TelegramToken / GeminiAPIKey: credentials, both required.
//   - GeminiModel / SystemInstruction: model selection and persona.
//   - AllowedUsers: comma-separated ids and @handles merged into the allow-list.
//   - DatabaseDriver / DatabaseDSN: "sqlite" (file path DSN) or "pgx" (PostgreSQL DSN).
//   - AllowListFile: when set, the allow-list lives in this JSON file instead of the database.
//   - DispatchInterval / DispatchMaxAttempts: outbound queue polling; 0 attempts retries forever.
//   - HistoryLimit: conversation turns kept per user.
//   - LogLevel / LogFormat / LogFile: logger setup.
//   - HealthAddr: gRPC health endpoint; empty disables it.
type Config struct {
	TelegramToken       string
	GeminiAPIKey        string
	GeminiModel         string
	SystemInstruction   string
	AllowedUsers        string
	DatabaseDriver      string
	DatabaseDSN         string
	AllowListFile       string
	DispatchInterval    time.Duration
	DispatchMaxAttempts int
	HistoryLimit        int
	LogLevel            string
	LogFormat           string
	LogFile             string
	HealthAddr          string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.GeminiModel = assistant.DefaultModel
	c.SystemInstruction = assistant.DefaultSystemInstruction
	c.DatabaseDriver = common.DriverSQLite
	c.DatabaseDSN = "bot_data.db"
	c.DispatchInterval = outbound.DefaultInterval
	c.DispatchMaxAttempts = 0
	c.HistoryLimit = session.DefaultLimit
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.LogFile = "logs/bot.log"
	c.HealthAddr = ":50051"
}

// Validate reports missing credentials and unknown drivers.
func (c *Config) Validate() error {
	var errs []error
	if c.TelegramToken == "" {
		errs = append(errs, errors.New("telegram token is required"))
	}
	if c.GeminiAPIKey == "" {
		errs = append(errs, errors.New("gemini api key is required"))
	}
	switch c.DatabaseDriver {
	case common.DriverSQLite, common.DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", common.ErrorUnsupportedDriver, c.DatabaseDriver))
	}
	if c.DispatchMaxAttempts < 0 {
		errs = append(errs, errors.New("dispatch max attempts must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}
	return nil
}

// LoadConfig builds a Config from the process environment and arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:], os.LookupEnv)
}

// Load applies defaults, the .env file, environment variables, the JSON file
// named by -c/-config and flags, in that order.
func Load(args []string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := loadDotEnv(args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	cfg.AllowedUsers = strings.TrimSpace(cfg.AllowedUsers)
	return cfg, nil
}

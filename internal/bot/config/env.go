package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/gembot/internal/flagx"
)

// loadDotEnv reads the file named by -env (default ".env") into the process
// environment. Variables that are already set win; a missing file is fine.
func loadDotEnv(args []string) error {
	path := ".env"
	if v := flagx.StringFlag(args, "env"); v != "" {
		path = v
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("env file %s: %w", path, err)
	}
	return nil
}

// parseEnv overlays Config with environment variables that are set.
func parseEnv(c *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("TELEGRAM_BOT_TOKEN", &c.TelegramToken)
	str("GEMINI_API_KEY", &c.GeminiAPIKey)
	str("GEMINI_MODEL", &c.GeminiModel)
	str("SYSTEM_INSTRUCTION", &c.SystemInstruction)
	str("ALLOWED_USERS", &c.AllowedUsers)
	str("DATABASE_DRIVER", &c.DatabaseDriver)
	str("DATABASE_DSN", &c.DatabaseDSN)
	str("AUTH_FILE", &c.AllowListFile)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("LOG_FILE", &c.LogFile)
	str("HEALTH_ADDR", &c.HealthAddr)

	if v, ok := lookup("DISPATCH_INTERVAL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("DISPATCH_INTERVAL: %w", err)
		}
		c.DispatchInterval = d
	}
	for key, dst := range map[string]*int{
		"DISPATCH_MAX_ATTEMPTS": &c.DispatchMaxAttempts,
		"HISTORY_LIMIT":         &c.HistoryLimit,
	} {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
	}
	return nil
}

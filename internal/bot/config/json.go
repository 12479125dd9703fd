package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gembot/internal/flagx"
	"github.com/dmitrijs2005/gembot/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept both
// "3s" strings and integer nanoseconds. Absent fields keep earlier values.
type JsonConfig struct {
	TelegramToken       string         `json:"telegram_token"`
	GeminiAPIKey        string         `json:"gemini_api_key"`
	GeminiModel         string         `json:"gemini_model"`
	SystemInstruction   string         `json:"system_instruction"`
	AllowedUsers        string         `json:"allowed_users"`
	DatabaseDriver      string         `json:"database_driver"`
	DatabaseDSN         string         `json:"database_dsn"`
	AllowListFile       string         `json:"allow_list_file"`
	DispatchInterval    timex.Duration `json:"dispatch_interval"`
	DispatchMaxAttempts *int           `json:"dispatch_max_attempts"`
	HistoryLimit        int            `json:"history_limit"`
	LogLevel            string         `json:"log_level"`
	LogFormat           string         `json:"log_format"`
	LogFile             string         `json:"log_file"`
	HealthAddr          *string        `json:"health_addr"`
}

// parseJSON loads the file named by -c/-config, if any, over c.
func parseJSON(c *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	j := &JsonConfig{}
	if err := json.Unmarshal(data, j); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.TelegramToken, j.TelegramToken)
	set(&c.GeminiAPIKey, j.GeminiAPIKey)
	set(&c.GeminiModel, j.GeminiModel)
	set(&c.SystemInstruction, j.SystemInstruction)
	set(&c.AllowedUsers, j.AllowedUsers)
	set(&c.DatabaseDriver, j.DatabaseDriver)
	set(&c.DatabaseDSN, j.DatabaseDSN)
	set(&c.AllowListFile, j.AllowListFile)
	set(&c.LogLevel, j.LogLevel)
	set(&c.LogFormat, j.LogFormat)
	set(&c.LogFile, j.LogFile)

	if j.DispatchInterval.Duration > 0 {
		c.DispatchInterval = j.DispatchInterval.Duration
	}
	if j.DispatchMaxAttempts != nil {
		c.DispatchMaxAttempts = *j.DispatchMaxAttempts
	}
	if j.HistoryLimit > 0 {
		c.HistoryLimit = j.HistoryLimit
	}
	if j.HealthAddr != nil {
		c.HealthAddr = *j.HealthAddr
	}
	return nil
}

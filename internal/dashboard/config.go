package dashboard

import (
	"flag"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/gembot/internal/bot/assistant"
	"github.com/dmitrijs2005/gembot/internal/common"
	"github.com/dmitrijs2005/gembot/internal/flagx"
)

// Config holds settings for the operator dashboard. It reads the same
// database and log file as the bot.
type Config struct {
	DatabaseDriver string
	DatabaseDSN    string
	LogFile        string
	GeminiModel    string
	Refresh        time.Duration
	LogRefresh     time.Duration

	// SendTo and Text enqueue one message and exit instead of opening the UI.
	SendTo int64
	Text   string
}

func (c *Config) LoadDefaults() {
	c.DatabaseDriver = common.DriverSQLite
	c.DatabaseDSN = "bot_data.db"
	c.LogFile = "logs/bot.log"
	c.GeminiModel = assistant.DefaultModel
	c.Refresh = 5 * time.Second
	c.LogRefresh = 2 * time.Second
}

// LoadConfig applies defaults, .env, environment variables and flags.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:], os.LookupEnv)
}

func Load(args []string, lookup func(string) (string, bool)) (*Config, error) {
	c := &Config{}
	c.LoadDefaults()

	envFile := ".env"
	if v := flagx.StringFlag(args, "env"); v != "" {
		envFile = v
	}
	// a missing .env is not an error
	_ = godotenv.Load(envFile)

	for key, dst := range map[string]*string{
		"DATABASE_DRIVER": &c.DatabaseDriver,
		"DATABASE_DSN":    &c.DatabaseDSN,
		"LOG_FILE":        &c.LogFile,
		"GEMINI_MODEL":    &c.GeminiModel,
	} {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	args = flagx.FilterArgs(args, []string{"-d", "-driver", "-f", "-r", "-send", "-text"})
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&c.DatabaseDSN, "d", c.DatabaseDSN, "database DSN")
	fs.StringVar(&c.DatabaseDriver, "driver", c.DatabaseDriver, "database driver")
	fs.StringVar(&c.LogFile, "f", c.LogFile, "bot log file")
	fs.DurationVar(&c.Refresh, "r", c.Refresh, "refresh interval")
	send := fs.String("send", "", "user id to message")
	fs.StringVar(&c.Text, "text", "", "message text for -send")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *send != "" {
		id, err := strconv.ParseInt(*send, 10, 64)
		if err != nil {
			return nil, err
		}
		c.SendTo = id
	}
	return c, nil
}

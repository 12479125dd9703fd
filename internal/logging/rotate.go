package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dmitrijs2005/gembot/internal/filex"
)

// Rotation limits for the log file.
const (
	maxFileSizeMB = 5
	maxFileAgeDay = 14
)

// Options selects level, encoding and destination of the process logger.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // json or text
	File   string // empty disables the file sink
	Stderr bool   // console sink is stderr instead of stdout
}

// ParseLevel maps a level name to slog.Level. Unknown names fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds the process logger. Records go to the console and, when opts.File is
// set, to a size-rotated file. The returned closer flushes the file sink.
func New(opts Options) (*SlogLogger, io.Closer, error) {
	var console io.Writer = os.Stdout
	if opts.Stderr {
		console = os.Stderr
	}
	w := console
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		if _, err := filex.EnsureDir(filepath.Dir(opts.File)); err != nil {
			return nil, nil, err
		}
		rotator := &lumberjack.Logger{
			Filename: opts.File,
			MaxSize:  maxFileSizeMB,
			MaxAge:   maxFileAgeDay,
		}
		w = io.MultiWriter(console, rotator)
		closer = rotator
	}

	return NewSlogLogger(slog.New(newHandler(w, opts))), closer, nil
}

func newHandler(w io.Writer, opts Options) slog.Handler {
	ho := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	if strings.EqualFold(opts.Format, "json") {
		return slog.NewJSONHandler(w, ho)
	}
	return slog.NewTextHandler(w, ho)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

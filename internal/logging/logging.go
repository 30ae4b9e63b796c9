// Package logging builds the application logger. The terminal belongs to the TUI, so
// everything goes to a rotating file.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"searchdeck/internal/config"
)

// New returns a logger writing to the file named in cfg and the closer for that file.
// If the log directory cannot be created the logger discards output.
func New(cfg config.LogSettings) (zerolog.Logger, io.Closer) {
	if cfg.File == "" {
		return zerolog.Nop(), io.NopCloser(nil)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return zerolog.Nop(), io.NopCloser(nil)
	}

	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     28,
		Compress:   true,
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	logger := zerolog.New(file).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("app", "searchdeck").
		Logger()
	return logger, file
}

// ParseLevel maps a config level name to a zerolog level, defaulting to info
func ParseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the log level and an optional rotating log file.
type Options struct {
	Level string
	File  string
	// Console writes human-readable output to stderr instead of JSON.
	Console bool
}

// Setup installs the global logger and returns a closer for the log file, if
// any.
func Setup(opts Options) io.Closer {
	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var stderr io.Writer = os.Stderr
	if opts.Console {
		stderr = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}
	}

	var file *lumberjack.Logger
	out := stderr
	if opts.File != "" {
		file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		out = zerolog.MultiLevelWriter(stderr, file)
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	if err != nil && opts.Level != "" {
		log.Warn().Str("level", opts.Level).Msg("Unknown log level, using info")
	}

	if file == nil {
		return nopCloser{}
	}
	return file
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

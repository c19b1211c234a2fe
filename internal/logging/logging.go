// Package logging builds the zerolog loggers used across radiowave.
//
// The TUI owns the terminal, so it logs JSON lines to a file. The CLI logs
// human-readable lines to stderr.
//
//	logger, closer, err := logging.New(logging.Options{Level: "debug", File: path})
//	defer closer.Close()
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options selects where and how much to log.
type Options struct {
	// Level is a zerolog level name; empty means info.
	Level string

	// File, when set, receives JSON log lines (appended).
	File string

	// Console writes colourless, human-readable lines to Writer
	// (stderr when nil) instead of JSON.
	Console bool

	// Writer overrides the destination when File is empty.
	Writer io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds a logger from opts. The returned closer releases the log file
// and must be closed on shutdown.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	var (
		w      io.Writer = opts.Writer
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return zerolog.Nop(), nopCloser{}, err
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}
	if w == nil {
		w = os.Stderr
	}
	if opts.Console && opts.File == "" {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.Kitchen}
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return logger, closer, nil
}

// ParseLevel maps a level name onto a zerolog level. Empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	if s == "off" || s == "none" {
		return zerolog.Disabled, nil
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// Package app wires the radiowave components from a settings file so the
// CLI and the TUI share one start-up path.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/handiism/radiowave/internal/audio"
	"github.com/handiism/radiowave/internal/config"
	rwhttp "github.com/handiism/radiowave/internal/http"
	"github.com/handiism/radiowave/internal/logging"
	"github.com/handiism/radiowave/internal/radio"
	"github.com/handiism/radiowave/internal/radiobrowser"
	"github.com/handiism/radiowave/internal/storage"
)

// Options controls Bootstrap.
type Options struct {
	// ConfigPath is the settings file; empty means config.DefaultPath.
	ConfigPath string

	// EnvFile is an optional dotenv file loaded before RADIOWAVE_*
	// overrides are applied. A missing file is not an error.
	EnvFile string

	// Console logs human-readable lines to stderr instead of the log file.
	Console bool

	// LogLevel overrides the configured level when set.
	LogLevel string

	// Ephemeral keeps favorites and history in memory for this run only.
	Ephemeral bool

	// Output replaces the speaker output, mainly for tests.
	Output radio.Output
}

// App holds the long-lived components of a running radiowave.
type App struct {
	Settings  *config.Settings
	Logger    zerolog.Logger
	KV        storage.KV
	HTTP      *rwhttp.Client
	Directory *radiobrowser.Client
	Store     *radio.Store

	closers []io.Closer
}

// Bootstrap loads settings, opens storage and builds the Store.
//
// Example:
//
//	a, err := app.Bootstrap(ctx, app.Options{Console: true})
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
func Bootstrap(ctx context.Context, opts Options) (*App, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", opts.EnvFile, err)
		}
	}

	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}
	settings, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := settings.ApplyEnv(os.Getenv); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if opts.Ephemeral {
		settings.Storage = "memory:"
	}

	logOpts := logging.Options{Level: settings.LogLevel, File: settings.LogFile}
	if opts.Console {
		logOpts.File = ""
		logOpts.Console = true
	}
	if opts.LogLevel != "" {
		logOpts.Level = opts.LogLevel
	}
	logger, logCloser, err := logging.New(logOpts)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	a := &App{Settings: settings, Logger: logger}
	a.closers = append(a.closers, logCloser)

	kv, err := storage.Open(settings.Storage)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open storage %s: %w", settings.Storage, err)
	}
	a.KV = kv
	a.closers = append(a.closers, kv)

	hc, err := settings.HTTPClient()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.HTTP = rwhttp.NewClient(
		rwhttp.WithHTTPClient(hc),
		rwhttp.WithUserAgent(settings.UserAgent),
	)

	a.Directory = radiobrowser.NewClient(
		radiobrowser.WithHTTPClient(a.HTTP),
		radiobrowser.WithBootstrapURL(settings.BootstrapURL),
		radiobrowser.WithFallbackBase(settings.FallbackBase),
		radiobrowser.WithLogger(logger.With().Str("component", "directory").Logger()),
	)

	out := opts.Output
	if out == nil {
		// Streams stay open for as long as they play, so the stream client
		// carries no overall timeout.
		streamHC, _ := settings.HTTPClient()
		streamHC.Timeout = 0
		out = audio.NewSpeakerOutput(
			rwhttp.NewClient(rwhttp.WithHTTPClient(streamHC), rwhttp.WithUserAgent(settings.UserAgent)),
			audio.WithLogger(logger.With().Str("component", "audio").Logger()),
		)
	}

	a.Store = radio.New(ctx, kv, out,
		radio.WithLogger(logger.With().Str("component", "store").Logger()),
		radio.WithVolume(settings.DefaultVolume),
	)
	// The Store closes its output.
	a.closers = append(a.closers, a.Store)

	logger.Debug().
		Str("config", path).
		Str("storage", settings.Storage).
		Msg("radiowave started")
	return a, nil
}

// Close releases the Store, storage and log file, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

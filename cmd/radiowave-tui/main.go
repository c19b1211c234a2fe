package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/handiism/radiowave/internal/app"
	"github.com/handiism/radiowave/internal/tui"
)

func main() {
	var (
		configFlag    = flag.String("config", "", "Path to config file (.json, .yaml or .yml)")
		envFlag       = flag.String("env", ".env", "Optional dotenv file with RADIOWAVE_* overrides")
		logLevelFlag  = flag.String("log-level", "", "Log level (debug, info, warn, error, off)")
		ephemeralFlag = flag.Bool("ephemeral", false, "Keep favorites and history in memory only")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The TUI owns the terminal, so logs go to the configured file.
	a, err := app.Bootstrap(ctx, app.Options{
		ConfigPath: *configFlag,
		EnvFile:    *envFlag,
		LogLevel:   *logLevelFlag,
		Ephemeral:  *ephemeralFlag,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = tui.Run(ctx, a.Directory, a.Store, a.KV,
		tui.WithLogger(a.Logger.With().Str("component", "tui").Logger()))
	if cerr := a.Close(); cerr != nil {
		fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", cerr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

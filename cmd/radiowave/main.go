package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/handiism/radiowave/internal/app"
)

// command is one radiowave subcommand.
type command struct {
	name    string
	usage   string
	summary string
	run     func(ctx context.Context, a *app.App, args []string) error
}

var commands = []command{
	{"search", "search [-country C] [-tag T] [-language L] [-limit N] [name]", "Search the station directory", runSearch},
	{"countries", "countries [-filter TEXT]", "List countries with stations", runCountries},
	{"genres", "genres [-limit N] [-filter TEXT]", "List genres by station count", runGenres},
	{"play", "play <station id or name>", "Play a station until interrupted", runPlay},
	{"favorites", "favorites [list | add <id or name> | remove <id>]", "Manage favorites", runFavorites},
	{"recent", "recent", "List recently played stations", runRecent},
	{"export", "export [-recent] [-name NAME] [-dir DIR] [-format m3u|pls|wpl|zpl]", "Export favorites as a playlist", runExport},
	{"record", "record [-duration 30s] [-dir DIR] <station id or name>", "Record a stream to MP3", runRecord},
	{"serve", "serve [-listen ADDR]", "Serve the local control API", runServe},
}

func usage() {
	fmt.Println("radiowave - Internet radio from the command line")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  radiowave [global options] <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	for _, c := range commands {
		fmt.Printf("  %-10s %s\n", c.name, c.summary)
	}
	fmt.Println()
	fmt.Println("For interactive mode, use: radiowave-tui")
	fmt.Println()
	fmt.Println("Global options:")
	flag.PrintDefaults()
}

func main() {
	// Command line flags
	var (
		configFlag    = flag.String("config", "", "Path to config file (.json, .yaml or .yml)")
		envFlag       = flag.String("env", ".env", "Optional dotenv file with RADIOWAVE_* overrides")
		logLevelFlag  = flag.String("log-level", "", "Log level (debug, info, warn, error, off)")
		ephemeralFlag = flag.Bool("ephemeral", false, "Keep favorites and history in memory only")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(1)
	}

	name := flag.Arg(0)
	var cmd *command
	for i := range commands {
		if commands[i].name == name {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", name)
		usage()
		os.Exit(1)
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, stopping...")
		cancel()
	}()

	a, err := app.Bootstrap(ctx, app.Options{
		ConfigPath: *configFlag,
		EnvFile:    *envFlag,
		Console:    true,
		LogLevel:   *logLevelFlag,
		Ephemeral:  *ephemeralFlag,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = cmd.run(ctx, a, flag.Args()[1:])
	if cerr := a.Close(); cerr != nil {
		a.Logger.Warn().Err(cerr).Msg("error during shutdown")
	}

	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errUsage):
		fmt.Fprintf(os.Stderr, "Usage: radiowave %s\n", cmd.usage)
		os.Exit(2)
	case ctx.Err() != nil:
		os.Exit(130)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

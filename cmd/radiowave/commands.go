package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/handiism/radiowave/internal/app"
	"github.com/handiism/radiowave/internal/audio"
	"github.com/handiism/radiowave/internal/export"
	"github.com/handiism/radiowave/internal/httpd"
	"github.com/handiism/radiowave/internal/model"
	"github.com/handiism/radiowave/internal/radiobrowser"
	"github.com/handiism/radiowave/internal/record"
)

var errUsage = errors.New("invalid arguments")

var headerStyle = lipgloss.NewStyle().Bold(true)

func runSearch(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	country := fs.String("country", "", "Only stations from this country")
	tag := fs.String("tag", "", "Only stations with this tag")
	language := fs.String("language", "", "Only stations in this language")
	limit := fs.Int("limit", 30, "Maximum number of results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	stations, err := a.Directory.Search(ctx, model.SearchParams{
		Name:     strings.Join(fs.Args(), " "),
		Country:  *country,
		Language: *language,
		Tag:      *tag,
		Limit:    *limit,
	})
	if err != nil {
		return err
	}

	if len(stations) == 0 {
		fmt.Println("No stations found.")
		return nil
	}
	printStations(stations)
	return nil
}

func runCountries(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("countries", flag.ContinueOnError)
	filter := fs.String("filter", "", "Only countries whose name contains TEXT")
	if err := fs.Parse(args); err != nil {
		return err
	}

	countries, err := a.Directory.ListCountries(ctx)
	if err != nil {
		return err
	}
	countries = radiobrowser.FilterCountries(radiobrowser.SortCountries(countries), *filter)

	t := newTable("Country", "Code", "Stations")
	for _, c := range countries {
		t.Row(c.Name, c.Code, strconv.Itoa(c.StationCount))
	}
	fmt.Println(t)
	return nil
}

func runGenres(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("genres", flag.ContinueOnError)
	limit := fs.Int("limit", radiobrowser.DefaultGenreLimit, "Number of genres to fetch")
	filter := fs.String("filter", "", "Only genres whose name contains TEXT")
	if err := fs.Parse(args); err != nil {
		return err
	}

	genres, err := a.Directory.ListGenres(ctx, *limit)
	if err != nil {
		return err
	}
	genres = radiobrowser.FilterGenres(radiobrowser.SortGenres(genres), *filter)

	t := newTable("Genre", "Stations")
	for _, g := range genres {
		t.Row(g.Name, strconv.Itoa(g.StationCount))
	}
	fmt.Println(t)
	return nil
}

func runPlay(ctx context.Context, a *app.App, args []string) error {
	st, err := resolveStation(ctx, a, args)
	if err != nil {
		return err
	}

	fmt.Printf("▶ Connecting to %s...\n", st.Name)
	if err := a.Store.PlayStation(ctx, st); err != nil {
		return err
	}
	fmt.Printf("▶ Playing %s (%s)\n", st.Name, describe(st))
	fmt.Println("  Press Ctrl+C to stop.")

	<-ctx.Done()
	return nil
}

func runFavorites(ctx context.Context, a *app.App, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "list":
		favorites := a.Store.State().Favorites
		if len(favorites) == 0 {
			fmt.Println("No favorites yet.")
			return nil
		}
		printStations(favorites)

	case "add":
		st, err := resolveStation(ctx, a, args)
		if err != nil {
			return err
		}
		a.Store.AddToFavorites(ctx, st)
		fmt.Printf("♥ Added %s\n", st.Name)

	case "remove":
		if len(args) != 1 {
			return errUsage
		}
		if !a.Store.IsFavorite(args[0]) {
			return fmt.Errorf("%s is not a favorite", args[0])
		}
		a.Store.RemoveFromFavorites(ctx, args[0])
		fmt.Printf("Removed %s\n", args[0])

	default:
		return errUsage
	}
	return nil
}

func runRecent(ctx context.Context, a *app.App, args []string) error {
	recent := a.Store.State().Recent
	if len(recent) == 0 {
		fmt.Println("Nothing played yet.")
		return nil
	}
	printStations(recent)
	return nil
}

func runExport(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	recent := fs.Bool("recent", false, "Export recently played stations instead of favorites")
	name := fs.String("name", "", "Playlist name")
	dir := fs.String("dir", "", "Output directory (overrides config)")
	format := fs.String("format", "", "Playlist format: m3u, pls, wpl or zpl (overrides config)")
	verbose := fs.Bool("verbose", false, "Show verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings := *a.Settings
	if *format != "" {
		if _, err := audio.ParsePlaylistFormat(*format); err != nil {
			return err
		}
		settings.PlaylistFormat = *format
	}
	if *dir == "" {
		*dir = settings.ExportPath
	}

	state := a.Store.State()
	stations, title := state.Favorites, "Favorites"
	if *recent {
		stations, title = state.Recent, "Recently Played"
	}
	if *name != "" {
		title = *name
	}
	if len(stations) == 0 {
		fmt.Println("Nothing to export.")
		return nil
	}

	manager := export.NewManager(&settings, a.HTTP, progressPrinter(*verbose))
	res, err := manager.Export(ctx, title, stations, *dir)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("✨ Exported %d stations to %s\n", len(stations), res.PlaylistPath)
	if res.FaviconDir != "" {
		fmt.Printf("   %d favicons in %s (%d failed)\n", res.Favicons, res.FaviconDir, res.Failed)
	}
	return nil
}

func runRecord(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("record", flag.ContinueOnError)
	duration := fs.Duration("duration", 30*time.Second, "How long to record")
	dir := fs.String("dir", "", "Output directory (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := resolveStation(ctx, a, fs.Args())
	if err != nil {
		return err
	}

	opts := []record.Option{record.WithLogger(a.Logger)}
	if a.Settings.SaveFaviconInTags {
		opts = append(opts, record.WithFavicons(export.NewManager(a.Settings, a.HTTP, nil)))
	}
	recorder := record.NewRecorder(a.Settings, a.HTTP, opts...)

	fmt.Printf("● Recording %s for %s\n", st.Name, *duration)
	rec, err := recorder.Record(ctx, st, *duration, *dir, func(written int64) {
		fmt.Printf("\r  %.2f MB captured", float64(written)/1024/1024)
	})
	fmt.Println()
	if err != nil {
		return err
	}

	fmt.Printf("✅ Saved %s\n", rec.Path)
	return nil
}

func runServe(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	listen := fs.String("listen", a.Settings.ListenAddress, "Address to listen on")
	if err := fs.Parse(args); err != nil {
		return err
	}

	router := httpd.NewRouter(&httpd.Server{
		Player:    a.Store,
		Directory: a.Directory,
		Logger:    a.Logger.With().Str("component", "httpd").Logger(),
	})

	return httpd.ListenAndServe(ctx, *listen, router, func(addr net.Addr) {
		fmt.Printf("📻 Control API listening on http://%s\n", addr)
		fmt.Println("   Press Ctrl+C to stop.")
	})
}

// resolveStation finds the station named by args: a known favorite or
// recent id, then a directory id, then the first name search result.
func resolveStation(ctx context.Context, a *app.App, args []string) (model.Station, error) {
	if len(args) == 0 {
		return model.Station{}, errUsage
	}
	query := strings.Join(args, " ")

	if st, ok := a.Store.Lookup(query); ok {
		return st, nil
	}

	st, err := a.Directory.StationByID(ctx, query)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, radiobrowser.ErrStationNotFound) {
		var nerr *radiobrowser.NetworkError
		// Names are not valid ids; fall through to a search on 4xx.
		if !errors.As(err, &nerr) || nerr.Status == 0 || nerr.Status >= 500 {
			return model.Station{}, err
		}
	}

	found, err := a.Directory.Search(ctx, model.SearchParams{Name: query, Limit: 1})
	if err != nil {
		return model.Station{}, err
	}
	if len(found) == 0 {
		return model.Station{}, fmt.Errorf("no station matches %q", query)
	}
	return found[0], nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func printStations(stations []model.Station) {
	t := newTable("ID", "Name", "Country", "Quality", "Tags")
	for _, st := range stations {
		t.Row(st.ID, st.Name, st.Country, st.Quality(), st.TagList())
	}
	fmt.Println(t)
}

func describe(st model.Station) string {
	parts := make([]string, 0, 2)
	if st.Country != "" {
		parts = append(parts, st.Country)
	}
	if q := st.Quality(); q != "" {
		parts = append(parts, q)
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, ", ")
}

// progressPrinter prints export progress events.
func progressPrinter(verbose bool) func(export.ProgressEvent) {
	return func(event export.ProgressEvent) {
		if event.Level == export.LevelVerbose && !verbose {
			return
		}

		prefix := ""
		switch event.Level {
		case export.LevelError:
			prefix = "❌ "
		case export.LevelWarning:
			prefix = "⚠️  "
		case export.LevelSuccess:
			prefix = "✅ "
		case export.LevelInfo:
			prefix = "ℹ️  "
		default:
			prefix = "   "
		}

		fmt.Println(prefix + event.Message)
	}
}

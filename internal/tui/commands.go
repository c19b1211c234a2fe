package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/radiowave/internal/model"
	"github.com/handiism/radiowave/internal/radio"
	"github.com/handiism/radiowave/internal/radiobrowser"
)

// Result sizes for each screen.
const (
	homePopularLimit  = 8
	homeRecentLimit   = 4
	homeGenreLimit    = 5
	homeGenreSections = 3
	homeGenreStations = 4
	browseGenreLimit  = 50
	browseStations    = 50
	searchLimit       = 30
)

// Message types
type (
	// homeLoadedMsg carries the home screen data.
	homeLoadedMsg struct {
		gen     uint64
		popular []model.Station
		genres  []genreSection
		err     error
	}

	// listingsLoadedMsg carries the browse screen countries and genres.
	listingsLoadedMsg struct {
		gen       uint64
		countries []model.Country
		genres    []model.Genre
		err       error
	}

	// stationsLoadedMsg carries the stations of one browse selection or
	// one search.
	stationsLoadedMsg struct {
		gen      uint64
		stations []model.Station
		err      error
	}

	// stateMsg is sent whenever the Store state changes.
	stateMsg struct {
		State radio.State
	}

	// playDoneMsg is sent when a play or resume settles.
	playDoneMsg struct {
		Station model.Station
		Err     error
	}
)

// genreSection is one "genre" row on the home screen.
type genreSection struct {
	Genre    string
	Stations []model.Station
}

// loadHome fetches popular stations and the stations of the top genres in
// parallel.
func loadHome(ctx context.Context, dir Directory, gen uint64) tea.Cmd {
	return func() tea.Msg {
		g, ctx := errgroup.WithContext(ctx)

		var popular []model.Station
		g.Go(func() error {
			stations, err := dir.PopularStations(ctx, homePopularLimit)
			popular = stations
			return err
		})

		sections := make([]genreSection, homeGenreSections)
		g.Go(func() error {
			genres, err := dir.ListGenres(ctx, homeGenreLimit)
			if err != nil {
				return err
			}
			genres = radiobrowser.SortGenres(genres)
			if len(genres) > homeGenreSections {
				genres = genres[:homeGenreSections]
			}
			for i, genre := range genres {
				g.Go(func() error {
					stations, err := dir.ByTag(ctx, genre.Name, homeGenreStations)
					sections[i] = genreSection{Genre: genre.Name, Stations: stations}
					return err
				})
			}
			return nil
		})

		if err := g.Wait(); err != nil {
			return homeLoadedMsg{gen: gen, err: err}
		}

		genres := make([]genreSection, 0, len(sections))
		for _, s := range sections {
			if len(s.Stations) > 0 {
				genres = append(genres, s)
			}
		}
		return homeLoadedMsg{gen: gen, popular: popular, genres: genres}
	}
}

// loadListings fetches countries and genres for the browse screen.
func loadListings(ctx context.Context, dir Directory, gen uint64) tea.Cmd {
	return func() tea.Msg {
		g, ctx := errgroup.WithContext(ctx)

		var (
			countries []model.Country
			genres    []model.Genre
		)
		g.Go(func() error {
			var err error
			countries, err = dir.ListCountries(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			genres, err = dir.ListGenres(ctx, browseGenreLimit)
			return err
		})

		if err := g.Wait(); err != nil {
			return listingsLoadedMsg{gen: gen, err: err}
		}
		return listingsLoadedMsg{
			gen:       gen,
			countries: radiobrowser.SortCountries(countries),
			genres:    radiobrowser.SortGenres(genres),
		}
	}
}

// loadBrowseStations fetches the stations of a country or genre.
func loadBrowseStations(ctx context.Context, dir Directory, mode browseMode, name string, gen uint64) tea.Cmd {
	return func() tea.Msg {
		var (
			stations []model.Station
			err      error
		)
		if mode == byGenre {
			stations, err = dir.ByTag(ctx, name, browseStations)
		} else {
			stations, err = dir.ByCountry(ctx, name, browseStations)
		}
		return stationsLoadedMsg{gen: gen, stations: stations, err: err}
	}
}

// searchStations runs a name search.
func searchStations(ctx context.Context, dir Directory, query string, gen uint64) tea.Cmd {
	return func() tea.Msg {
		stations, err := dir.Search(ctx, model.SearchParams{Name: query, Limit: searchLimit})
		return stationsLoadedMsg{gen: gen, stations: stations, err: err}
	}
}

// playStation starts st on the player.
func playStation(ctx context.Context, player Player, st model.Station) tea.Cmd {
	return func() tea.Msg {
		return playDoneMsg{Station: st, Err: player.PlayStation(ctx, st)}
	}
}

// togglePlay pauses or resumes the player.
func togglePlay(ctx context.Context, player Player) tea.Cmd {
	return func() tea.Msg {
		var st model.Station
		if cur := player.State().Current; cur != nil {
			st = *cur
		}
		return playDoneMsg{Station: st, Err: player.TogglePlay(ctx)}
	}
}

// adjustVolume moves the player volume by delta.
func adjustVolume(player Player, delta float64) tea.Cmd {
	return func() tea.Msg {
		player.SetVolume(player.State().Volume + delta)
		return stateMsg{State: player.State()}
	}
}

// toggleFavorite adds st to the favorites or removes it.
func toggleFavorite(ctx context.Context, player Player, st model.Station) tea.Cmd {
	return func() tea.Msg {
		player.ToggleFavorite(ctx, st)
		return stateMsg{State: player.State()}
	}
}

// removeFavorite drops the favorite with the given station id.
func removeFavorite(ctx context.Context, player Player, id string) tea.Cmd {
	return func() tea.Msg {
		player.RemoveFromFavorites(ctx, id)
		return stateMsg{State: player.State()}
	}
}

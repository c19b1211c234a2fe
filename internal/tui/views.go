package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/radiowave/internal/model"
	"github.com/handiism/radiowave/internal/radiobrowser"
)

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(m.theme.title.Render("📻 radiowave"))
	b.WriteString("  ")
	b.WriteString(m.viewTabs())
	b.WriteString("\n\n")

	switch m.screen {
	case ScreenHome:
		b.WriteString(m.viewHome())
	case ScreenBrowse:
		b.WriteString(m.viewBrowse())
	case ScreenSearch:
		b.WriteString(m.viewSearch())
	case ScreenFavorites:
		b.WriteString(m.viewFavorites())
	case ScreenAbout:
		b.WriteString(m.viewAbout())
	}

	// Footer
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(m.theme.warning.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(m.viewNowPlaying())
	b.WriteString("\n")
	b.WriteString(m.theme.dim.Render(m.helpText()))

	return b.String()
}

func (m Model) viewTabs() string {
	tabs := make([]string, 0, len(screenNames))
	for i, name := range screenNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if Screen(i) == m.screen {
			tabs = append(tabs, m.theme.tabOn.Render(label))
		} else {
			tabs = append(tabs, m.theme.tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewHome() string {
	var b strings.Builder

	if m.home.loading {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(m.theme.subtitle.Render("Loading radio stations..."))
		b.WriteString("\n")
		return b.String()
	}
	if m.home.err != nil {
		return m.viewError(m.home.err, "Failed to load radio stations. Please try again later.")
	}

	offset := 0
	section := func(title string, stations []model.Station) {
		if len(stations) == 0 {
			return
		}
		b.WriteString(m.theme.subtitle.Render(title))
		b.WriteString("\n")
		b.WriteString(m.renderStations(stations, m.home.cursor-offset))
		b.WriteString("\n")
		offset += len(stations)
	}

	section("Popular Stations", m.home.popular)
	section("Recently Played", m.recentOnHome())
	for _, g := range m.home.genres {
		section(titleCase(g.Genre)+" Stations", g.Stations)
	}
	if offset == 0 {
		b.WriteString(m.theme.dim.Render("No stations found."))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewBrowse() string {
	if m.browse.loading {
		return m.spinner.View() + " " + m.theme.subtitle.Render("Loading countries and genres...") + "\n"
	}
	if m.browse.err != nil {
		return m.viewError(m.browse.err, "Failed to load browse data. Please try again later.")
	}

	var left strings.Builder

	countries, genres := "Countries", "Genres"
	if m.browse.mode == byCountry {
		countries = m.theme.tabOn.Render(countries)
		genres = m.theme.tab.Render(genres)
	} else {
		countries = m.theme.tab.Render(countries)
		genres = m.theme.tabOn.Render(genres)
	}
	left.WriteString(countries + genres)
	left.WriteString("\n")
	left.WriteString(m.browse.filter.View())
	left.WriteString("\n\n")

	var names []string
	var counts []int
	if m.browse.mode == byGenre {
		for _, g := range m.filteredGenres() {
			names = append(names, titleCase(g.Name))
			counts = append(counts, g.StationCount)
		}
	} else {
		for _, c := range m.filteredCountries() {
			names = append(names, c.Name)
			counts = append(counts, c.StationCount)
		}
	}
	if len(names) == 0 {
		if m.browse.mode == byGenre {
			left.WriteString(m.theme.dim.Render("No genres found"))
		} else {
			left.WriteString(m.theme.dim.Render("No countries found"))
		}
		left.WriteString("\n")
	}
	start, end := window(m.browse.cursor, len(names), m.listHeight())
	for i := start; i < end; i++ {
		line := fmt.Sprintf("%-24s %6d", truncate(names[i], 24), counts[i])
		if i == m.browse.cursor && !m.browse.focusStations {
			left.WriteString(m.theme.selected.Render("› " + line))
		} else {
			left.WriteString("  " + line)
		}
		left.WriteString("\n")
	}

	var right strings.Builder
	switch {
	case m.browse.selected == "":
		right.WriteString(m.theme.subtitle.Render("Stations"))
	case m.browse.selectedMode == byGenre:
		right.WriteString(m.theme.subtitle.Render(titleCase(m.browse.selected) + " Stations"))
	default:
		right.WriteString(m.theme.subtitle.Render("Stations in " + m.browse.selected))
	}
	right.WriteString("\n")
	switch {
	case m.browse.stationsLoading:
		right.WriteString(m.spinner.View() + " Loading stations...\n")
	case m.browse.stationsErr != nil:
		right.WriteString(m.viewError(m.browse.stationsErr, fmt.Sprintf("Failed to load stations for %s.", m.browse.selected)))
	case m.browse.selected != "":
		right.WriteString(m.theme.dim.Render(fmt.Sprintf("%d stations", len(m.browse.stations))))
		right.WriteString("\n")
		cursor := -1
		if m.browse.focusStations {
			cursor = m.browse.stationCursor
		}
		right.WriteString(m.renderStations(m.browse.stations, cursor))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(36).Render(left.String()),
		right.String(),
	) + "\n"
}

func (m Model) viewSearch() string {
	var b strings.Builder

	b.WriteString(m.search.input.View())
	b.WriteString("\n\n")

	if m.search.query == "" {
		b.WriteString(m.theme.dim.Render("Type a station name and press enter."))
		b.WriteString("\n")
		return b.String()
	}

	switch {
	case m.search.loading:
		b.WriteString(m.spinner.View() + " " + m.theme.subtitle.Render("Searching..."))
		b.WriteString("\n")
	case m.search.err != nil:
		b.WriteString(m.viewError(m.search.err, "Failed to search for stations. Please try again later."))
	case len(m.search.results) == 0:
		b.WriteString(m.theme.subtitle.Render(fmt.Sprintf("No results for %q", m.search.query)))
		b.WriteString("\n")
	default:
		b.WriteString(m.theme.subtitle.Render(fmt.Sprintf("Results for %q", m.search.query)))
		b.WriteString("\n")
		b.WriteString(m.renderStations(m.search.results, m.search.cursor))
	}

	return b.String()
}

func (m Model) viewFavorites() string {
	var b strings.Builder

	b.WriteString(m.theme.subtitle.Render(fmt.Sprintf("Your Favorites (%d)", len(m.state.Favorites))))
	b.WriteString("\n")

	if len(m.state.Favorites) == 0 {
		b.WriteString(m.theme.dim.Render("No favorites yet. Press f on any station to add it."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.favorites.filter.View())
	b.WriteString("\n\n")

	filtered := m.filteredFavorites()
	if len(filtered) == 0 {
		b.WriteString(m.theme.dim.Render("No favorites match your filter."))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(m.renderStations(filtered, m.favorites.cursor))
	return b.String()
}

func (m Model) viewAbout() string {
	text := "radiowave lets you discover, search and play internet radio stations\n" +
		"from the community-run radio-browser.info directory.\n\n" +
		"Favorites and recently played stations are kept on this machine.\n" +
		"Only MP3 streams can be played.\n\n" +
		"Station data: https://www.radio-browser.info"
	return m.theme.box.Render(text) + "\n"
}

// viewError shows the directory's message for err, or fallback for
// other failures.
func (m Model) viewError(err error, fallback string) string {
	message := fallback
	var nerr *radiobrowser.NetworkError
	if errors.As(err, &nerr) {
		message = nerr.Message
	}
	return m.theme.err.Render("✗ "+message) + "\n" + m.theme.dim.Render("r: try again") + "\n"
}

// viewNowPlaying renders the bar at the bottom of every screen.
func (m Model) viewNowPlaying() string {
	var line string
	if m.state.Current == nil {
		line = m.theme.dim.Render("Nothing playing")
	} else {
		st := m.state.Current
		icon := "❚❚"
		if m.state.Playing {
			icon = "▶"
		}
		parts := []string{st.Name}
		if st.Country != "" {
			parts = append(parts, st.Country)
		}
		if q := st.Quality(); q != "" {
			parts = append(parts, q)
		}
		fav := ""
		if m.state.IsFavorite(st.ID) {
			fav = " ♥"
		}
		line = m.theme.selected.Render(icon+" "+strings.Join(parts, " · ")) + fav +
			m.theme.dim.Render("  "+m.state.Status().String())
	}

	vol := fmt.Sprintf("vol %s %3.0f%%", m.volume.ViewAs(m.state.Volume), m.state.Volume*100)
	return m.theme.bar.Render(line + "   " + vol)
}

// renderStations renders one line per station, highlighting cursor.
func (m Model) renderStations(stations []model.Station, cursor int) string {
	var b strings.Builder

	start, end := 0, len(stations)
	if cursor >= 0 && cursor < len(stations) {
		start, end = window(cursor, len(stations), m.listHeight())
	}
	for i := start; i < end; i++ {
		st := stations[i]
		marker := " "
		if m.state.IsFavorite(st.ID) {
			marker = "♥"
		}
		if m.state.Current != nil && m.state.Current.ID == st.ID {
			marker = "♪"
		}

		meta := st.Country
		if q := st.Quality(); q != "" {
			if meta != "" {
				meta += " · "
			}
			meta += q
		}
		line := fmt.Sprintf("%s %-32s %s", marker, truncate(st.Name, 32), m.theme.dim.Render(meta))
		if tags := st.TagList(); tags != "" {
			line += m.theme.dim.Render("  " + truncate(tags, 30))
		}

		if i == cursor {
			b.WriteString(m.theme.selected.Render("›") + line)
		} else {
			b.WriteString(" " + line)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// listHeight is the number of list rows that fit on screen.
func (m Model) listHeight() int {
	if m.height <= 0 {
		return 20
	}
	return max(m.height-10, 5)
}

// window returns the visible range [start, end) of a list of n rows of
// which height fit, keeping cursor visible.
func window(cursor, n, height int) (int, int) {
	if n <= height {
		return 0, n
	}
	start := cursor - height/2
	start = max(start, 0)
	start = min(start, n-height)
	return start, start + height
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

func (m Model) helpText() string {
	common := "tab: screen • space: play/pause • +/-: volume • f: favorite • t: theme • q: quit"
	if m.focusedInput() != nil {
		return "enter: apply • esc: done"
	}
	switch m.screen {
	case ScreenBrowse:
		return "↑/↓: move • enter: select • g: countries/genres • /: filter • ←/→: pane • " + common
	case ScreenSearch:
		return "/: search • enter: play • " + common
	case ScreenFavorites:
		return "/: filter • enter: play • x: remove • " + common
	case ScreenAbout:
		return common
	}
	return "↑/↓: move • enter: play • " + common
}

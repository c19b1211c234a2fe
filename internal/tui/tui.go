// Package tui provides the Bubble Tea terminal user interface for radiowave.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/handiism/radiowave/internal/model"
	"github.com/handiism/radiowave/internal/radio"
	"github.com/handiism/radiowave/internal/radiobrowser"
	"github.com/handiism/radiowave/internal/storage"
)

// volumeStep is the change applied by one +/- key press.
const volumeStep = 0.1

// Directory is the station directory the screens query.
type Directory interface {
	Search(ctx context.Context, params model.SearchParams) ([]model.Station, error)
	PopularStations(ctx context.Context, limit int) ([]model.Station, error)
	ByCountry(ctx context.Context, country string, limit int) ([]model.Station, error)
	ByTag(ctx context.Context, tag string, limit int) ([]model.Station, error)
	ListCountries(ctx context.Context) ([]model.Country, error)
	ListGenres(ctx context.Context, limit int) ([]model.Genre, error)
}

// Player is the subset of *radio.Store the screens drive.
type Player interface {
	State() radio.State
	PlayStation(ctx context.Context, st model.Station) error
	TogglePlay(ctx context.Context) error
	SetVolume(v float64)
	ToggleFavorite(ctx context.Context, st model.Station) bool
	RemoveFromFavorites(ctx context.Context, id string)
	Subscribe(fn func(radio.State)) (cancel func())
}

// Screen identifies one of the top-level screens.
type Screen int

const (
	ScreenHome Screen = iota
	ScreenBrowse
	ScreenSearch
	ScreenFavorites
	ScreenAbout
)

var screenNames = [...]string{"Home", "Browse", "Search", "Favorites", "About"}

func (s Screen) String() string {
	if s < 0 || int(s) >= len(screenNames) {
		return fmt.Sprintf("Screen(%d)", int(s))
	}
	return screenNames[s]
}

type browseMode int

const (
	byCountry browseMode = iota
	byGenre
)

type homeScreen struct {
	gen     uint64
	loaded  bool
	loading bool
	err     error
	popular []model.Station
	genres  []genreSection
	cursor  int
}

type browseScreen struct {
	gen       uint64
	loaded    bool
	loading   bool
	err       error
	mode      browseMode
	countries []model.Country
	genres    []model.Genre
	filter    textinput.Model
	cursor    int

	// Right-hand pane with the stations of the selected entry.
	selected        string
	selectedMode    browseMode
	stationGen      uint64
	stations        []model.Station
	stationsLoading bool
	stationsErr     error
	stationCursor   int
	focusStations   bool
}

type searchScreen struct {
	gen     uint64
	input   textinput.Model
	query   string
	loading bool
	err     error
	results []model.Station
	cursor  int
}

type favoritesScreen struct {
	filter textinput.Model
	cursor int
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	ctx    context.Context
	dir    Directory
	player Player
	kv     storage.KV
	logger zerolog.Logger

	screen Screen
	state  radio.State
	dark   bool
	theme  theme
	notice string
	seq    uint64

	spinner spinner.Model
	volume  progress.Model

	home      homeScreen
	browse    browseScreen
	search    searchScreen
	favorites favoritesScreen

	width  int
	height int
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger for UI errors.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Model) {
		m.logger = logger
	}
}

// NewModel creates a new TUI model.
//
// kv holds the dark-mode preference and may be nil.
func NewModel(ctx context.Context, dir Directory, player Player, kv storage.KV, opts ...Option) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	vol := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	vol.Width = 20

	search := textinput.New()
	search.Placeholder = "Search stations by name..."
	search.CharLimit = 200
	search.Width = 50

	browseFilter := textinput.New()
	browseFilter.Placeholder = "Filter..."
	browseFilter.CharLimit = 100
	browseFilter.Width = 30

	favFilter := textinput.New()
	favFilter.Placeholder = "Filter by name, country or tag..."
	favFilter.CharLimit = 100
	favFilter.Width = 40

	m := Model{
		ctx:       ctx,
		dir:       dir,
		player:    player,
		kv:        kv,
		logger:    zerolog.Nop(),
		state:     player.State(),
		spinner:   sp,
		volume:    vol,
		search:    searchScreen{input: search},
		browse:    browseScreen{filter: browseFilter},
		favorites: favoritesScreen{filter: favFilter},
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.home.gen = m.nextGen()
	m.home.loading = true

	m.dark = m.loadDarkMode()
	m.theme = newTheme(m.dark)
	m.spinner.Style = lipgloss.NewStyle().Foreground(m.theme.accent)
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadHome(m.ctx, m.dir, m.home.gen))
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case stateMsg:
		m.state = msg.State
		m.clampCursors()

	case playDoneMsg:
		m.state = m.player.State()
		if msg.Err != nil {
			m.notice = fmt.Sprintf("Could not play %s", msg.Station.Name)
		}

	case homeLoadedMsg:
		if msg.gen != m.home.gen {
			return m, nil
		}
		m.home.loaded = true
		m.home.loading = false
		m.home.err = msg.err
		if msg.err == nil {
			m.home.popular = msg.popular
			m.home.genres = msg.genres
		}
		m.clampCursors()

	case listingsLoadedMsg:
		if msg.gen != m.browse.gen {
			return m, nil
		}
		m.browse.loading = false
		m.browse.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.browse.loaded = true
		m.browse.countries = msg.countries
		m.browse.genres = msg.genres
		m.browse.cursor = 0
		if len(m.browse.countries) > 0 && m.browse.selected == "" {
			cmds = append(cmds, m.selectBrowseEntry(byCountry, m.browse.countries[0].Name))
		}

	case stationsLoadedMsg:
		switch msg.gen {
		case m.browse.stationGen:
			m.browse.stationsLoading = false
			m.browse.stationsErr = msg.err
			m.browse.stations = msg.stations
			m.browse.stationCursor = 0
		case m.search.gen:
			m.search.loading = false
			m.search.err = msg.err
			m.search.results = msg.stations
			m.search.cursor = 0
		}
	}

	return m, tea.Batch(cmds...)
}

// handleKey dispatches a key press, first to a focused text input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.focusedInput() != nil {
		return m.handleInputKey(msg)
	}

	m.notice = ""
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "tab":
		return m.switchScreen((m.screen + 1) % Screen(len(screenNames)))

	case "shift+tab":
		return m.switchScreen((m.screen + Screen(len(screenNames)) - 1) % Screen(len(screenNames)))

	case "1", "2", "3", "4", "5":
		return m.switchScreen(Screen(msg.String()[0] - '1'))

	case "up", "k":
		m.moveCursor(-1)

	case "down", "j":
		m.moveCursor(1)

	case " ", "space":
		if m.state.Current != nil {
			return m, togglePlay(m.ctx, m.player)
		}

	case "+", "=":
		return m, adjustVolume(m.player, volumeStep)

	case "-", "_":
		return m, adjustVolume(m.player, -volumeStep)

	case "f":
		st, ok := m.selectedStation()
		if !ok && m.state.Current != nil {
			st, ok = *m.state.Current, true
		}
		if ok {
			return m, toggleFavorite(m.ctx, m.player, st)
		}

	case "x", "delete":
		if m.screen == ScreenFavorites {
			if st, ok := m.selectedStation(); ok {
				return m, removeFavorite(m.ctx, m.player, st.ID)
			}
		}

	case "t":
		m.dark = !m.dark
		m.theme = newTheme(m.dark)
		m.spinner.Style = lipgloss.NewStyle().Foreground(m.theme.accent)
		m.saveDarkMode()

	case "r":
		return m.retry()

	case "/":
		return m.focusInput()

	case "g":
		if m.screen == ScreenBrowse {
			if m.browse.mode == byCountry {
				m.browse.mode = byGenre
			} else {
				m.browse.mode = byCountry
			}
			m.browse.cursor = 0
			m.browse.focusStations = false
		}

	case "left", "h", "esc":
		if m.screen == ScreenBrowse {
			m.browse.focusStations = false
		}

	case "right", "l":
		if m.screen == ScreenBrowse && len(m.browse.stations) > 0 {
			m.browse.focusStations = true
		}

	case "enter":
		if m.screen == ScreenBrowse && !m.browse.focusStations {
			name, ok := m.browseEntry()
			if !ok {
				return m, nil
			}
			m.browse.focusStations = true
			cmd := m.selectBrowseEntry(m.browse.mode, name)
			return m, cmd
		}
		if st, ok := m.selectedStation(); ok {
			return m, playStation(m.ctx, m.player, st)
		}
	}

	return m, nil
}

// handleInputKey feeds a key to the focused input. enter and esc leave the
// input; enter on the search screen runs the query.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	input := m.focusedInput()
	switch msg.String() {
	case "esc":
		input.Blur()
		return m, nil

	case "enter":
		input.Blur()
		if m.screen == ScreenSearch {
			return m.runSearch(input.Value())
		}
		return m, nil
	}

	var cmd tea.Cmd
	*input, cmd = input.Update(msg)
	switch m.screen {
	case ScreenBrowse:
		m.browse.cursor = 0
	case ScreenFavorites:
		m.favorites.cursor = 0
	}
	return m, cmd
}

// focusedInput returns the text input of the current screen if it has focus.
func (m *Model) focusedInput() *textinput.Model {
	var input *textinput.Model
	switch m.screen {
	case ScreenBrowse:
		input = &m.browse.filter
	case ScreenSearch:
		input = &m.search.input
	case ScreenFavorites:
		input = &m.favorites.filter
	default:
		return nil
	}
	if !input.Focused() {
		return nil
	}
	return input
}

func (m Model) focusInput() (tea.Model, tea.Cmd) {
	switch m.screen {
	case ScreenBrowse:
		m.browse.focusStations = false
		cmd := m.browse.filter.Focus()
		return m, cmd
	case ScreenSearch:
		cmd := m.search.input.Focus()
		return m, cmd
	case ScreenFavorites:
		cmd := m.favorites.filter.Focus()
		return m, cmd
	}
	return m, nil
}

// switchScreen changes screen, loading its data on first visit.
func (m Model) switchScreen(s Screen) (tea.Model, tea.Cmd) {
	m.screen = s
	switch s {
	case ScreenHome:
		if !m.home.loaded && !m.home.loading {
			return m.reloadHome()
		}
	case ScreenBrowse:
		if !m.browse.loaded && !m.browse.loading {
			return m.reloadListings()
		}
	case ScreenSearch:
		if m.search.query == "" {
			cmd := m.search.input.Focus()
			return m, cmd
		}
	}
	return m, nil
}

// retry re-issues the failed query of the current screen.
func (m Model) retry() (tea.Model, tea.Cmd) {
	switch m.screen {
	case ScreenHome:
		if m.home.err != nil {
			return m.reloadHome()
		}
	case ScreenBrowse:
		if m.browse.err != nil {
			return m.reloadListings()
		}
		if m.browse.stationsErr != nil {
			cmd := m.selectBrowseEntry(m.browse.selectedMode, m.browse.selected)
			return m, cmd
		}
	case ScreenSearch:
		if m.search.err != nil {
			return m.runSearch(m.search.query)
		}
	}
	return m, nil
}

// nextGen returns a fresh request token.
func (m *Model) nextGen() uint64 {
	m.seq++
	return m.seq
}

func (m Model) reloadHome() (tea.Model, tea.Cmd) {
	m.home.gen = m.nextGen()
	m.home.loading = true
	m.home.err = nil
	return m, tea.Batch(m.spinner.Tick, loadHome(m.ctx, m.dir, m.home.gen))
}

func (m Model) reloadListings() (tea.Model, tea.Cmd) {
	m.browse.gen = m.nextGen()
	m.browse.loading = true
	m.browse.err = nil
	return m, tea.Batch(m.spinner.Tick, loadListings(m.ctx, m.dir, m.browse.gen))
}

// selectBrowseEntry loads the stations of a country or genre. Responses of
// earlier selections are discarded.
func (m *Model) selectBrowseEntry(mode browseMode, name string) tea.Cmd {
	m.browse.selected = name
	m.browse.selectedMode = mode
	m.browse.stationGen = m.nextGen()
	m.browse.stationsLoading = true
	m.browse.stationsErr = nil
	return tea.Batch(m.spinner.Tick, loadBrowseStations(m.ctx, m.dir, mode, name, m.browse.stationGen))
}

// runSearch issues a name search. An empty query clears the results.
func (m Model) runSearch(query string) (tea.Model, tea.Cmd) {
	m.search.query = query
	m.search.err = nil
	m.search.cursor = 0
	if query == "" {
		m.search.gen = m.nextGen()
		m.search.loading = false
		m.search.results = nil
		return m, nil
	}

	m.search.gen = m.nextGen()
	m.search.loading = true
	return m, tea.Batch(m.spinner.Tick, searchStations(m.ctx, m.dir, query, m.search.gen))
}

// homeStations flattens the home sections in display order.
func (m Model) homeStations() []model.Station {
	var out []model.Station
	out = append(out, m.home.popular...)
	out = append(out, m.recentOnHome()...)
	for _, g := range m.home.genres {
		out = append(out, g.Stations...)
	}
	return out
}

func (m Model) recentOnHome() []model.Station {
	if len(m.state.Recent) > homeRecentLimit {
		return m.state.Recent[:homeRecentLimit]
	}
	return m.state.Recent
}

func (m Model) filteredCountries() []model.Country {
	return radiobrowser.FilterCountries(m.browse.countries, m.browse.filter.Value())
}

func (m Model) filteredGenres() []model.Genre {
	return radiobrowser.FilterGenres(m.browse.genres, m.browse.filter.Value())
}

func (m Model) filteredFavorites() []model.Station {
	return model.FilterStations(m.state.Favorites, m.favorites.filter.Value())
}

// browseEntry returns the country or genre under the cursor.
func (m Model) browseEntry() (string, bool) {
	if m.browse.mode == byGenre {
		genres := m.filteredGenres()
		if m.browse.cursor < len(genres) {
			return genres[m.browse.cursor].Name, true
		}
		return "", false
	}
	countries := m.filteredCountries()
	if m.browse.cursor < len(countries) {
		return countries[m.browse.cursor].Name, true
	}
	return "", false
}

// selectedStation returns the station under the cursor of the current
// screen.
func (m Model) selectedStation() (model.Station, bool) {
	var (
		list   []model.Station
		cursor int
	)
	switch m.screen {
	case ScreenHome:
		list, cursor = m.homeStations(), m.home.cursor
	case ScreenBrowse:
		if !m.browse.focusStations {
			return model.Station{}, false
		}
		list, cursor = m.browse.stations, m.browse.stationCursor
	case ScreenSearch:
		list, cursor = m.search.results, m.search.cursor
	case ScreenFavorites:
		list, cursor = m.filteredFavorites(), m.favorites.cursor
	}
	if cursor < 0 || cursor >= len(list) {
		return model.Station{}, false
	}
	return list[cursor], true
}

// moveCursor moves the cursor of the current list by delta.
func (m *Model) moveCursor(delta int) {
	switch m.screen {
	case ScreenHome:
		m.home.cursor = clamp(m.home.cursor+delta, len(m.homeStations()))
	case ScreenBrowse:
		if m.browse.focusStations {
			m.browse.stationCursor = clamp(m.browse.stationCursor+delta, len(m.browse.stations))
		} else if m.browse.mode == byGenre {
			m.browse.cursor = clamp(m.browse.cursor+delta, len(m.filteredGenres()))
		} else {
			m.browse.cursor = clamp(m.browse.cursor+delta, len(m.filteredCountries()))
		}
	case ScreenSearch:
		m.search.cursor = clamp(m.search.cursor+delta, len(m.search.results))
	case ScreenFavorites:
		m.favorites.cursor = clamp(m.favorites.cursor+delta, len(m.filteredFavorites()))
	}
}

// clampCursors keeps cursors inside lists that shrank.
func (m *Model) clampCursors() {
	m.home.cursor = clamp(m.home.cursor, len(m.homeStations()))
	m.favorites.cursor = clamp(m.favorites.cursor, len(m.filteredFavorites()))
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (m Model) loadDarkMode() bool {
	if m.kv == nil {
		return false
	}
	data, err := m.kv.Get(m.ctx, storage.KeyDarkMode)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.logger.Warn().Err(err).Msg("error reading dark mode preference")
		}
		return false
	}
	var dark bool
	if err := json.Unmarshal(data, &dark); err != nil {
		m.logger.Debug().Err(err).Msg("malformed dark mode preference")
		return false
	}
	return dark
}

func (m Model) saveDarkMode() {
	if m.kv == nil {
		return
	}
	data, _ := json.Marshal(m.dark)
	if err := m.kv.Set(m.ctx, storage.KeyDarkMode, data); err != nil {
		m.logger.Warn().Err(err).Msg("error saving dark mode preference")
	}
}

// Run starts the TUI application and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, dir Directory, player Player, kv storage.KV, opts ...Option) error {
	p, stop := newProgram(ctx, NewModel(ctx, dir, player, kv, opts...), player, tea.WithAltScreen())
	defer stop()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// newProgram creates the program for m and forwards player state changes
// to it. The subscriber only queues the latest state, so a player mutation
// made from Update or any other goroutine never waits on the event loop.
func newProgram(ctx context.Context, m Model, player Player, opts ...tea.ProgramOption) (*tea.Program, func()) {
	p := tea.NewProgram(m, append(opts, tea.WithContext(ctx))...)

	latest := make(chan radio.State, 1)
	done := make(chan struct{})
	unsubscribe := player.Subscribe(func(s radio.State) {
		for {
			select {
			case latest <- s:
				return
			default:
			}
			// Drop the stale state queued before s.
			select {
			case <-latest:
			default:
			}
		}
	})

	go func() {
		for {
			select {
			case s := <-latest:
				p.Send(stateMsg{State: s})
			case <-done:
				return
			}
		}
	}()

	return p, func() {
		unsubscribe()
		close(done)
	}
}

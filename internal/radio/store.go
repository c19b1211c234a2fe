package radio

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"

	"github.com/rs/zerolog"

	"github.com/handiism/radiowave/internal/model"
	"github.com/handiism/radiowave/internal/storage"
)

// DefaultVolume is the volume a new Store starts with.
const DefaultVolume = 0.8

// Output is the single audio handle owned by a Store.
//
// Implementations must be safe for use from multiple goroutines: the Store
// does not hold its lock while Play connects to a stream.
type Output interface {
	// Load retargets the output at url, stopping whatever was audible.
	Load(url string) error
	// Play starts or resumes the loaded source.
	Play(ctx context.Context) error
	// Pause stops audible output without forgetting the source.
	Pause()
	// SetVolume applies a volume in [0, 1].
	SetVolume(v float64)
	// Close releases the output for good.
	Close() error
}

// Status is the playback state of a Store.
type Status int

const (
	// StatusIdle means no station has been selected.
	StatusIdle Status = iota
	// StatusPlaying means a station is selected and audio is requested.
	StatusPlaying
	// StatusPaused means a station is selected but audio is not requested.
	StatusPaused
)

func (s Status) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "idle"
	}
}

// State is a snapshot of the Store. It is safe to keep and modify.
type State struct {
	Current   *model.Station  `json:"currentStation"`
	Playing   bool            `json:"isPlaying"`
	Volume    float64         `json:"volume"`
	Favorites []model.Station `json:"favorites"`
	Recent    []model.Station `json:"recentlyPlayed"`
}

// Status derives the playback state from the snapshot.
func (s State) Status() Status {
	switch {
	case s.Current == nil:
		return StatusIdle
	case s.Playing:
		return StatusPlaying
	default:
		return StatusPaused
	}
}

// IsFavorite reports whether the snapshot holds a favorite with id.
func (s State) IsFavorite(id string) bool {
	return model.IndexOf(s.Favorites, id) >= 0
}

// Store is the playback and favorites state container.
type Store struct {
	kv     storage.KV
	out    Output
	logger zerolog.Logger

	mu        sync.Mutex
	current   *model.Station
	playing   bool
	volume    float64
	favorites []model.Station
	recent    []model.Station

	// playGen counts play requests so a late failure of a superseded
	// request cannot roll back a newer one.
	playGen uint64

	subsMu  sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for playback and storage diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithVolume sets the initial volume, clamped to [0, 1].
func WithVolume(v float64) Option {
	return func(s *Store) {
		s.volume = clampVolume(v)
	}
}

// New creates a Store and hydrates favorites and recently played stations
// from kv. Missing or malformed records load as empty lists.
func New(ctx context.Context, kv storage.KV, out Output, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		out:    out,
		logger: zerolog.Nop(),
		volume: DefaultVolume,
		subs:   make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.favorites = dedupe(s.load(ctx, storage.KeyFavorites), 0)
	s.recent = dedupe(s.load(ctx, storage.KeyRecentlyPlayed), MaxRecentlyPlayed)
	s.out.SetVolume(s.volume)

	s.logger.Debug().
		Int("favorites", len(s.favorites)).
		Int("recent", len(s.recent)).
		Msg("store hydrated")

	return s
}

// load reads a station list from storage.
func (s *Store) load(ctx context.Context, key string) []model.Station {
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read persisted stations")
		}
		return []model.Station{}
	}

	var stations []model.Station
	if err := json.Unmarshal(data, &stations); err != nil {
		s.logger.Debug().Err(err).Str("key", key).Msg("ignoring malformed persisted stations")
		return []model.Station{}
	}
	if stations == nil {
		return []model.Station{}
	}
	return stations
}

// save writes a station list to storage. Errors are logged only.
func (s *Store) save(ctx context.Context, key string, stations []model.Station) {
	data, err := json.Marshal(stations)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to encode stations")
		return
	}
	if err := s.kv.Set(ctx, key, data); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to persist stations")
	}
}

func (s *Store) persistFavorites(ctx context.Context) {
	s.save(ctx, storage.KeyFavorites, s.favorites)
}

func (s *Store) persistRecent(ctx context.Context) {
	s.save(ctx, storage.KeyRecentlyPlayed, s.recent)
}

// PlayStation makes station the current station and starts playback.
//
// The station is recorded at the front of the recently played list before
// playback is attempted. If the output rejects playback, the Store keeps
// the station as current but marks it not playing and returns a
// *PlaybackError.
func (s *Store) PlayStation(ctx context.Context, station model.Station) error {
	st := cloneStation(station)

	s.mu.Lock()
	s.current = &st
	s.playing = true
	s.recent = pushRecent(s.recent, st)
	s.playGen++
	gen := s.playGen
	s.persistRecent(ctx)
	err := s.out.Load(st.URL)
	s.mu.Unlock()
	s.notify()

	if err == nil {
		err = s.out.Play(ctx)
	}
	return s.settle(gen, st, err)
}

// settle reconciles state once an asynchronous play or resume finishes.
func (s *Store) settle(gen uint64, st model.Station, err error) error {
	s.mu.Lock()
	current := s.playGen == gen
	if err != nil {
		if current {
			s.playing = false
		}
		s.mu.Unlock()

		s.logger.Error().Err(err).
			Str("station", st.Name).
			Str("id", st.ID).
			Str("url", st.URL).
			Msg("error playing audio")
		s.notify()
		return &PlaybackError{Station: st, Err: err}
	}

	// A pause may have landed while the output was still connecting.
	if current && !s.playing {
		s.out.Pause()
	}
	s.mu.Unlock()
	return nil
}

// PauseStation stops audible output. It does nothing unless playing.
func (s *Store) PauseStation() {
	s.mu.Lock()
	if !s.playing {
		s.mu.Unlock()
		return
	}
	s.playing = false
	s.out.Pause()
	s.mu.Unlock()
	s.notify()
}

// TogglePlay pauses when playing and resumes the current station when
// paused. Without a current station it does nothing.
func (s *Store) TogglePlay(ctx context.Context) error {
	s.mu.Lock()
	if s.playing {
		s.playing = false
		s.out.Pause()
		s.mu.Unlock()
		s.notify()
		return nil
	}
	if s.current == nil {
		s.mu.Unlock()
		return nil
	}

	st := *s.current
	s.playing = true
	s.playGen++
	gen := s.playGen
	s.mu.Unlock()
	s.notify()

	return s.settle(gen, st, s.out.Play(ctx))
}

// SetVolume clamps v to [0, 1] and applies it immediately.
func (s *Store) SetVolume(v float64) {
	v = clampVolume(v)

	s.mu.Lock()
	s.volume = v
	s.out.SetVolume(v)
	s.mu.Unlock()
	s.notify()
}

// AddToFavorites appends station unless a favorite with its id exists.
func (s *Store) AddToFavorites(ctx context.Context, station model.Station) {
	s.mu.Lock()
	favorites, changed := appendFavorite(s.favorites, cloneStation(station))
	if !changed {
		s.mu.Unlock()
		return
	}
	s.favorites = favorites
	s.persistFavorites(ctx)
	s.mu.Unlock()
	s.notify()
}

// RemoveFromFavorites drops the favorite with id, if any.
func (s *Store) RemoveFromFavorites(ctx context.Context, id string) {
	s.mu.Lock()
	favorites, changed := removeByID(s.favorites, id)
	if !changed {
		s.mu.Unlock()
		return
	}
	s.favorites = favorites
	s.persistFavorites(ctx)
	s.mu.Unlock()
	s.notify()
}

// ToggleFavorite adds or removes station and reports whether it is now a
// favorite.
func (s *Store) ToggleFavorite(ctx context.Context, station model.Station) bool {
	if s.IsFavorite(station.ID) {
		s.RemoveFromFavorites(ctx, station.ID)
		return false
	}
	s.AddToFavorites(ctx, station)
	return true
}

// IsFavorite reports whether a favorite with id exists.
func (s *Store) IsFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.IndexOf(s.favorites, id) >= 0
}

// Lookup finds a known station by id among the current station,
// favorites and recently played stations.
func (s *Store) Lookup(id string) (model.Station, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.ID == id {
		return cloneStation(*s.current), true
	}
	for _, list := range [][]model.Station{s.favorites, s.recent} {
		if i := model.IndexOf(list, id); i >= 0 {
			return cloneStation(list[i]), true
		}
	}
	return model.Station{}, false
}

// State returns a snapshot of the Store.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) snapshot() State {
	st := State{
		Playing:   s.playing,
		Volume:    s.volume,
		Favorites: cloneStations(s.favorites),
		Recent:    cloneStations(s.recent),
	}
	if s.current != nil {
		current := cloneStation(*s.current)
		st.Current = &current
	}
	return st
}

// Subscribe registers fn to receive a snapshot after every change.
// fn runs on the goroutine that made the change and must not block.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *Store) notify() {
	s.subsMu.Lock()
	if len(s.subs) == 0 {
		s.subsMu.Unlock()
		return
	}
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	state := s.State()
	for _, fn := range fns {
		fn(state)
	}
}

// Close stops playback and releases the output.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.playing = false
	s.playGen++
	return s.out.Close()
}

func clampVolume(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

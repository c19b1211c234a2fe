package radiobrowser

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	rwhttp "github.com/handiism/radiowave/internal/http"
	"github.com/handiism/radiowave/internal/model"
	"github.com/handiism/radiowave/internal/radiobrowser/dto"
)

const (
	// DefaultBootstrapURL serves the pool of directory API servers.
	DefaultBootstrapURL = "https://all.api.radio-browser.info"

	// DefaultFallbackBase is used when the server pool cannot be resolved.
	DefaultFallbackBase = "https://de1.api.radio-browser.info/json"

	// DefaultStationLimit applies when a wrapper is called with limit <= 0.
	DefaultStationLimit = 20

	// DefaultGenreLimit applies when ListGenres is called with limit <= 0.
	DefaultGenreLimit = 30
)

// Client queries the station directory.
//
// The resolved base URL is part of the Client's own state: it is computed
// on the first query and reused until the Client is discarded.
//
// Example usage:
//
//	client := NewClient(WithLogger(logger))
//
//	popular, err := client.PopularStations(ctx, 8)
//	countries, err := client.ListCountries(ctx)
//	jazz, err := client.ByTag(ctx, "jazz", 50)
type Client struct {
	http         *rwhttp.Client
	bootstrapURL string
	fallbackBase string
	intn         func(n int) int
	logger       zerolog.Logger

	resolveMu sync.Mutex
	resolved  bool
	base      string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport used for all directory requests.
func WithHTTPClient(c *rwhttp.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithBootstrapURL overrides DefaultBootstrapURL.
func WithBootstrapURL(u string) Option {
	return func(cl *Client) {
		if u != "" {
			cl.bootstrapURL = strings.TrimRight(u, "/")
		}
	}
}

// WithFallbackBase overrides DefaultFallbackBase.
func WithFallbackBase(u string) Option {
	return func(cl *Client) {
		if u != "" {
			cl.fallbackBase = strings.TrimRight(u, "/")
		}
	}
}

// WithBaseURL skips resolution entirely and uses base for every query.
func WithBaseURL(base string) Option {
	return func(cl *Client) {
		if base == "" {
			return
		}
		cl.base = strings.TrimRight(base, "/")
		cl.resolved = true
	}
}

// WithRand sets the function used to pick a server from the pool.
// It must return a value in [0, n).
func WithRand(intn func(n int) int) Option {
	return func(cl *Client) {
		if intn != nil {
			cl.intn = intn
		}
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// NewClient creates a directory Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:         rwhttp.NewClient(),
		bootstrapURL: DefaultBootstrapURL,
		fallbackBase: DefaultFallbackBase,
		intn:         rand.IntN,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ResolveEndpoint returns the directory base URL, resolving it on first use.
//
// Resolution fetches the server pool and picks one server at random. On
// any failure, or an empty pool, the fallback base is used. The result is
// cached for the lifetime of the Client. A lookup abandoned because ctx
// was cancelled returns the fallback for that call only and is retried by
// the next query.
func (c *Client) ResolveEndpoint(ctx context.Context) string {
	c.resolveMu.Lock()
	defer c.resolveMu.Unlock()

	if c.resolved {
		return c.base
	}

	base, err := c.pickServer(ctx)
	if err != nil {
		if ctx.Err() != nil {
			c.logger.Debug().Err(err).Msg("endpoint resolution cancelled")
			return c.fallbackBase
		}
		c.logger.Warn().Err(err).Str("fallback", c.fallbackBase).Msg("failed to get random server, using fallback")
		base = c.fallbackBase
	}
	c.base = base
	c.resolved = true
	c.logger.Debug().Str("base", base).Msg("directory endpoint resolved")
	return c.base
}

func (c *Client) pickServer(ctx context.Context) (string, error) {
	var servers []dto.Server
	if err := c.http.GetJSON(ctx, c.bootstrapURL+"/json/servers", &servers); err != nil {
		return "", fmt.Errorf("fetch server list: %w", err)
	}
	if len(servers) == 0 {
		return "", errors.New("no servers available")
	}

	server := servers[c.intn(len(servers))]
	if server.Name == "" {
		return "", errors.New("server entry has no name")
	}
	return "https://" + server.Name + "/json", nil
}

// Search queries stations matching params.
//
// Only non-empty filters are sent. Each raw entry is normalised into a
// model.Station. Returns a *NetworkError if the request fails or the
// directory answers with a non-2xx status.
func (c *Client) Search(ctx context.Context, params model.SearchParams) ([]model.Station, error) {
	base := c.ResolveEndpoint(ctx)

	query := url.Values{}
	if params.Name != "" {
		query.Set("name", params.Name)
	}
	if params.Country != "" {
		query.Set("country", params.Country)
	}
	if params.Language != "" {
		query.Set("language", params.Language)
	}
	if params.Tag != "" {
		query.Set("tag", params.Tag)
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}

	endpoint := base + "/stations/search"
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var raw []dto.Station
	if err := c.http.GetJSON(ctx, endpoint, &raw); err != nil {
		nerr := newNetworkError("search", msgStations, err)
		c.logger.Error().Str("detail", nerr.Detail()).Msg("error fetching stations")
		return nil, nerr
	}

	stations := make([]model.Station, 0, len(raw))
	for _, r := range raw {
		stations = append(stations, normalizeStation(r))
	}
	return stations, nil
}

// PopularStations returns stations without filters.
func (c *Client) PopularStations(ctx context.Context, limit int) ([]model.Station, error) {
	return c.Search(ctx, model.SearchParams{Limit: defaultLimit(limit, DefaultStationLimit)})
}

// ByCountry returns stations broadcasting from the named country.
func (c *Client) ByCountry(ctx context.Context, country string, limit int) ([]model.Station, error) {
	return c.Search(ctx, model.SearchParams{Country: country, Limit: defaultLimit(limit, DefaultStationLimit)})
}

// ByTag returns stations carrying the tag.
func (c *Client) ByTag(ctx context.Context, tag string, limit int) ([]model.Station, error) {
	return c.Search(ctx, model.SearchParams{Tag: tag, Limit: defaultLimit(limit, DefaultStationLimit)})
}

// StationByID looks up a single station by its directory id.
func (c *Client) StationByID(ctx context.Context, id string) (model.Station, error) {
	if strings.TrimSpace(id) == "" {
		return model.Station{}, ErrStationNotFound
	}
	base := c.ResolveEndpoint(ctx)

	var raw []dto.Station
	if err := c.http.GetJSON(ctx, base+"/stations/byuuid/"+url.PathEscape(id), &raw); err != nil {
		nerr := newNetworkError("byuuid", msgStations, err)
		c.logger.Error().Str("detail", nerr.Detail()).Msg("error fetching station")
		return model.Station{}, nerr
	}
	if len(raw) == 0 {
		return model.Station{}, ErrStationNotFound
	}
	return normalizeStation(raw[0]), nil
}

// ListCountries returns every country known to the directory, unsorted.
func (c *Client) ListCountries(ctx context.Context) ([]model.Country, error) {
	base := c.ResolveEndpoint(ctx)

	var raw []dto.Country
	if err := c.http.GetJSON(ctx, base+"/countries", &raw); err != nil {
		nerr := newNetworkError("countries", msgCountries, err)
		c.logger.Error().Str("detail", nerr.Detail()).Msg("error fetching countries")
		return nil, nerr
	}

	countries := make([]model.Country, 0, len(raw))
	for _, r := range raw {
		countries = append(countries, model.Country{
			Name:         r.Name,
			Code:         r.ISO3166_1,
			StationCount: r.StationCount,
		})
	}
	return countries, nil
}

// ListGenres returns up to limit tags, unsorted.
func (c *Client) ListGenres(ctx context.Context, limit int) ([]model.Genre, error) {
	base := c.ResolveEndpoint(ctx)
	endpoint := fmt.Sprintf("%s/tags?limit=%d", base, defaultLimit(limit, DefaultGenreLimit))

	var raw []dto.Tag
	if err := c.http.GetJSON(ctx, endpoint, &raw); err != nil {
		nerr := newNetworkError("genres", msgGenres, err)
		c.logger.Error().Str("detail", nerr.Detail()).Msg("error fetching genres")
		return nil, nerr
	}

	genres := make([]model.Genre, 0, len(raw))
	for _, r := range raw {
		genres = append(genres, model.Genre{Name: r.Name, StationCount: r.StationCount})
	}
	return genres, nil
}

// normalizeStation maps a raw directory entry to a model.Station.
func normalizeStation(r dto.Station) model.Station {
	favicon := r.Favicon
	if favicon == "" {
		favicon = model.PlaceholderFavicon
	}

	return model.Station{
		ID:       r.StationUUID,
		Name:     r.Name,
		URL:      r.URLResolved,
		Favicon:  favicon,
		Country:  r.Country,
		Language: r.Language,
		Tags:     splitTags(r.Tags),
		Votes:    r.Votes,
		Codec:    r.Codec,
		Bitrate:  r.Bitrate,
	}
}

// splitTags splits on every comma. Empty segments are kept so the list
// mirrors the directory string; an empty string yields no tags.
func splitTags(tags string) []string {
	if tags == "" {
		return []string{}
	}
	return strings.Split(tags, ",")
}

func defaultLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}

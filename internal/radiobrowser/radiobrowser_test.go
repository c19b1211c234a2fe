package radiobrowser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	rwhttp "github.com/handiism/radiowave/internal/http"
	"github.com/handiism/radiowave/internal/model"
)

func TestResolveEndpoint_PicksFromPool(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path != "/json/servers" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`[{"name":"at1.api.radio-browser.info"},{"name":"nl1.api.radio-browser.info"}]`))
	}))
	defer server.Close()

	client := NewClient(
		WithBootstrapURL(server.URL),
		WithRand(func(n int) int { return n - 1 }),
	)

	ctx := context.Background()
	got := client.ResolveEndpoint(ctx)
	if want := "https://nl1.api.radio-browser.info/json"; got != want {
		t.Errorf("ResolveEndpoint() = %q, want %q", got, want)
	}

	// Resolution is cached for the lifetime of the client.
	client.ResolveEndpoint(ctx)
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("bootstrap requested %d times, want 1", n)
	}
}

func TestResolveEndpoint_Fallback(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "empty pool",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[]`))
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(WithBootstrapURL(server.URL), WithFallbackBase("https://fallback.example/json"))
			if got := client.ResolveEndpoint(context.Background()); got != "https://fallback.example/json" {
				t.Errorf("ResolveEndpoint() = %q, want fallback", got)
			}
		})
	}
}

func TestResolveEndpoint_CancelledNotCached(t *testing.T) {
	var hits int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			select {
			case <-release:
			case <-r.Context().Done():
			}
			return
		}
		w.Write([]byte(`[{"name":"de2.api.radio-browser.info"}]`))
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(WithBootstrapURL(server.URL), WithFallbackBase("https://fallback.example/json"))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for atomic.LoadInt32(&hits) == 0 {
			time.Sleep(5 * time.Millisecond)
		}
		cancel()
	}()
	if got := client.ResolveEndpoint(ctx); got != "https://fallback.example/json" {
		t.Errorf("ResolveEndpoint(cancelled) = %q, want fallback", got)
	}

	if got := client.ResolveEndpoint(context.Background()); got != "https://de2.api.radio-browser.info/json" {
		t.Errorf("ResolveEndpoint() after cancel = %q, want pool server", got)
	}
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Errorf("bootstrap requested %d times, want 2", n)
	}
}

func TestSearch_QueryAndNormalisation(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/stations/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"stationuuid":"s1","name":"Rock One","url_resolved":"http://stream.example/rock","favicon":"",
			 "country":"Germany","language":"german","tags":"rock,pop,","votes":42,"codec":"MP3","bitrate":128},
			{"stationuuid":"s2","name":"Silent","url_resolved":"http://stream.example/silent","favicon":"http://img.example/s2.png",
			 "country":"France","language":"french","tags":"","votes":0,"codec":"AAC","bitrate":0}
		]`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL + "/json"))
	stations, err := client.Search(context.Background(), model.SearchParams{Country: "Germany", Tag: "rock", Limit: 5})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	wantQuery := map[string][]string{"country": {"Germany"}, "tag": {"rock"}, "limit": {"5"}}
	if !reflect.DeepEqual(gotQuery, wantQuery) {
		t.Errorf("query = %v, want %v", gotQuery, wantQuery)
	}

	if len(stations) != 2 {
		t.Fatalf("got %d stations, want 2", len(stations))
	}

	first := stations[0]
	if first.ID != "s1" || first.URL != "http://stream.example/rock" {
		t.Errorf("unexpected first station: %+v", first)
	}
	if first.Favicon != model.PlaceholderFavicon {
		t.Errorf("Favicon = %q, want placeholder", first.Favicon)
	}
	if want := []string{"rock", "pop", ""}; !reflect.DeepEqual(first.Tags, want) {
		t.Errorf("Tags = %q, want %q", first.Tags, want)
	}
	if first.Votes != 42 || first.Bitrate != 128 || first.Codec != "MP3" {
		t.Errorf("unexpected numeric fields: %+v", first)
	}

	second := stations[1]
	if len(second.Tags) != 0 {
		t.Errorf("empty tag string should give no tags, got %q", second.Tags)
	}
	if second.Favicon != "http://img.example/s2.png" {
		t.Errorf("Favicon = %q", second.Favicon)
	}
}

func TestSearch_OmitsEmptyParams(t *testing.T) {
	var rawQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	if _, err := client.Search(context.Background(), model.SearchParams{}); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if rawQuery != "" {
		t.Errorf("query = %q, want empty", rawQuery)
	}
}

func TestSearch_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	stations, err := client.Search(context.Background(), model.SearchParams{Name: "jazz"})
	if stations != nil {
		t.Errorf("expected no stations, got %v", stations)
	}

	var nerr *NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected *NetworkError, got %T: %v", err, err)
	}
	if nerr.Error() != msgStations {
		t.Errorf("Error() = %q, want %q", nerr.Error(), msgStations)
	}
	if nerr.Status != http.StatusBadGateway {
		t.Errorf("Status = %d, want %d", nerr.Status, http.StatusBadGateway)
	}

	var se *rwhttp.StatusError
	if !errors.As(err, &se) {
		t.Error("NetworkError should unwrap to the status error")
	}
}

func TestSearch_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := server.URL
	server.Close()

	_, err := NewClient(WithBaseURL(base)).PopularStations(context.Background(), 8)

	var nerr *NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected *NetworkError, got %v", err)
	}
	if nerr.Status != 0 {
		t.Errorf("Status = %d, want 0 for transport failure", nerr.Status)
	}
}

func TestWrappers_PresetParams(t *testing.T) {
	tests := []struct {
		name string
		call func(c *Client) error
		want map[string][]string
	}{
		{
			name: "popular default limit",
			call: func(c *Client) error { _, err := c.PopularStations(context.Background(), 0); return err },
			want: map[string][]string{"limit": {"20"}},
		},
		{
			name: "by country",
			call: func(c *Client) error { _, err := c.ByCountry(context.Background(), "Japan", 50); return err },
			want: map[string][]string{"country": {"Japan"}, "limit": {"50"}},
		},
		{
			name: "by tag",
			call: func(c *Client) error { _, err := c.ByTag(context.Background(), "jazz", 4); return err },
			want: map[string][]string{"tag": {"jazz"}, "limit": {"4"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string][]string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.URL.Query()
				w.Write([]byte(`[]`))
			}))
			defer server.Close()

			if err := tt.call(NewClient(WithBaseURL(server.URL))); err != nil {
				t.Fatalf("call failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("query = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestListCountriesAndGenres(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/countries":
			w.Write([]byte(`[{"name":"Germany","iso_3166_1":"DE","stationcount":3000}]`))
		case "/tags":
			if r.URL.Query().Get("limit") != "30" {
				t.Errorf("limit = %q, want 30", r.URL.Query().Get("limit"))
			}
			w.Write([]byte(`[{"name":"pop","stationcount":5000}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	ctx := context.Background()

	countries, err := client.ListCountries(ctx)
	if err != nil {
		t.Fatalf("ListCountries failed: %v", err)
	}
	if want := []model.Country{{Name: "Germany", Code: "DE", StationCount: 3000}}; !reflect.DeepEqual(countries, want) {
		t.Errorf("countries = %+v, want %+v", countries, want)
	}

	genres, err := client.ListGenres(ctx, 0)
	if err != nil {
		t.Fatalf("ListGenres failed: %v", err)
	}
	if want := []model.Genre{{Name: "pop", StationCount: 5000}}; !reflect.DeepEqual(genres, want) {
		t.Errorf("genres = %+v, want %+v", genres, want)
	}
}

func TestListCountries_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewClient(WithBaseURL(server.URL)).ListCountries(context.Background())
	if err == nil || err.Error() != msgCountries {
		t.Errorf("err = %v, want %q", err, msgCountries)
	}
}

func TestSortAndFilter(t *testing.T) {
	countries := []model.Country{
		{Name: "japan", StationCount: 10},
		{Name: "Austria", StationCount: 5},
		{Name: "Nowhere", StationCount: 0},
	}
	sorted := SortCountries(countries)
	if len(sorted) != 2 || sorted[0].Name != "Austria" || sorted[1].Name != "japan" {
		t.Errorf("SortCountries = %+v", sorted)
	}
	if got := FilterCountries(sorted, "JAP"); len(got) != 1 || got[0].Name != "japan" {
		t.Errorf("FilterCountries = %+v", got)
	}

	genres := []model.Genre{{Name: "jazz", StationCount: 3}, {Name: "pop", StationCount: 9}, {Name: "none"}}
	sortedGenres := SortGenres(genres)
	if len(sortedGenres) != 2 || sortedGenres[0].Name != "pop" {
		t.Errorf("SortGenres = %+v", sortedGenres)
	}
	if got := FilterGenres(sortedGenres, "az"); len(got) != 1 || got[0].Name != "jazz" {
		t.Errorf("FilterGenres = %+v", got)
	}
}

func TestStationByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stations/byuuid/abc":
			w.Write([]byte(`[{"stationuuid":"abc","name":"Found","url_resolved":"http://s","tags":"a,b"}]`))
		case "/stations/byuuid/broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.Write([]byte(`[]`))
		}
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	ctx := context.Background()

	st, err := client.StationByID(ctx, "abc")
	if err != nil {
		t.Fatalf("StationByID: %v", err)
	}
	if st.ID != "abc" || st.Name != "Found" || !reflect.DeepEqual(st.Tags, []string{"a", "b"}) {
		t.Errorf("station = %+v", st)
	}

	if _, err := client.StationByID(ctx, "missing"); !errors.Is(err, ErrStationNotFound) {
		t.Errorf("missing error = %v, want ErrStationNotFound", err)
	}
	if _, err := client.StationByID(ctx, ""); !errors.Is(err, ErrStationNotFound) {
		t.Errorf("empty id error = %v, want ErrStationNotFound", err)
	}

	var nerr *NetworkError
	if _, err := client.StationByID(ctx, "broken"); !errors.As(err, &nerr) || nerr.Status != http.StatusBadGateway {
		t.Errorf("broken error = %v, want NetworkError with 502", err)
	}
}

package export

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/handiism/radiowave/internal/config"
	rwhttp "github.com/handiism/radiowave/internal/http"
	"github.com/handiism/radiowave/internal/model"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func testSettings() *config.Settings {
	s := config.DefaultSettings()
	s.DownloadMaxRetries = 3
	s.DownloadRetryCooldown = 0.1
	s.DownloadRetryExponent = 2
	s.MaxConcurrentFavicons = 2
	return s
}

type recorder struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (r *recorder) record(e ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) count(level ProgressLevel) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Level == level {
			n++
		}
	}
	return n
}

func TestManager_Export(t *testing.T) {
	icon := pngBytes(t, 64, 64)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok.png" {
			w.Header().Set("Content-Type", "image/png")
			w.Write(icon)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	stations := []model.Station{
		{ID: "960e57c5-0601-11e8", Name: "Groove Salad", URL: "http://stream.example/groove", Favicon: server.URL + "/ok.png"},
		{ID: "b2", Name: "Broken Icon", URL: "http://stream.example/broken", Favicon: server.URL + "/missing.png"},
		{ID: "c3", Name: "No Icon", URL: "http://stream.example/none", Favicon: model.PlaceholderFavicon},
	}

	var rec recorder
	m := NewManager(testSettings(), rwhttp.NewClient(), rec.record)
	var sleeps []time.Duration
	var sleepMu sync.Mutex
	m.sleep = func(ctx context.Context, d time.Duration) {
		sleepMu.Lock()
		sleeps = append(sleeps, d)
		sleepMu.Unlock()
	}

	dir := t.TempDir()
	res, err := m.Export(context.Background(), "My Favorites", stations, dir)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if res.PlaylistPath != filepath.Join(dir, "My Favorites.m3u") {
		t.Errorf("PlaylistPath = %q", res.PlaylistPath)
	}
	content, err := os.ReadFile(res.PlaylistPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	for _, st := range stations {
		if !strings.Contains(string(content), st.URL) {
			t.Errorf("playlist missing %s", st.URL)
		}
	}

	if res.Favicons != 1 || res.Failed != 1 {
		t.Errorf("Favicons = %d, Failed = %d, want 1 and 1", res.Favicons, res.Failed)
	}
	entries, _ := os.ReadDir(res.FaviconDir)
	if len(entries) != 1 || entries[0].Name() != "Groove Salad 960e57c5.jpg" {
		t.Errorf("favicon dir = %v", entries)
	}

	wantSleeps := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}
	if len(sleeps) != len(wantSleeps) || sleeps[0] != wantSleeps[0] || sleeps[1] != wantSleeps[1] {
		t.Errorf("backoff = %v, want %v", sleeps, wantSleeps)
	}

	if rec.count(LevelWarning) < 2 {
		t.Errorf("expected warnings for the failed favicon, got %d", rec.count(LevelWarning))
	}
	if done, total := m.Progress(); done != 1 || total != 2 {
		t.Errorf("Progress() = %d/%d, want 1/2", done, total)
	}
}

func TestManager_ExportWithoutFavicons(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	settings := testSettings()
	settings.ExportFavicons = false
	settings.PlaylistFormat = "pls"

	m := NewManager(settings, rwhttp.NewClient(), nil)
	res, err := m.Export(context.Background(), "Jazz", []model.Station{
		{ID: "a", Name: "A", URL: "http://a", Favicon: server.URL + "/a.png"},
	}, t.TempDir())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if filepath.Ext(res.PlaylistPath) != ".pls" {
		t.Errorf("PlaylistPath = %q, want .pls", res.PlaylistPath)
	}
	if res.FaviconDir != "" {
		t.Errorf("FaviconDir = %q, want none", res.FaviconDir)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Error("favicons fetched although disabled")
	}
}

func TestManager_FaviconRecovers(t *testing.T) {
	icon := pngBytes(t, 800, 400)
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write(icon)
	}))
	defer server.Close()

	m := NewManager(testSettings(), rwhttp.NewClient(), nil)
	m.sleep = func(context.Context, time.Duration) {}

	data, err := m.Favicon(context.Background(), model.Station{Name: "X", Favicon: server.URL})
	if err != nil {
		t.Fatalf("Favicon: %v", err)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("format = %s, want jpeg", format)
	}
	if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 150 {
		t.Errorf("size = %dx%d, want 300x150", b.Dx(), b.Dy())
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestManager_FaviconPlaceholder(t *testing.T) {
	m := NewManager(testSettings(), rwhttp.NewClient(), nil)
	if _, err := m.Favicon(context.Background(), model.Station{Favicon: model.PlaceholderFavicon}); err == nil {
		t.Error("Favicon() error = nil for placeholder")
	}
}

func TestFaviconFileName(t *testing.T) {
	tests := []struct {
		st   model.Station
		want string
	}{
		{model.Station{ID: "960e57c5-0601-11e8", Name: "Groove Salad"}, "Groove Salad 960e57c5.jpg"},
		{model.Station{ID: "ab", Name: "Rock/Pop"}, "Rock_Pop ab.jpg"},
		{model.Station{Name: "Plain"}, "Plain.jpg"},
	}

	for _, tt := range tests {
		if got := FaviconFileName(tt.st); got != tt.want {
			t.Errorf("FaviconFileName(%+v) = %q, want %q", tt.st, got, tt.want)
		}
	}
}

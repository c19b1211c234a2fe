package httpd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/handiism/radiowave/internal/model"
	"github.com/handiism/radiowave/internal/radio"
	"github.com/handiism/radiowave/internal/radiobrowser"
	"github.com/handiism/radiowave/internal/storage"
)

type fakeOutput struct {
	mu      sync.Mutex
	loaded  string
	playErr error
}

func (f *fakeOutput) Load(url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded = url
	return nil
}

func (f *fakeOutput) Play(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playErr
}

func (f *fakeOutput) url() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded
}

func (f *fakeOutput) Pause()              {}
func (f *fakeOutput) SetVolume(v float64) {}
func (f *fakeOutput) Close() error        { return nil }

type fakeDirectory map[string]model.Station

func (d fakeDirectory) StationByID(ctx context.Context, id string) (model.Station, error) {
	if id == "offline" {
		return model.Station{}, &radiobrowser.NetworkError{Op: "byuuid", Message: "Failed to fetch stations.", Err: errors.New("dial tcp")}
	}
	st, ok := d[id]
	if !ok {
		return model.Station{}, radiobrowser.ErrStationNotFound
	}
	return st, nil
}

func newTestServer(t *testing.T, out *fakeOutput) (*httptest.Server, *radio.Store) {
	t.Helper()
	store := radio.New(context.Background(), storage.NewMemoryStore(), out)
	t.Cleanup(func() { store.Close() })

	srv := &Server{
		Player: store,
		Directory: fakeDirectory{
			"a1": {ID: "a1", Name: "Groove Salad", URL: "http://stream.example/groove"},
			"b2": {ID: "b2", Name: "Drone Zone", URL: "http://stream.example/drone"},
		},
		Logger: zerolog.Nop(),
	}
	ts := httptest.NewServer(NewRouter(srv))
	t.Cleanup(ts.Close)
	return ts, store
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	return resp, []byte(buf.String())
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, &fakeOutput{})

	resp, body := do(t, http.MethodGet, ts.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(string(body), `"ok"`) {
		t.Errorf("body = %s", body)
	}
}

func TestPlayPauseToggle(t *testing.T) {
	out := &fakeOutput{}
	ts, store := newTestServer(t, out)

	resp, body := do(t, http.MethodPost, ts.URL+"/play/a1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("play status = %d: %s", resp.StatusCode, body)
	}
	var state radio.State
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.Current == nil || state.Current.ID != "a1" || !state.Playing {
		t.Errorf("state after play = %+v", state)
	}
	if got := out.url(); got != "http://stream.example/groove" {
		t.Errorf("output loaded %q", got)
	}

	do(t, http.MethodPost, ts.URL+"/pause", "")
	if store.State().Playing {
		t.Error("still playing after /pause")
	}

	do(t, http.MethodPost, ts.URL+"/toggle", "")
	if !store.State().Playing {
		t.Error("not playing after /toggle")
	}

	resp, body = do(t, http.MethodGet, ts.URL+"/recent", "")
	var recent []model.Station
	json.Unmarshal(body, &recent)
	if resp.StatusCode != http.StatusOK || len(recent) != 1 || recent[0].ID != "a1" {
		t.Errorf("recent = %s", body)
	}
}

func TestPlay_Errors(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		playErr error
		want    int
	}{
		{"unknown station", "zz", nil, http.StatusNotFound},
		{"directory offline", "offline", nil, http.StatusBadGateway},
		{"stream fails", "a1", errors.New("connection refused"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, store := newTestServer(t, &fakeOutput{playErr: tt.playErr})

			resp, body := do(t, http.MethodPost, ts.URL+"/play/"+tt.id, "")
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			var e errorResponse
			if err := json.Unmarshal(body, &e); err != nil || e.Error == "" {
				t.Errorf("body = %s, want an error message", body)
			}
			if store.State().Playing {
				t.Error("still playing after a failed play")
			}
		})
	}
}

func TestVolume(t *testing.T) {
	ts, store := newTestServer(t, &fakeOutput{})

	tests := []struct {
		body       string
		wantStatus int
		wantVolume float64
	}{
		{`{"volume": 0.3}`, http.StatusOK, 0.3},
		{`{"volume": 4}`, http.StatusOK, 1},
		{`{"volume": -1}`, http.StatusOK, 0},
		{`{}`, http.StatusBadRequest, 0},
		{`not json`, http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		resp, _ := do(t, http.MethodPut, ts.URL+"/volume", tt.body)
		if resp.StatusCode != tt.wantStatus {
			t.Errorf("PUT /volume %s: status = %d, want %d", tt.body, resp.StatusCode, tt.wantStatus)
			continue
		}
		if tt.wantStatus == http.StatusOK && store.State().Volume != tt.wantVolume {
			t.Errorf("PUT /volume %s: volume = %v, want %v", tt.body, store.State().Volume, tt.wantVolume)
		}
	}
}

func TestFavorites(t *testing.T) {
	ts, store := newTestServer(t, &fakeOutput{})

	for _, id := range []string{"a1", "b2", "a1"} {
		resp, body := do(t, http.MethodPut, ts.URL+"/favorites/"+id, "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("PUT /favorites/%s: %d %s", id, resp.StatusCode, body)
		}
	}

	_, body := do(t, http.MethodGet, ts.URL+"/favorites/", "")
	var favs []model.Station
	if err := json.Unmarshal(body, &favs); err != nil {
		t.Fatalf("decode favorites: %v", err)
	}
	if len(favs) != 2 || favs[0].ID != "a1" || favs[1].ID != "b2" {
		t.Errorf("favorites = %s", body)
	}

	do(t, http.MethodDelete, ts.URL+"/favorites/a1", "")
	if store.IsFavorite("a1") || !store.IsFavorite("b2") {
		t.Errorf("favorites after delete = %+v", store.State().Favorites)
	}

	resp, _ := do(t, http.MethodPut, ts.URL+"/favorites/missing", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("PUT unknown favorite: status = %d, want 404", resp.StatusCode)
	}
}

func TestListenAndServe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	addrCh := make(chan net.Addr, 1)
	errCh := make(chan error, 1)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("up"))
	})
	go func() {
		errCh <- ListenAndServe(ctx, "127.0.0.1:0", h, func(a net.Addr) { addrCh <- a })
	}()

	var addr net.Addr
	select {
	case addr = <-addrCh:
	case err := <-errCh:
		t.Fatalf("ListenAndServe: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, body := do(t, http.MethodGet, "http://"+addr.String()+"/", "")
	if resp.StatusCode != http.StatusOK || string(body) != "up" {
		t.Errorf("response = %d %s", resp.StatusCode, body)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("ListenAndServe after cancel = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/handiism/radiowave/internal/model"
	"github.com/handiism/radiowave/internal/storage"
)

type silentOutput struct{ closed bool }

func (o *silentOutput) Load(string) error          { return nil }
func (o *silentOutput) Play(context.Context) error { return nil }
func (o *silentOutput) Pause()                     {}
func (o *silentOutput) SetVolume(float64)          {}
func (o *silentOutput) Close() error {
	o.closed = true
	return nil
}

func TestBootstrap(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	content := "storage: file:" + filepath.Join(dir, "data") + "\n" +
		"default_volume: 0.4\n" +
		"log_file: " + filepath.Join(dir, "radiowave.log") + "\n"
	if err := os.WriteFile(cfg, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	env := filepath.Join(dir, ".env")
	if err := os.WriteFile(env, []byte("RADIOWAVE_USER_AGENT=radiowave-test/1.0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("RADIOWAVE_USER_AGENT") })

	out := &silentOutput{}
	ctx := context.Background()
	a, err := Bootstrap(ctx, Options{ConfigPath: cfg, EnvFile: env, Output: out})
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	if a.Settings.UserAgent != "radiowave-test/1.0" {
		t.Errorf("UserAgent = %q, want value from .env", a.Settings.UserAgent)
	}
	if v := a.Store.State().Volume; v != 0.4 {
		t.Errorf("Volume = %v, want 0.4", v)
	}

	a.Store.AddToFavorites(ctx, model.Station{ID: "a", Name: "A"})
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !out.closed {
		t.Error("output not closed")
	}

	kv, err := storage.NewFileStore(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := kv.Get(ctx, storage.KeyFavorites); err != nil {
		t.Errorf("favorites not persisted: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "radiowave.log")); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestBootstrap_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"bad storage scheme", `{"storage": "ftp:somewhere"}`},
		{"bad proxy", `{"storage": "memory:", "proxy": "::nope"}`},
		{"bad volume", `{"storage": "memory:", "default_volume": 3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := filepath.Join(dir, tt.name+".json")
			os.WriteFile(cfg, []byte(tt.content), 0644)

			a, err := Bootstrap(context.Background(), Options{ConfigPath: cfg, Console: true, Output: &silentOutput{}})
			if err == nil {
				a.Close()
				t.Fatal("Bootstrap() error = nil, want error")
			}
		})
	}
}

func TestBootstrap_Ephemeral(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.json")
	data := filepath.Join(dir, "data")
	content := `{"storage": "file:` + data + `", "log_file": "` + filepath.Join(dir, "radiowave.log") + `"}`
	if err := os.WriteFile(cfg, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	a, err := Bootstrap(ctx, Options{ConfigPath: cfg, Ephemeral: true, Output: &silentOutput{}})
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if a.Settings.Storage != "memory:" {
		t.Errorf("Storage = %q, want memory:", a.Settings.Storage)
	}
	a.Store.AddToFavorites(ctx, model.Station{ID: "a", Name: "A"})
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := os.Stat(data); !os.IsNotExist(err) {
		t.Errorf("data dir exists after ephemeral run: %v", err)
	}
}

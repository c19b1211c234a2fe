package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestClient_GetJSON(t *testing.T) {
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name":"de1.api.radio-browser.info"}]`))
	}))
	defer server.Close()

	client := NewClient(WithUserAgent("test-agent"))

	var servers []struct {
		Name string `json:"name"`
	}
	if err := client.GetJSON(context.Background(), server.URL, &servers); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}

	if len(servers) != 1 || servers[0].Name != "de1.api.radio-browser.info" {
		t.Errorf("unexpected servers: %+v", servers)
	}
	if gotUA != "test-agent" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "test-agent")
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, want application/json", gotAccept)
	}
}

func TestClient_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient()
	_, err := client.Get(context.Background(), server.URL)

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if se.Code != http.StatusServiceUnavailable {
		t.Errorf("Code = %d, want %d", se.Code, http.StatusServiceUnavailable)
	}
}

func TestClient_GetJSON_Malformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	var v []string
	if err := NewClient().GetJSON(context.Background(), server.URL, &v); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestClient_Open(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3"))
	}))
	defer server.Close()

	body, contentType, err := NewClient().Open(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer body.Close()

	if contentType != "audio/mpeg" {
		t.Errorf("Content-Type = %q, want audio/mpeg", contentType)
	}
	data, _ := io.ReadAll(body)
	if string(data) != "ID3" {
		t.Errorf("body = %q, want %q", data, "ID3")
	}
}

func TestClient_DownloadFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("favicon-bytes"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "icon.png")

	var lastWritten int64
	err := NewClient().DownloadFile(context.Background(), server.URL, dest, func(written, total int64) {
		lastWritten = written
	})
	if err != nil {
		t.Fatalf("DownloadFile failed: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(data) != "favicon-bytes" {
		t.Errorf("file content = %q", data)
	}
	if lastWritten != int64(len("favicon-bytes")) {
		t.Errorf("progress written = %d, want %d", lastWritten, len("favicon-bytes"))
	}
}

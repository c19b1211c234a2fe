package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RADIOWAVE_"

// Settings holds all configuration options.
type Settings struct {
	// Storage
	Storage string `json:"storage" yaml:"storage"` // file:<dir>, sqlite:<path> or memory:

	// Directory settings
	BootstrapURL   string  `json:"bootstrap_url" yaml:"bootstrap_url"`
	FallbackBase   string  `json:"fallback_base" yaml:"fallback_base"`
	UserAgent      string  `json:"user_agent" yaml:"user_agent"`
	RequestTimeout float64 `json:"request_timeout" yaml:"request_timeout"` // seconds, 0 for none
	Proxy          string  `json:"proxy" yaml:"proxy"`                     // system, none, or a proxy URL

	// Playback
	DefaultVolume float64 `json:"default_volume" yaml:"default_volume"`

	// Logging
	LogLevel string `json:"log_level" yaml:"log_level"`
	LogFile  string `json:"log_file" yaml:"log_file"`

	// Export settings
	ExportPath            string  `json:"export_path" yaml:"export_path"`
	PlaylistFormat        string  `json:"playlist_format" yaml:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended           bool    `json:"m3u_extended" yaml:"m3u_extended"`
	ExportFavicons        bool    `json:"export_favicons" yaml:"export_favicons"`
	FaviconMaxSize        int     `json:"favicon_max_size" yaml:"favicon_max_size"`
	MaxConcurrentFavicons int     `json:"max_concurrent_favicons" yaml:"max_concurrent_favicons"`
	DownloadMaxRetries    int     `json:"download_max_retries" yaml:"download_max_retries"`
	DownloadRetryCooldown float64 `json:"download_retry_cooldown" yaml:"download_retry_cooldown"`
	DownloadRetryExponent float64 `json:"download_retry_exponent" yaml:"download_retry_exponent"`

	// Recording settings
	RecordingsPath    string `json:"recordings_path" yaml:"recordings_path"`
	ModifyTags        bool   `json:"modify_tags" yaml:"modify_tags"`
	SaveFaviconInTags bool   `json:"save_favicon_in_tags" yaml:"save_favicon_in_tags"`

	// Control API
	ListenAddress string `json:"listen_address" yaml:"listen_address"`
}

// Dir returns the per-user configuration directory for radiowave.
func Dir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "radiowave")
}

// DefaultPath returns the default settings file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.json")
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		Storage: "file:" + filepath.Join(Dir(), "data"),

		BootstrapURL:   "https://all.api.radio-browser.info",
		FallbackBase:   "https://de1.api.radio-browser.info/json",
		UserAgent:      "radiowave/1.0",
		RequestTimeout: 0,
		Proxy:          "system",

		DefaultVolume: 0.8,

		LogLevel: "info",
		LogFile:  filepath.Join(Dir(), "radiowave.log"),

		ExportPath:            filepath.Join(homeDir, "Music", "Radio"),
		PlaylistFormat:        "m3u",
		M3UExtended:           true,
		ExportFavicons:        true,
		FaviconMaxSize:        300,
		MaxConcurrentFavicons: 4,
		DownloadMaxRetries:    3,
		DownloadRetryCooldown: 0.2,
		DownloadRetryExponent: 4.0,

		RecordingsPath:    filepath.Join(homeDir, "Music", "Radio", "Recordings"),
		ModifyTags:        true,
		SaveFaviconInTags: true,

		ListenAddress: "127.0.0.1:8927",
	}
}

// isYAML reports whether path should be read and written as YAML.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Load reads settings from a JSON or YAML file, chosen by extension.
//
// A missing file yields DefaultSettings. Fields absent from the file keep
// their default values.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if isYAML(path) {
		err = yaml.Unmarshal(data, settings)
	} else {
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return settings, settings.Validate()
}

// Save writes settings to a JSON or YAML file, chosen by extension.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate rejects values no component can work with.
func (s *Settings) Validate() error {
	switch {
	case s.DefaultVolume < 0 || s.DefaultVolume > 1:
		return fmt.Errorf("default_volume %v outside [0, 1]", s.DefaultVolume)
	case s.RequestTimeout < 0:
		return fmt.Errorf("request_timeout %v is negative", s.RequestTimeout)
	case s.MaxConcurrentFavicons < 1:
		return fmt.Errorf("max_concurrent_favicons must be at least 1")
	case s.DownloadMaxRetries < 1:
		return fmt.Errorf("download_max_retries must be at least 1")
	case s.Storage == "":
		return fmt.Errorf("storage must not be empty")
	}
	return nil
}

// Timeout returns RequestTimeout as a duration.
func (s *Settings) Timeout() time.Duration {
	return time.Duration(s.RequestTimeout * float64(time.Second))
}

// RetryDelay returns the backoff before retry number tries (0-based):
// cooldown * exponent^tries seconds.
func (s *Settings) RetryDelay(tries int) time.Duration {
	delay := s.DownloadRetryCooldown
	for i := 0; i < tries; i++ {
		delay *= s.DownloadRetryExponent
	}
	return time.Duration(delay * float64(time.Second))
}

// HTTPClient builds the *http.Client described by Proxy and
// RequestTimeout.
func (s *Settings) HTTPClient() (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	switch p := strings.TrimSpace(s.Proxy); strings.ToLower(p) {
	case "", "system":
		transport.Proxy = http.ProxyFromEnvironment
	case "none":
		transport.Proxy = nil
	default:
		proxyURL, err := url.Parse(p)
		if err != nil || proxyURL.Host == "" {
			return nil, fmt.Errorf("invalid proxy %q", p)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &http.Client{Transport: transport, Timeout: s.Timeout()}, nil
}

// ApplyEnv overrides settings from RADIOWAVE_* variables looked up with
// getenv. Unset or empty variables leave the setting unchanged.
//
// Example:
//
//	godotenv.Load() // optional .env next to the binary
//	err := settings.ApplyEnv(os.Getenv)
func (s *Settings) ApplyEnv(getenv func(string) string) error {
	strs := map[string]*string{
		"STORAGE":         &s.Storage,
		"BOOTSTRAP_URL":   &s.BootstrapURL,
		"FALLBACK_BASE":   &s.FallbackBase,
		"USER_AGENT":      &s.UserAgent,
		"PROXY":           &s.Proxy,
		"LOG_LEVEL":       &s.LogLevel,
		"LOG_FILE":        &s.LogFile,
		"EXPORT_PATH":     &s.ExportPath,
		"PLAYLIST_FORMAT": &s.PlaylistFormat,
		"RECORDINGS_PATH": &s.RecordingsPath,
		"LISTEN":          &s.ListenAddress,
	}
	for name, dst := range strs {
		if v := getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}

	floats := map[string]*float64{
		"TIMEOUT": &s.RequestTimeout,
		"VOLUME":  &s.DefaultVolume,
	}
	for name, dst := range floats {
		v := getenv(EnvPrefix + name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = f
	}

	if v := getenv(EnvPrefix + "EXPORT_FAVICONS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sEXPORT_FAVICONS: %w", EnvPrefix, err)
		}
		s.ExportFavicons = b
	}

	return s.Validate()
}

// Package config provides configuration management for radiowave.
//
// This package handles:
//   - Loading and saving settings from JSON or YAML files
//   - Default configuration values
//   - RADIOWAVE_* environment overrides
//   - Building the HTTP client (proxy, timeout) other packages share
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Stores favorites under the user config dir
//	// Resolves a directory server from all.api.radio-browser.info
//	// Starts playback at 80% volume
//
// # Loading from File
//
// The format follows the file extension: .yaml and .yml are YAML, anything
// else is JSON.
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    // Uses defaults if file doesn't exist; errors on malformed files
//	}
//
// # Environment
//
// After loading, main applies environment overrides, typically after
// loading an optional .env file:
//
//	godotenv.Load()
//	err := settings.ApplyEnv(os.Getenv)
//
// # Saving Settings
//
//	settings.DefaultVolume = 0.5
//	err := settings.Save("/path/to/config.yaml")
package config

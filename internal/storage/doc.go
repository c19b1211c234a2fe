// Package storage provides durable key-value storage for small JSON
// records such as the favorites and recently played lists.
//
// # Backends
//
//   - FileStore: one JSON file per key in a directory, written atomically
//   - SQLiteStore: a single kv table in a SQLite database
//   - MemoryStore: process-local map, for tests and ephemeral sessions
//
// Use Open to pick a backend from a location string:
//
//	kv, err := storage.Open("sqlite:/home/me/.local/share/radiowave/radiowave.db")
//	kv, err := storage.Open("file:/home/me/.local/share/radiowave")
//	kv, err := storage.Open("memory:")
//
// # Keys
//
// Each record is stored under its own key and written independently, so a
// failed write of one record never affects another.
package storage

package ioutils

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// MaxFileNameLength bounds sanitized names, leaving room for a timestamp
// and an extension within common 255-byte filesystem limits.
const MaxFileNameLength = 200

var (
	invalidChars  = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots  = regexp.MustCompile(`\.+$`)
	repeatedSpace = regexp.MustCompile(`\s+`)
)

// WriteFile atomically replaces path with data.
//
// The data is written to a temporary file in the same directory, which is
// then renamed over path, so readers never observe a partial write and a
// crash mid-write leaves the previous content in place. ctx is checked
// before the rename.
//
// Example:
//
//	err := WriteFile(ctx, "/home/me/.config/radiowave/data/radioFavorites.json", data)
func WriteFile(ctx context.Context, path string, data []byte) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, base+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// SanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Leading and trailing whitespace → removed
//   - Names longer than MaxFileNameLength bytes → truncated on a rune boundary
//
// An empty result becomes "station".
//
// Example:
//
//	SanitizeFileName("Rock: 80s/90s")   // Returns "Rock_ 80s_90s"
//	SanitizeFileName("Radio...")        // Returns "Radio"
//	SanitizeFileName("  ")              // Returns "station"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = repeatedSpace.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)

	if len(name) > MaxFileNameLength {
		cut := MaxFileNameLength
		for cut > 0 && !isRuneStart(name[cut]) {
			cut--
		}
		name = strings.TrimSpace(name[:cut])
	}

	name = trailingDots.ReplaceAllString(name, "")
	name = strings.TrimRight(name, " ")

	if name == "" {
		return "station"
	}
	return name
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// RecordingFileName builds "<station> <timestamp>.<ext>" for a capture
// that started at t.
//
// Example:
//
//	RecordingFileName("Groove Salad", t, "mp3") // "Groove Salad 2024-03-09 213000.mp3"
func RecordingFileName(station string, t time.Time, ext string) string {
	return SanitizeFileName(station) + " " + t.Format("2006-01-02 150405") + "." + ext
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Atomic file writes
//   - Filename sanitization for cross-platform compatibility
//   - Directory creation
//   - Favicon resizing and conversion to JPEG
//
// # File Operations
//
//	// Replace a file without exposing partial writes
//	err := ioutils.WriteFile(ctx, "/path/to/radioFavorites.json", data)
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/path/to/recordings")
//
// # Filename Sanitization
//
// Use SanitizeFileName to remove invalid characters from filenames:
//
//	safe := ioutils.SanitizeFileName("Rock: 80s/90s") // Returns "Rock_ 80s_90s"
//	name := ioutils.RecordingFileName("Groove Salad", time.Now(), "mp3")
//
// # Image Processing
//
// The ImageService normalizes station favicons (PNG, JPEG, GIF, BMP, WebP):
//
//	svc := ioutils.NewImageService()
//	thumb, _ := svc.Thumbnail(ctx, faviconData, ioutils.DefaultFaviconSize)
package ioutils

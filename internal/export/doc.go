// Package export writes station lists, typically the favorites, to
// playlist files that other players can open.
//
// # Manager
//
// The Manager coordinates an export:
//
//  1. Write the playlist (M3U, PLS, WPL or ZPL) atomically
//  2. Download station favicons concurrently
//  3. Scale them and convert them to JPEG
//
// # Basic Usage
//
//	manager := export.NewManager(settings, client, func(event export.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	res, err := manager.Export(ctx, "Favorites", state.Favorites, settings.ExportPath)
//	if err != nil {
//	    return err
//	}
//	fmt.Println("wrote", res.PlaylistPath)
//
// # Concurrency
//
// At most settings.MaxConcurrentFavicons favicons are fetched at once.
//
// # Retry Logic
//
// Failed favicon downloads are retried with exponential backoff: the n-th
// retry waits DownloadRetryCooldown * DownloadRetryExponent^n seconds, up to
// DownloadMaxRetries attempts in total. A favicon that still fails is
// reported as a warning and skipped.
package export

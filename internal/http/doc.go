// Package http provides the HTTP client used for directory queries,
// audio streams and favicon downloads.
//
// The Client in this package handles:
//   - User-Agent and Accept headers sent with every request
//   - JSON decoding of directory responses
//   - Opening long-lived audio streams
//   - File downloads with progress tracking
//   - Optional request timeouts
//
// # Basic Usage
//
//	client := http.NewClient(http.WithUserAgent("radiowave/1.0"))
//
//	// Decode a JSON array
//	var servers []dto.Server
//	err := client.GetJSON(ctx, "https://all.api.radio-browser.info/json/servers", &servers)
//
//	// Open a stream
//	body, contentType, err := client.Open(ctx, station.URL)
//
// # Errors
//
// Non-2xx responses are reported as *StatusError so callers can tell a
// transport failure from a rejected request:
//
//	var se *http.StatusError
//	if errors.As(err, &se) {
//	    fmt.Println(se.Code)
//	}
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http

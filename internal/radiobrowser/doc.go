// Package radiobrowser is a read-only client for the radio-browser.info
// station directory.
//
// The package handles two concerns:
//
//  1. Resolving an API host from the directory's server pool
//  2. Translating searches into directory queries and normalising the
//     responses into model records
//
// # Endpoint Resolution
//
// The first query on a Client fetches the server pool from the bootstrap
// host, picks one server uniformly at random and caches the base URL for
// the lifetime of the Client. If the pool cannot be fetched or is empty,
// a fixed fallback host is used instead. The base URL is never
// re-resolved; create a new Client to pick another server. A lookup cut
// short by a cancelled context is not cached.
//
// # Searching
//
//	client := radiobrowser.NewClient()
//	stations, err := client.Search(ctx, model.SearchParams{Tag: "jazz", Limit: 20})
//	if err != nil {
//	    var nerr *radiobrowser.NetworkError
//	    if errors.As(err, &nerr) {
//	        fmt.Println(nerr.Message) // safe to show to the user
//	    }
//	}
//
// No query is retried and no result is cached: every call goes to the
// directory exactly once.
//
// # Directory Data Format
//
// The directory answers with JSON arrays. Station tags arrive as a single
// comma-separated string and are split on every comma, so "rock,pop,"
// becomes ["rock", "pop", ""]. Missing favicons are replaced with
// model.PlaceholderFavicon.
package radiobrowser

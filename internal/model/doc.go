// Package model defines the core data structures used throughout
// the radiowave application.
//
// # Station
//
// Station is a single internet radio stream from the directory:
//
//	st := model.Station{ID: "9617a958-...", Name: "Radio Paradise", URL: streamURL}
//	fmt.Println(st.TagList()) // "rock, eclectic"
//
// Two stations with the same ID are the same station, regardless of any
// other field drifting between fetches. Use SameStation to compare them.
//
// # Country and Genre
//
// Country and Genre are directory listings used to browse stations:
//
//	for _, c := range countries {
//	    fmt.Printf("%s (%d stations)\n", c.Name, c.StationCount)
//	}
//
// # Search Parameters
//
// SearchParams holds optional directory filters. Zero values are omitted
// from the query sent to the directory:
//
//	params := model.SearchParams{Tag: "jazz", Limit: 20}
package model

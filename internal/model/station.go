package model

import (
	"fmt"
	"strings"
)

// PlaceholderFavicon is used when the directory has no favicon for a station.
const PlaceholderFavicon = "/placeholder-station.png"

// Station represents an internet radio station from the directory.
//
// Station is an immutable value once fetched. It is persisted as part of
// the favorites and recently played lists, so its JSON field names are
// stable across releases.
//
// Example:
//
//	st := Station{
//	    ID:      "960e57c5-0601-11e8-ae97-52543be04c81",
//	    Name:    "SomaFM Groove Salad",
//	    URL:     "https://ice2.somafm.com/groovesalad-128-mp3",
//	    Tags:    []string{"ambient", "chillout"},
//	    Codec:   "MP3",
//	    Bitrate: 128,
//	}
type Station struct {
	// ID is the opaque, directory-assigned unique identifier.
	ID string `json:"id"`

	// Name is the display name of the station.
	Name string `json:"name"`

	// URL is the resolved, playable stream URL.
	URL string `json:"url"`

	// Favicon is the station image URL, or PlaceholderFavicon.
	Favicon string `json:"favicon"`

	// Country is the country name the station broadcasts from.
	Country string `json:"country"`

	// Language is a free-text language label.
	Language string `json:"language"`

	// Tags is the ordered list of free-text labels.
	Tags []string `json:"tags"`

	// Votes is the directory popularity score.
	Votes int `json:"votes"`

	// Codec is the stream codec, e.g. "MP3" or "AAC".
	Codec string `json:"codec"`

	// Bitrate is the stream bitrate in kbps. Zero means unknown.
	Bitrate int `json:"bitrate"`
}

// SameStation reports whether two stations share an identity.
func SameStation(a, b Station) bool {
	return a.ID == b.ID
}

// HasFavicon returns true if the station has its own favicon.
func (s Station) HasFavicon() bool {
	return s.Favicon != "" && s.Favicon != PlaceholderFavicon
}

// TagList joins the non-empty tags for display.
//
// Example:
//
//	Station{Tags: []string{"rock", "pop", ""}}.TagList() // "rock, pop"
func (s Station) TagList() string {
	tags := make([]string, 0, len(s.Tags))
	for _, tag := range s.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return strings.Join(tags, ", ")
}

// Quality returns a short "MP3 128kbps" style description.
// Missing parts are left out.
func (s Station) Quality() string {
	switch {
	case s.Codec != "" && s.Bitrate > 0:
		return fmt.Sprintf("%s %dkbps", s.Codec, s.Bitrate)
	case s.Bitrate > 0:
		return fmt.Sprintf("%dkbps", s.Bitrate)
	default:
		return s.Codec
	}
}

// Matches reports whether the station name, country or any tag contains
// term, ignoring case. An empty term matches every station.
func (s Station) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(s.Name), term) ||
		strings.Contains(strings.ToLower(s.Country), term) {
		return true
	}
	for _, tag := range s.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// IndexOf returns the position of the station with the given id, or -1.
func IndexOf(stations []Station, id string) int {
	for i, st := range stations {
		if st.ID == id {
			return i
		}
	}
	return -1
}

// FilterStations returns the stations matching term, in order.
func FilterStations(stations []Station, term string) []Station {
	out := make([]Station, 0, len(stations))
	for _, st := range stations {
		if st.Matches(term) {
			out = append(out, st)
		}
	}
	return out
}

// Country is a directory country listing.
type Country struct {
	// Name is the display name and the lookup key for searches.
	Name string `json:"name"`

	// Code is the ISO 3166-1 identifier.
	Code string `json:"code"`

	// StationCount is the number of stations in the directory.
	StationCount int `json:"stationCount"`
}

// Genre is a directory tag listing.
type Genre struct {
	// Name is the tag and the lookup key for searches.
	Name string `json:"name"`

	// StationCount is the number of stations carrying the tag.
	StationCount int `json:"stationCount"`
}

// SearchParams holds optional directory search filters.
//
// Empty strings and a zero Limit are left out of the request.
type SearchParams struct {
	Name     string
	Country  string
	Language string
	Tag      string
	Limit    int
}

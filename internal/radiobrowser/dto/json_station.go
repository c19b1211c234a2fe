// Package dto holds the raw JSON shapes returned by the radio-browser API.
package dto

// Server is an entry of the /json/servers pool.
type Server struct {
	Name string `json:"name"`
	IP   string `json:"ip"`
}

// Station is a raw entry of /stations/search.
type Station struct {
	StationUUID string `json:"stationuuid"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	URLResolved string `json:"url_resolved"`
	Homepage    string `json:"homepage"`
	Favicon     string `json:"favicon"`
	Tags        string `json:"tags"`
	Country     string `json:"country"`
	CountryCode string `json:"countrycode"`
	Language    string `json:"language"`
	Votes       int    `json:"votes"`
	Codec       string `json:"codec"`
	Bitrate     int    `json:"bitrate"`
	LastCheckOK int    `json:"lastcheckok"`
}

// Country is a raw entry of /countries.
type Country struct {
	Name         string `json:"name"`
	ISO3166_1    string `json:"iso_3166_1"`
	StationCount int    `json:"stationcount"`
}

// Tag is a raw entry of /tags.
type Tag struct {
	Name         string `json:"name"`
	StationCount int    `json:"stationcount"`
}

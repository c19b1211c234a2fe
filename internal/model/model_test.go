package model

import "testing"

func TestStation_TagList(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want string
	}{
		{"empty", nil, ""},
		{"single", []string{"jazz"}, "jazz"},
		{"trailing empty", []string{"rock", "pop", ""}, "rock, pop"},
		{"whitespace", []string{" news ", "talk"}, "news, talk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Station{Tags: tt.tags}.TagList()
			if got != tt.want {
				t.Errorf("TagList() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStation_Quality(t *testing.T) {
	tests := []struct {
		codec   string
		bitrate int
		want    string
	}{
		{"MP3", 128, "MP3 128kbps"},
		{"", 64, "64kbps"},
		{"AAC", 0, "AAC"},
		{"", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := Station{Codec: tt.codec, Bitrate: tt.bitrate}.Quality()
			if got != tt.want {
				t.Errorf("Quality() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStation_Matches(t *testing.T) {
	st := Station{Name: "Groove Salad", Country: "United States", Tags: []string{"Ambient", "chillout"}}

	tests := []struct {
		term string
		want bool
	}{
		{"", true},
		{"groove", true},
		{"STATES", true},
		{"ambient", true},
		{"metal", false},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			if got := st.Matches(tt.term); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.term, got, tt.want)
			}
		})
	}
}

func TestStation_HasFavicon(t *testing.T) {
	if (Station{Favicon: PlaceholderFavicon}).HasFavicon() {
		t.Error("placeholder favicon should not count as a favicon")
	}
	if (Station{}).HasFavicon() {
		t.Error("empty favicon should not count as a favicon")
	}
	if !(Station{Favicon: "https://example.com/icon.png"}).HasFavicon() {
		t.Error("HasFavicon() should be true for a real favicon")
	}
}

func TestIndexOfAndSameStation(t *testing.T) {
	stations := []Station{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}

	if got := IndexOf(stations, "b"); got != 1 {
		t.Errorf("IndexOf(b) = %d, want 1", got)
	}
	if got := IndexOf(stations, "z"); got != -1 {
		t.Errorf("IndexOf(z) = %d, want -1", got)
	}
	if !SameStation(Station{ID: "a", Name: "old"}, Station{ID: "a", Name: "new"}) {
		t.Error("stations with the same ID should be the same station")
	}
}

func TestFilterStations(t *testing.T) {
	stations := []Station{
		{ID: "1", Name: "Jazz FM"},
		{ID: "2", Name: "Rock Radio", Tags: []string{"rock"}},
		{ID: "3", Name: "Smooth", Tags: []string{"jazz"}},
	}

	got := FilterStations(stations, "jazz")
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Errorf("FilterStations(jazz) = %+v, want stations 1 and 3", got)
	}
}

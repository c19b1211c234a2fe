package radio

import "github.com/handiism/radiowave/internal/model"

// MaxRecentlyPlayed bounds the recently played list.
const MaxRecentlyPlayed = 10

// pushRecent puts st at the front of recent, dropping any earlier entry
// with the same id and truncating to MaxRecentlyPlayed.
func pushRecent(recent []model.Station, st model.Station) []model.Station {
	out := make([]model.Station, 0, MaxRecentlyPlayed)
	out = append(out, st)
	for _, r := range recent {
		if len(out) == MaxRecentlyPlayed {
			break
		}
		if r.ID != st.ID {
			out = append(out, r)
		}
	}
	return out
}

// appendFavorite appends st unless its id is already present.
func appendFavorite(favorites []model.Station, st model.Station) ([]model.Station, bool) {
	if model.IndexOf(favorites, st.ID) >= 0 {
		return favorites, false
	}
	out := make([]model.Station, len(favorites), len(favorites)+1)
	copy(out, favorites)
	return append(out, st), true
}

// removeByID drops every entry with the given id.
func removeByID(stations []model.Station, id string) ([]model.Station, bool) {
	out := make([]model.Station, 0, len(stations))
	for _, st := range stations {
		if st.ID != id {
			out = append(out, st)
		}
	}
	return out, len(out) != len(stations)
}

// dedupe keeps the first occurrence of each id, up to limit entries.
// A limit <= 0 means no bound.
func dedupe(stations []model.Station, limit int) []model.Station {
	seen := make(map[string]struct{}, len(stations))
	out := make([]model.Station, 0, len(stations))
	for _, st := range stations {
		if limit > 0 && len(out) == limit {
			break
		}
		if _, ok := seen[st.ID]; ok {
			continue
		}
		seen[st.ID] = struct{}{}
		out = append(out, st)
	}
	return out
}

func cloneStations(stations []model.Station) []model.Station {
	out := make([]model.Station, len(stations))
	for i, st := range stations {
		out[i] = cloneStation(st)
	}
	return out
}

func cloneStation(st model.Station) model.Station {
	if st.Tags != nil {
		tags := make([]string, len(st.Tags))
		copy(tags, st.Tags)
		st.Tags = tags
	}
	return st
}

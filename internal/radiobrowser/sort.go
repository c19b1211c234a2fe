package radiobrowser

import (
	"cmp"
	"slices"
	"strings"

	"github.com/handiism/radiowave/internal/model"
)

// SortCountries drops countries without stations and sorts the rest by
// name, case-insensitively. The input slice is not modified.
func SortCountries(countries []model.Country) []model.Country {
	out := make([]model.Country, 0, len(countries))
	for _, c := range countries {
		if c.StationCount > 0 {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Country) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out
}

// SortGenres drops genres without stations and sorts the rest by station
// count, highest first. The input slice is not modified.
func SortGenres(genres []model.Genre) []model.Genre {
	out := make([]model.Genre, 0, len(genres))
	for _, g := range genres {
		if g.StationCount > 0 {
			out = append(out, g)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Genre) int {
		return cmp.Compare(b.StationCount, a.StationCount)
	})
	return out
}

// FilterCountries keeps countries whose name contains term, ignoring case.
func FilterCountries(countries []model.Country, term string) []model.Country {
	term = strings.ToLower(term)
	out := make([]model.Country, 0, len(countries))
	for _, c := range countries {
		if strings.Contains(strings.ToLower(c.Name), term) {
			out = append(out, c)
		}
	}
	return out
}

// FilterGenres keeps genres whose name contains term, ignoring case.
func FilterGenres(genres []model.Genre, term string) []model.Genre {
	term = strings.ToLower(term)
	out := make([]model.Genre, 0, len(genres))
	for _, g := range genres {
		if strings.Contains(strings.ToLower(g.Name), term) {
			out = append(out, g)
		}
	}
	return out
}

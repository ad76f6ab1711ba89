package choropleth

import (
	"sort"
	"strings"

	"covidtracker.io/internal/models"
)

// geoToAPI maps geography names of the world atlas to the names used by
// disease.sh. An empty value excludes the geography from the map.
var geoToAPI = map[string]string{
	"United States of America": "USA",
	"Russian Federation":       "Russia",
	"Vietnam":                  "Viet Nam",
	"Syria":                    "Syrian Arab Republic",
	"Ivory Coast":              "Côte d'Ivoire",
	"Republic of the Congo":    "Congo",
	"South Korea":              "S. Korea",
	"North Korea":              "N. Korea",
	"Dominican Rep.":           "Dominican Republic",
	"United Kingdom":           "UK",
	"Eq. Guinea":               "Equatorial Guinea",
	"e.Swatini":                "Eswatini",
	"Bosnia and Herz.":         "Bosnia",
	"United Arab Emirates":     "UAE",
	"Laos":                     "Lao People's Democratic Republic",
	"Central African Rep.":     "Central African Republic",
	"S. Sudan":                 "South Sudan",
	"Libya":                    "Libyan Arab Jamahiriya",
	"Somaliland":               "Somalia",
	"W. Sahara":                "Western Sahara",
	"Antarctica":               "",
}

// NormalizeName lowercases s and drops everything outside a-z.
func NormalizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// APIName translates a geography name to the API name. ok is false for
// geographies that are left off the map.
func APIName(geoName string) (name string, ok bool) {
	mapped, known := geoToAPI[geoName]
	if !known {
		return geoName, true
	}
	return mapped, mapped != ""
}

// SeverityEntry is the fill of one country on the map
type SeverityEntry struct {
	Country        string `json:"country"`
	NormalizedName string `json:"normalizedName"`
	Cases          int64  `json:"cases"`
	Color          string `json:"color"`
}

// Severity colours every country with scale, ordered by normalized name.
// When two rows share a normalized name the first one is kept.
func Severity(countries []models.CountryTotals, scale Scale) ([]SeverityEntry, error) {
	if err := scale.Validate(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(countries))
	entries := make([]SeverityEntry, 0, len(countries))
	for _, c := range countries {
		normalized := NormalizeName(c.Country)
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}

		color, err := scale.Color(float64(c.Cases))
		if err != nil {
			return nil, err
		}
		entries = append(entries, SeverityEntry{
			Country:        c.Country,
			NormalizedName: normalized,
			Cases:          c.Cases,
			Color:          color,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].NormalizedName < entries[j].NormalizedName
	})
	return entries, nil
}

// Lookup finds the entry for a geography name, applying the alias table first
func Lookup(entries []SeverityEntry, geoName string) (SeverityEntry, bool) {
	name, ok := APIName(geoName)
	if !ok {
		return SeverityEntry{}, false
	}
	target := NormalizeName(name)
	i := sort.Search(len(entries), func(i int) bool {
		return entries[i].NormalizedName >= target
	})
	if i < len(entries) && entries[i].NormalizedName == target {
		return entries[i], true
	}
	return SeverityEntry{}, false
}

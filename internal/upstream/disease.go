package upstream

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strings"
	"time"

	"covidtracker.io/internal/models"
	"covidtracker.io/internal/series"
)

// DiseaseClient talks to the disease.sh v3 COVID-19 API
type DiseaseClient struct {
	*fetcher
}

func NewDiseaseClient(baseURL string, opts ...Option) *DiseaseClient {
	return &DiseaseClient{fetcher: newFetcher("disease", baseURL, opts)}
}

// HistoricalAll returns the cumulative worldwide case count per day, oldest first
func (c *DiseaseClient) HistoricalAll(ctx context.Context) ([]series.TrendPoint, error) {
	var payload struct {
		Cases map[string]float64 `json:"cases"`
	}
	if err := c.getJSON(ctx, "/v3/covid-19/historical/all?lastdays=all", &payload); err != nil {
		return nil, err
	}

	points := make([]series.TrendPoint, 0, len(payload.Cases))
	for raw, cases := range payload.Cases {
		date, err := NormalizeDate(raw)
		if err != nil {
			return nil, err
		}
		points = append(points, series.TrendPoint{Date: date, Cases: cases})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
	return points, nil
}

// Continents returns the per-continent counters
func (c *DiseaseClient) Continents(ctx context.Context) ([]models.Continent, error) {
	var continents []models.Continent
	if err := c.getJSON(ctx, "/v3/covid-19/continents", &continents); err != nil {
		return nil, err
	}
	return continents, nil
}

// Country returns the live counters of one country. Unknown countries yield
// an error matching ErrNotFound.
func (c *DiseaseClient) Country(ctx context.Context, name string) (*models.CountryStats, error) {
	var stats models.CountryStats
	if err := c.getJSON(ctx, "/v3/covid-19/countries/"+url.PathEscape(name), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// CountryNames returns the names of all countries disease.sh knows, sorted
func (c *DiseaseClient) CountryNames(ctx context.Context) ([]string, error) {
	var countries []struct {
		Country string `json:"country"`
	}
	if err := c.getJSON(ctx, "/v3/covid-19/countries", &countries); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(countries))
	for _, country := range countries {
		if country.Country != "" {
			names = append(names, country.Country)
		}
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// NormalizeDate converts the M/D/YY dates used by disease.sh timelines to
// YYYY-MM-DD. Dates already in that form are returned as is.
func NormalizeDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"1/2/06", time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(time.DateOnly), nil
		}
	}
	return "", fmt.Errorf("unrecognised timeline date %q", raw)
}

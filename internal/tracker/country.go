package tracker

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"covidtracker.io/internal/logging"
	"covidtracker.io/internal/models"
	"covidtracker.io/internal/series"
)

// forecastAliases maps short names users type to the names the forecast
// backend knows
var forecastAliases = map[string]string{
	"usa":      "United States Of America",
	"uk":       "United Kingdom",
	"uae":      "United Arab Emirates",
	"drc":      "Democratic Republic of the Congo",
	"tanzania": "United Republic of Tanzania",
}

// ForecastName resolves an alias for the forecast backend
func ForecastName(country string) string {
	country = strings.TrimSpace(country)
	if alias, ok := forecastAliases[strings.ToLower(country)]; ok {
		return alias
	}
	return country
}

// CountryDetail returns the live statistics and the case timeline of one
// country. A missing or malformed timeline is logged and reported with
// HasTimeline false; a failed statistics lookup is returned as an error.
func (manager *Manager) CountryDetail(ctx context.Context, name, province string) (*models.CountryDetail, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNoCountries
	}
	logger := logging.FromContext(ctx).With(
		slog.String("component", "tracker_country"),
		slog.String("country", name))

	var (
		stats       *models.CountryStats
		historical  *series.Historical
		timelineErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h, err := manager.forecast.CurrentData(gctx, ForecastName(name), province)
		historical, timelineErr = h, err
		return nil
	})
	g.Go(func() error {
		s, err := manager.disease.Country(gctx, name)
		if err != nil {
			return err
		}
		stats = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	detail := &models.CountryDetail{Stats: stats, Timeline: []series.TrendPoint{}}
	if timelineErr != nil {
		logging.LogError(logger, "Error loading country timeline", timelineErr)
		return detail, nil
	}
	if historical == nil || historical.Dates == nil || historical.Cases == nil {
		logger.Warn("No time-series chart data")
		return detail, nil
	}

	points, err := series.Zip(*historical)
	if err != nil {
		logger.Warn("No time-series chart data", slog.String("error", err.Error()))
		return detail, nil
	}
	detail.Timeline = points
	detail.HasTimeline = true
	return detail, nil
}

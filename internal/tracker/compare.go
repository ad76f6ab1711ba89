package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"covidtracker.io/internal/logging"
	"covidtracker.io/internal/models"
	"covidtracker.io/internal/series"
)

// CompareRequest selects the countries to compare and the forecast horizon.
// Days of 0 means the configured default. Strict turns malformed series
// into errors instead of diagnostics.
type CompareRequest struct {
	Countries []string
	Days      int
	Strict    bool
}

// Comparison is the merged result of a CompareRequest. Entities lists the
// countries that made it into the rows, in request order.
type Comparison struct {
	Entities    []models.ComparedEntity
	Rows        []series.MergedRow
	Flat        []map[string]any
	Diagnostics []series.Diagnostic
	Failed      []string
	Days        int
}

// normalizeSelection trims the selections, drops empty ones and rejects
// selections that would share a chart key
func (manager *Manager) normalizeSelection(req CompareRequest) ([]string, int, error) {
	days := req.Days
	if days == 0 {
		days = manager.config.DefaultForecastDays
	}
	if days < manager.config.MinForecastDays || days > manager.config.MaxForecastDays {
		return nil, 0, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidDays, days,
			manager.config.MinForecastDays, manager.config.MaxForecastDays)
	}

	countries := make([]string, 0, len(req.Countries))
	for _, c := range req.Countries {
		if c = strings.TrimSpace(c); c != "" {
			countries = append(countries, c)
		}
	}
	if len(countries) == 0 {
		return nil, 0, ErrNoCountries
	}
	if len(countries) > manager.config.MaxCompareCountries {
		return nil, 0, fmt.Errorf("%w: %d selected, at most %d allowed", ErrTooManyCountries,
			len(countries), manager.config.MaxCompareCountries)
	}

	owners := make(map[string]string, len(countries))
	for _, c := range countries {
		key := series.EntityKey(c)
		if first, dup := owners[key]; dup {
			return nil, 0, &DuplicateSelectionError{First: first, Second: c, Key: key}
		}
		owners[key] = c
	}

	return countries, days, nil
}

// Compare fetches the history and forecast of every selected country
// concurrently and merges them into chart rows under uppercased labels. A
// country whose fetch fails is left out and listed in Failed as given.
func (manager *Manager) Compare(ctx context.Context, req CompareRequest) (*Comparison, error) {
	countries, days, err := manager.normalizeSelection(req)
	if err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx).With(slog.String("component", "tracker_compare"))

	type fetched struct {
		historical *series.Historical
		predicted  *series.Predicted
	}
	results := make([]fetched, len(countries))
	historicalErrs := make([]error, len(countries))
	predictedErrs := make([]error, len(countries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(manager.config.FetchConcurrency)
	for i, country := range countries {
		g.Go(func() error {
			h, err := manager.forecast.CurrentData(gctx, country, "")
			results[i].historical, historicalErrs[i] = h, err
			return nil
		})
		g.Go(func() error {
			p, err := manager.forecast.Predict(gctx, country, days)
			results[i].predicted, predictedErrs[i] = p, err
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	comparison := &Comparison{Days: days, Failed: []string{}}
	entities := make([]series.EntityResult, 0, len(countries))
	for i, country := range countries {
		if err := firstError(historicalErrs[i], predictedErrs[i]); err != nil {
			logging.LogError(logger, "Error fetching comparison series", err,
				slog.String("country", country))
			comparison.Failed = append(comparison.Failed, country)
			continue
		}
		label := strings.ToUpper(country)
		entities = append(entities, series.EntityResult{
			Label:      label,
			Historical: results[i].historical,
			Predicted:  results[i].predicted,
		})
		comparison.Entities = append(comparison.Entities, models.NewComparedEntity(label))
	}

	mergeOpts := []series.Option{series.WithLogger(logger)}
	if req.Strict {
		mergeOpts = append(mergeOpts, series.WithStrict())
	}
	merged, err := series.Merge(entities, mergeOpts...)
	if err != nil {
		return nil, err
	}
	series.LogDiagnostics(logger, merged.Diagnostics)

	comparison.Rows = merged.Rows
	comparison.Flat = series.Flatten(merged.Rows)
	comparison.Diagnostics = merged.Diagnostics
	if comparison.Diagnostics == nil {
		comparison.Diagnostics = []series.Diagnostic{}
	}
	if comparison.Entities == nil {
		comparison.Entities = []models.ComparedEntity{}
	}
	return comparison, nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

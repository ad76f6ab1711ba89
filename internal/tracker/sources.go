package tracker

import (
	"context"

	"covidtracker.io/internal/models"
	"covidtracker.io/internal/series"
)

// DiseaseSource provides live statistics. upstream.DiseaseClient implements it.
type DiseaseSource interface {
	HistoricalAll(ctx context.Context) ([]series.TrendPoint, error)
	Continents(ctx context.Context) ([]models.Continent, error)
	Country(ctx context.Context, name string) (*models.CountryStats, error)
	CountryNames(ctx context.Context) ([]string, error)
}

// ForecastSource provides per-country series. upstream.ForecastClient implements it.
type ForecastSource interface {
	CurrentData(ctx context.Context, country, province string) (*series.Historical, error)
	Predict(ctx context.Context, country string, futureDays int) (*series.Predicted, error)
	GlobalStats(ctx context.Context) (*models.GlobalStatsPayload, error)
}

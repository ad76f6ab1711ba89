package upstream

import (
	"context"
	"strings"

	"covidtracker.io/internal/models"
	"covidtracker.io/internal/series"
)

// ForecastClient talks to the forecast backend that serves per-country
// history and predictions
type ForecastClient struct {
	*fetcher
}

func NewForecastClient(baseURL string, opts ...Option) *ForecastClient {
	return &ForecastClient{fetcher: newFetcher("forecast", baseURL, opts)}
}

type currentDataRequest struct {
	Country  string `json:"country"`
	Province string `json:"province,omitempty"`
}

type predictRequest struct {
	Country    string `json:"country"`
	FutureDays int    `json:"future_days"`
}

// CurrentData returns the observed case series of country. The backend
// expects lowercase names. A payload without the expected arrays decodes
// to a series with nil fields, which series.Merge treats as missing.
func (c *ForecastClient) CurrentData(ctx context.Context, country, province string) (*series.Historical, error) {
	var h series.Historical
	req := currentDataRequest{
		Country:  strings.ToLower(strings.TrimSpace(country)),
		Province: strings.TrimSpace(province),
	}
	if err := c.postJSON(ctx, "/get_current_data", req, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Predict returns the forecast of country for the next futureDays days
func (c *ForecastClient) Predict(ctx context.Context, country string, futureDays int) (*series.Predicted, error) {
	var p series.Predicted
	req := predictRequest{
		Country:    strings.ToLower(strings.TrimSpace(country)),
		FutureDays: futureDays,
	}
	if err := c.postJSON(ctx, "/predict", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GlobalStats returns the worldwide totals and per-country rows
func (c *ForecastClient) GlobalStats(ctx context.Context) (*models.GlobalStatsPayload, error) {
	var payload models.GlobalStatsPayload
	if err := c.getJSON(ctx, "/get_global_stats", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

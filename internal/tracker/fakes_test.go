package tracker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"covidtracker.io/internal/models"
	"covidtracker.io/internal/series"
)

var errUpstream = errors.New("upstream unavailable")

type fakeDisease struct {
	mu          sync.Mutex
	failAll     bool
	historical  []series.TrendPoint
	continents  []models.Continent
	countries   map[string]*models.CountryStats
	names       []string
	namesCalls  atomic.Int32
	refreshHits atomic.Int32
}

func (f *fakeDisease) fail() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failAll
}

func (f *fakeDisease) setFail(v bool) {
	f.mu.Lock()
	f.failAll = v
	f.mu.Unlock()
}

func (f *fakeDisease) HistoricalAll(ctx context.Context) ([]series.TrendPoint, error) {
	f.refreshHits.Add(1)
	if f.fail() {
		return nil, errUpstream
	}
	return f.historical, nil
}

func (f *fakeDisease) Continents(ctx context.Context) ([]models.Continent, error) {
	if f.fail() {
		return nil, errUpstream
	}
	return f.continents, nil
}

func (f *fakeDisease) Country(ctx context.Context, name string) (*models.CountryStats, error) {
	if s, ok := f.countries[name]; ok {
		return s, nil
	}
	return nil, errUpstream
}

func (f *fakeDisease) CountryNames(ctx context.Context) ([]string, error) {
	f.namesCalls.Add(1)
	if f.fail() {
		return nil, errUpstream
	}
	return f.names, nil
}

type fakeForecast struct {
	failGlobal bool
	global     *models.GlobalStatsPayload
	current    map[string]*series.Historical
	predicted  map[string]*series.Predicted
	failing    map[string]bool

	mu           sync.Mutex
	currentCalls []string
	predictDays  []int
}

func (f *fakeForecast) CurrentData(ctx context.Context, country, province string) (*series.Historical, error) {
	f.mu.Lock()
	f.currentCalls = append(f.currentCalls, country)
	f.mu.Unlock()

	key := strings.ToLower(country)
	if f.failing[key] {
		return nil, errUpstream
	}
	if h, ok := f.current[key]; ok {
		return h, nil
	}
	return &series.Historical{}, nil
}

func (f *fakeForecast) Predict(ctx context.Context, country string, futureDays int) (*series.Predicted, error) {
	f.mu.Lock()
	f.predictDays = append(f.predictDays, futureDays)
	f.mu.Unlock()

	key := strings.ToLower(country)
	if f.failing[key] {
		return nil, errUpstream
	}
	if p, ok := f.predicted[key]; ok {
		return p, nil
	}
	return &series.Predicted{}, nil
}

func (f *fakeForecast) GlobalStats(ctx context.Context) (*models.GlobalStatsPayload, error) {
	if f.failGlobal {
		return nil, errUpstream
	}
	return f.global, nil
}

func newFakeDisease() *fakeDisease {
	return &fakeDisease{
		historical: []series.TrendPoint{
			{Date: "2020-01-22", Cases: 557},
			{Date: "2020-01-23", Cases: 655},
			{Date: "2020-01-24", Cases: 600},
		},
		continents: []models.Continent{{Continent: "Asia", Cases: 200}},
		countries: map[string]*models.CountryStats{
			"India": {Country: "India", Cases: 45000000},
			"USA":   {Country: "USA", Cases: 111000000},
		},
		names: []string{"India", "Peru", "USA"},
	}
}

func newFakeForecast() *fakeForecast {
	return &fakeForecast{
		global: &models.GlobalStatsPayload{
			Global: models.GlobalTotals{Cases: 1000, Deaths: 20, Recovered: 900, Active: 80},
			Countries: []models.CountryTotals{
				{Country: "Peru", Cases: 100, Deaths: 10, Recovered: 50},
				{Country: "India", Cases: 600, Deaths: 5, Recovered: 590},
				{Country: "USA", Cases: 300, Deaths: 5, Recovered: 260},
			},
		},
		current: map[string]*series.Historical{
			"a": {Dates: []string{"2020-01-01", "2020-01-02"}, Cases: []float64{10, 20}},
			"b": {Dates: []string{"2020-01-02"}, Cases: []float64{5}},
			"united states of america": {
				Dates: []string{"2020-01-01"}, Cases: []float64{1},
			},
			"broken": {Dates: []string{"2020-01-01", "2020-01-02"}, Cases: []float64{1}},
		},
		predicted: map[string]*series.Predicted{
			"a": {Dates: []string{"2020-01-03"}, Cases: []float64{25}},
		},
		failing: map[string]bool{"down": true},
	}
}

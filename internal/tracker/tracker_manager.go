// Package tracker keeps a periodically refreshed snapshot of the dashboard
// data and answers country detail and comparison queries.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"covidtracker.io/internal/choropleth"
	"covidtracker.io/internal/logging"
	"covidtracker.io/internal/models"
	"covidtracker.io/internal/series"
)

const topN = 10

// Snapshot is the dashboard data as of UpdatedAt. Each part is replaced only
// when its own refresh succeeds.
type Snapshot struct {
	Totals       models.GlobalTotals
	Countries    []models.CountryTotals
	TopCases     []models.RankedCountry
	TopDeaths    []models.RankedCountry
	TopRecovered []models.RankedCountry
	Continents   []models.Continent
	DailyTrend   []series.TrendPoint
	Severity     []choropleth.SeverityEntry
	CountryNames []string
	UpdatedAt    time.Time
}

// Manager owns the snapshot and the upstream sources
type Manager struct {
	config       Config
	disease      DiseaseSource
	forecast     ForecastSource
	scale        choropleth.Scale
	logger       *slog.Logger
	snapshot     Snapshot
	snapshotMu   sync.RWMutex
	shutdownChan chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// NewManager builds a manager with an empty snapshot and no background work.
// Comparisons and country details do not need the snapshot.
func NewManager(config Config, disease DiseaseSource, forecast ForecastSource, logger *slog.Logger) (*Manager, error) {
	if disease == nil || forecast == nil {
		return nil, errors.New("tracker needs both a disease and a forecast source")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		config:       config.withDefaults(),
		disease:      disease,
		forecast:     forecast,
		scale:        choropleth.DefaultScale(),
		logger:       logger.With(slog.String("component", "tracker")),
		shutdownChan: make(chan struct{}),
	}, nil
}

// InitManager loads the first snapshot and, when config.RefreshInterval is
// set, starts refreshing it in the background. A failed first load is logged
// and leaves the snapshot empty.
func InitManager(ctx context.Context, config Config, disease DiseaseSource, forecast ForecastSource, logger *slog.Logger) (*Manager, error) {
	manager, err := NewManager(config, disease, forecast, logger)
	if err != nil {
		return nil, err
	}

	loadCtx, cancel := context.WithTimeout(ctx, manager.config.RefreshTimeout)
	manager.Refresh(logging.WithLogger(loadCtx, manager.logger))
	cancel()

	if manager.config.RefreshInterval > 0 {
		manager.wg.Add(1)
		go manager.refreshPeriodically()
	}

	return manager, nil
}

// Shutdown stops the background refresh and waits for it to exit
func (manager *Manager) Shutdown() {
	manager.shutdownOnce.Do(func() {
		close(manager.shutdownChan)
		manager.wg.Wait()
	})
}

// Snapshot returns a copy of the current snapshot
func (manager *Manager) Snapshot() Snapshot {
	manager.snapshotMu.RLock()
	defer manager.snapshotMu.RUnlock()

	s := manager.snapshot
	s.Countries = slices.Clone(s.Countries)
	s.TopCases = slices.Clone(s.TopCases)
	s.TopDeaths = slices.Clone(s.TopDeaths)
	s.TopRecovered = slices.Clone(s.TopRecovered)
	s.Continents = slices.Clone(s.Continents)
	s.DailyTrend = slices.Clone(s.DailyTrend)
	s.Severity = slices.Clone(s.Severity)
	s.CountryNames = slices.Clone(s.CountryNames)
	return s
}

// Overview returns the global dashboard entry
func (manager *Manager) Overview() models.GlobalOverview {
	manager.snapshotMu.RLock()
	defer manager.snapshotMu.RUnlock()

	var updated int64
	if !manager.snapshot.UpdatedAt.IsZero() {
		updated = manager.snapshot.UpdatedAt.UnixMilli()
	}
	return models.GlobalOverview{
		Totals:       manager.snapshot.Totals,
		TopCases:     slices.Clone(manager.snapshot.TopCases),
		TopDeaths:    slices.Clone(manager.snapshot.TopDeaths),
		TopRecovered: slices.Clone(manager.snapshot.TopRecovered),
		UpdatedAt:    updated,
	}
}

func (manager *Manager) GlobalTrend() []series.TrendPoint {
	manager.snapshotMu.RLock()
	defer manager.snapshotMu.RUnlock()
	return slices.Clone(manager.snapshot.DailyTrend)
}

func (manager *Manager) Continents() []models.Continent {
	manager.snapshotMu.RLock()
	defer manager.snapshotMu.RUnlock()
	return slices.Clone(manager.snapshot.Continents)
}

func (manager *Manager) MapSeverity() []choropleth.SeverityEntry {
	manager.snapshotMu.RLock()
	defer manager.snapshotMu.RUnlock()
	return slices.Clone(manager.snapshot.Severity)
}

// Countries returns the sorted country names, fetching them if the snapshot
// does not have them yet
func (manager *Manager) Countries(ctx context.Context) ([]string, error) {
	manager.snapshotMu.RLock()
	names := slices.Clone(manager.snapshot.CountryNames)
	manager.snapshotMu.RUnlock()
	if len(names) > 0 {
		return names, nil
	}

	names, err := manager.disease.CountryNames(ctx)
	if err != nil {
		return nil, err
	}

	manager.snapshotMu.Lock()
	manager.snapshot.CountryNames = slices.Clone(names)
	manager.snapshotMu.Unlock()
	return names, nil
}

// Refresh reloads every part of the snapshot concurrently. Failures are
// logged and keep the previous value of that part.
func (manager *Manager) Refresh(ctx context.Context) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	var g errgroup.Group
	var (
		global     *models.GlobalStatsPayload
		trend      []series.TrendPoint
		continents []models.Continent
		names      []string
	)

	g.Go(func() error {
		payload, err := manager.forecast.GlobalStats(ctx)
		if err != nil {
			logging.LogError(logger, "Error loading global stats", err)
			return nil
		}
		global = payload
		return nil
	})
	g.Go(func() error {
		cumulative, err := manager.disease.HistoricalAll(ctx)
		if err != nil {
			logging.LogError(logger, "Error loading global timeline", err)
			return nil
		}
		trend = series.DailyIncrements(cumulative)
		return nil
	})
	g.Go(func() error {
		list, err := manager.disease.Continents(ctx)
		if err != nil {
			logging.LogError(logger, "Error loading continents", err)
			return nil
		}
		continents = list
		return nil
	})
	g.Go(func() error {
		list, err := manager.disease.CountryNames(ctx)
		if err != nil {
			logging.LogError(logger, "Error loading country names", err)
			return nil
		}
		names = list
		return nil
	})
	_ = g.Wait()

	if ctx.Err() != nil {
		return
	}

	var severity []choropleth.SeverityEntry
	if global != nil {
		entries, err := choropleth.Severity(global.Countries, manager.scale)
		if err != nil {
			logging.LogError(logger, "Error colouring map", err)
		} else {
			severity = entries
		}
	}

	manager.snapshotMu.Lock()
	defer manager.snapshotMu.Unlock()

	updated := false
	if global != nil {
		manager.snapshot.Totals = global.Global
		manager.snapshot.Countries = global.Countries
		manager.snapshot.TopCases = Ranking(global.Countries, MetricCases, topN)
		manager.snapshot.TopDeaths = Ranking(global.Countries, MetricDeaths, topN)
		manager.snapshot.TopRecovered = Ranking(global.Countries, MetricRecovered, topN)
		if severity != nil {
			manager.snapshot.Severity = severity
		}
		updated = true
	}
	if trend != nil {
		manager.snapshot.DailyTrend = trend
		updated = true
	}
	if continents != nil {
		manager.snapshot.Continents = continents
		updated = true
	}
	if names != nil {
		manager.snapshot.CountryNames = names
		updated = true
	}
	if updated {
		manager.snapshot.UpdatedAt = time.Now()
	}

	logging.LogOperation(logger, "snapshot_refreshed",
		slog.Bool("updated", updated),
		slog.Duration("duration", time.Since(start)))
}

func (manager *Manager) refreshPeriodically() {
	defer manager.wg.Done()

	logger := manager.logger.With(slog.String("component", "tracker_refresher"))

	ticker := time.NewTicker(manager.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), manager.config.RefreshTimeout)
			ctx = logging.WithLogger(ctx, logger)

			logging.LogOperation(logger, "refreshing_snapshot")
			manager.Refresh(ctx)
			cancel()
		case <-manager.shutdownChan:
			logging.LogOperation(logger, "shutting_down_snapshot_refresh")
			return
		}
	}
}

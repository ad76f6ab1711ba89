package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"covidtracker.io/internal/series"
)

func newTestManager(t *testing.T, disease *fakeDisease, forecast *fakeForecast, config Config) *Manager {
	t.Helper()
	manager, err := InitManager(context.Background(), config, disease, forecast, nil)
	require.NoError(t, err)
	t.Cleanup(manager.Shutdown)
	return manager
}

func TestInitManagerRequiresSources(t *testing.T) {
	_, err := InitManager(context.Background(), Config{}, nil, newFakeForecast(), nil)
	assert.Error(t, err)
}

func TestNewManagerDoesNotLoad(t *testing.T) {
	disease := newFakeDisease()
	manager, err := NewManager(Config{RefreshInterval: time.Millisecond}, disease, newFakeForecast(), nil)
	require.NoError(t, err)
	defer manager.Shutdown()

	assert.True(t, manager.Snapshot().UpdatedAt.IsZero())
	assert.Zero(t, disease.refreshHits.Load())

	names, err := manager.Countries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"India", "Peru", "USA"}, names)
}

func TestInitialSnapshot(t *testing.T) {
	manager := newTestManager(t, newFakeDisease(), newFakeForecast(), Config{})

	snapshot := manager.Snapshot()
	assert.False(t, snapshot.UpdatedAt.IsZero())
	assert.Equal(t, int64(1000), snapshot.Totals.Cases)
	assert.Equal(t, []string{"India", "Peru", "USA"}, snapshot.CountryNames)
	assert.Len(t, snapshot.Continents, 1)

	t.Run("daily trend clamps corrections", func(t *testing.T) {
		assert.Equal(t, []series.TrendPoint{
			{Date: "2020-01-22", Cases: 557},
			{Date: "2020-01-23", Cases: 98},
			{Date: "2020-01-24", Cases: 0},
		}, manager.GlobalTrend())
	})

	t.Run("overview rankings", func(t *testing.T) {
		overview := manager.Overview()
		require.Len(t, overview.TopCases, 3)
		assert.Equal(t, "India", overview.TopCases[0].Country)
		assert.Equal(t, 100.0, overview.TopCases[0].Percent)
		assert.Equal(t, "Peru", overview.TopDeaths[0].Country)
		assert.Equal(t, "India", overview.TopRecovered[0].Country)
		assert.NotZero(t, overview.UpdatedAt)
	})

	t.Run("map severity covers every country", func(t *testing.T) {
		severity := manager.MapSeverity()
		require.Len(t, severity, 3)
		assert.Equal(t, "india", severity[0].NormalizedName)
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		s := manager.Snapshot()
		s.CountryNames[0] = "changed"
		assert.Equal(t, "India", manager.Snapshot().CountryNames[0])
	})
}

func TestFailedInitialLoadKeepsEmptySnapshot(t *testing.T) {
	disease := newFakeDisease()
	disease.setFail(true)
	forecast := newFakeForecast()
	forecast.failGlobal = true

	manager := newTestManager(t, disease, forecast, Config{})

	snapshot := manager.Snapshot()
	assert.True(t, snapshot.UpdatedAt.IsZero())
	assert.Empty(t, snapshot.TopCases)
	assert.Empty(t, manager.GlobalTrend())
}

func TestRefreshKeepsPartsThatFail(t *testing.T) {
	disease := newFakeDisease()
	manager := newTestManager(t, disease, newFakeForecast(), Config{})
	before := manager.Snapshot()

	disease.setFail(true)
	manager.Refresh(context.Background())

	after := manager.Snapshot()
	assert.Equal(t, before.DailyTrend, after.DailyTrend)
	assert.Equal(t, before.CountryNames, after.CountryNames)
	assert.Equal(t, before.Continents, after.Continents)
	assert.True(t, !after.UpdatedAt.Before(before.UpdatedAt), "global stats still refreshed")
}

func TestCountriesFetchesWhenSnapshotIsEmpty(t *testing.T) {
	disease := newFakeDisease()
	disease.setFail(true)
	manager := newTestManager(t, disease, newFakeForecast(), Config{})

	_, err := manager.Countries(context.Background())
	require.Error(t, err)

	disease.setFail(false)
	names, err := manager.Countries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"India", "Peru", "USA"}, names)

	calls := disease.namesCalls.Load()
	_, err = manager.Countries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, calls, disease.namesCalls.Load(), "second call is served from the snapshot")
}

func TestManagerShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	disease := newFakeDisease()
	manager, err := InitManager(context.Background(), Config{RefreshInterval: 10 * time.Millisecond},
		disease, newFakeForecast(), nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return disease.refreshHits.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond, "background refresh should run")

	done := make(chan struct{})
	go func() {
		manager.Shutdown()
		manager.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Shutdown took too long")
	}
}

package tracker

import (
	"sort"

	"covidtracker.io/internal/models"
)

// Metric selects the counter a ranking is built on
type Metric string

const (
	MetricCases     Metric = "cases"
	MetricDeaths    Metric = "deaths"
	MetricRecovered Metric = "recovered"
	MetricActive    Metric = "active"
)

func (m Metric) value(c models.CountryTotals) int64 {
	switch m {
	case MetricDeaths:
		return c.Deaths
	case MetricRecovered:
		return c.Recovered
	case MetricActive:
		return c.Active
	default:
		return c.Cases
	}
}

// Ranking returns the n countries with the highest metric, descending. Ties
// keep input order. Percent is relative to the leader.
func Ranking(countries []models.CountryTotals, metric Metric, n int) []models.RankedCountry {
	if n <= 0 || len(countries) == 0 {
		return []models.RankedCountry{}
	}

	sorted := make([]models.CountryTotals, len(countries))
	copy(sorted, countries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return metric.value(sorted[i]) > metric.value(sorted[j])
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	leader := float64(metric.value(sorted[0]))
	ranked := make([]models.RankedCountry, len(sorted))
	for i, c := range sorted {
		v := metric.value(c)
		percent := 0.0
		if leader > 0 {
			percent = float64(v) / leader * 100
		}
		ranked[i] = models.RankedCountry{
			Rank:    i + 1,
			Country: c.Country,
			Flag:    c.Flag,
			Value:   v,
			Percent: percent,
		}
	}
	return ranked
}

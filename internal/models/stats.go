package models

// GlobalTotals are the worldwide counters shown on the dashboard cards
type GlobalTotals struct {
	Cases     int64 `json:"cases"`
	Deaths    int64 `json:"deaths"`
	Recovered int64 `json:"recovered"`
	Active    int64 `json:"active"`
}

// CountryTotals is one country row of the forecast backend's global stats
type CountryTotals struct {
	Country   string `json:"country"`
	Flag      string `json:"flag"`
	Cases     int64  `json:"cases"`
	Deaths    int64  `json:"deaths"`
	Recovered int64  `json:"recovered"`
	Active    int64  `json:"active"`
}

// GlobalStatsPayload is the body of GET /get_global_stats
type GlobalStatsPayload struct {
	Global    GlobalTotals    `json:"global"`
	Countries []CountryTotals `json:"countries"`
}

// CountryInfo is the identification block disease.sh attaches to a country
type CountryInfo struct {
	ID   int     `json:"_id"`
	ISO2 string  `json:"iso2"`
	ISO3 string  `json:"iso3"`
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
	Flag string  `json:"flag"`
}

// CountryStats are the live counters of one country from disease.sh
type CountryStats struct {
	Country     string      `json:"country"`
	CountryInfo CountryInfo `json:"countryInfo"`
	Continent   string      `json:"continent"`
	Cases       int64       `json:"cases"`
	TodayCases  int64       `json:"todayCases"`
	Deaths      int64       `json:"deaths"`
	TodayDeaths int64       `json:"todayDeaths"`
	Recovered   int64       `json:"recovered"`
	Active      int64       `json:"active"`
	Critical    int64       `json:"critical"`
	Population  int64       `json:"population"`
	Updated     int64       `json:"updated"`
}

// Continent is one continent's counters from disease.sh
type Continent struct {
	Continent  string `json:"continent"`
	Cases      int64  `json:"cases"`
	Deaths     int64  `json:"deaths"`
	Recovered  int64  `json:"recovered"`
	Active     int64  `json:"active"`
	Population int64  `json:"population"`
}

// RankedCountry is one entry of a top-N list. Percent is relative to the
// first entry and drives the bar width in the dashboard.
type RankedCountry struct {
	Rank    int     `json:"rank"`
	Country string  `json:"country"`
	Flag    string  `json:"flag"`
	Value   int64   `json:"value"`
	Percent float64 `json:"percent"`
}

// GlobalOverview is the entry of the global dashboard endpoint
type GlobalOverview struct {
	Totals       GlobalTotals    `json:"totals"`
	TopCases     []RankedCountry `json:"topCases"`
	TopDeaths    []RankedCountry `json:"topDeaths"`
	TopRecovered []RankedCountry `json:"topRecovered"`
	UpdatedAt    int64           `json:"updatedAt"`
}

package tracker

import "time"

// Config holds the Manager settings
type Config struct {
	RefreshInterval     time.Duration // 0 disables the background refresh
	RefreshTimeout      time.Duration
	MaxCompareCountries int
	DefaultForecastDays int
	MinForecastDays     int
	MaxForecastDays     int
	FetchConcurrency    int
}

func (config Config) withDefaults() Config {
	if config.RefreshTimeout <= 0 {
		config.RefreshTimeout = 30 * time.Second
	}
	if config.MaxCompareCountries <= 0 {
		config.MaxCompareCountries = 3
	}
	if config.MinForecastDays <= 0 {
		config.MinForecastDays = 7
	}
	if config.MaxForecastDays <= 0 {
		config.MaxForecastDays = 365
	}
	if config.DefaultForecastDays <= 0 {
		config.DefaultForecastDays = 180
	}
	if config.FetchConcurrency <= 0 {
		config.FetchConcurrency = 6
	}
	return config
}

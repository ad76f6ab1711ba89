package appconf

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultForecastURL = "https://covid-tracker-server-vcv9.onrender.com"
	DefaultDiseaseURL  = "https://disease.sh"

	MinForecastDays = 7
	MaxForecastDays = 365
)

// Config holds all configuration settings of the server. Values come from
// defaults, then an optional YAML file, then explicitly set command-line flags.
type Config struct {
	Port                int           `yaml:"port"`
	Env                 Environment   `yaml:"env"`
	ApiKeys             []string      `yaml:"api_keys"`
	RateLimit           int           `yaml:"rate_limit"`
	LogLevel            string        `yaml:"log_level"`
	ForecastURL         string        `yaml:"forecast_url"`
	DiseaseURL          string        `yaml:"disease_url"`
	UpstreamTimeout     time.Duration `yaml:"upstream_timeout"`
	CacheDBPath         string        `yaml:"cache_db_path"`
	CacheTTL            time.Duration `yaml:"cache_ttl"`
	RefreshInterval     time.Duration `yaml:"refresh_interval"`
	MaxCompareCountries int           `yaml:"max_compare_countries"`
	DefaultForecastDays int           `yaml:"default_forecast_days"`
	Verbose             bool          `yaml:"verbose"`
}

// Default returns the configuration used when nothing else is given
func Default() Config {
	return Config{
		Port:                4000,
		Env:                 Development,
		ApiKeys:             []string{"test"},
		RateLimit:           100,
		LogLevel:            "info",
		ForecastURL:         DefaultForecastURL,
		DiseaseURL:          DefaultDiseaseURL,
		UpstreamTimeout:     30 * time.Second,
		CacheDBPath:         "covidtracker.db",
		CacheTTL:            10 * time.Minute,
		RefreshInterval:     15 * time.Minute,
		MaxCompareCountries: 3,
		DefaultForecastDays: 180,
	}
}

// LoadFile overlays the YAML file at path onto cfg. Keys absent from the file
// keep their current value.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the settings that would otherwise fail late at runtime
func (c Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.ForecastURL == "" {
		errs = append(errs, errors.New("forecast url is required"))
	}
	if c.DiseaseURL == "" {
		errs = append(errs, errors.New("disease url is required"))
	}
	if c.MaxCompareCountries < 1 {
		errs = append(errs, errors.New("max compare countries must be at least 1"))
	}
	if c.DefaultForecastDays < MinForecastDays || c.DefaultForecastDays > MaxForecastDays {
		errs = append(errs, fmt.Errorf("default forecast days must be between %d and %d", MinForecastDays, MaxForecastDays))
	}
	if c.Env == Test && c.CacheDBPath != "" && c.CacheDBPath != ":memory:" {
		errs = append(errs, errors.New("test environment requires an in-memory cache"))
	}

	return errors.Join(errs...)
}

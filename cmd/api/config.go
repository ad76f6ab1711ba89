package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"covidtracker.io/internal/appconf"
)

// loadConfig builds the configuration from defaults, an optional YAML file
// given by -config, and the flags that were set explicitly, in that order.
func loadConfig(args []string, output io.Writer) (appconf.Config, error) {
	cfg := appconf.Default()

	fs := flag.NewFlagSet("api", flag.ContinueOnError)
	fs.SetOutput(output)

	var (
		configFile      string
		port            int
		env             string
		apiKeys         string
		rateLimit       int
		logLevel        string
		forecastURL     string
		diseaseURL      string
		upstreamTimeout time.Duration
		cacheDBPath     string
		cacheTTL        time.Duration
		refreshInterval time.Duration
		maxCompare      int
		forecastDays    int
		verbose         bool
	)

	fs.StringVar(&configFile, "config", "", "Path to a YAML config file")
	fs.IntVar(&port, "port", cfg.Port, "API server port")
	fs.StringVar(&env, "env", cfg.Env.String(), "Environment (development|test|production)")
	fs.StringVar(&apiKeys, "api-keys", strings.Join(cfg.ApiKeys, ","), "Comma Separated API Keys (test, etc)")
	fs.IntVar(&rateLimit, "rate-limit", cfg.RateLimit, "Requests per second per API key (negative disables)")
	fs.StringVar(&logLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	fs.StringVar(&forecastURL, "forecast-url", cfg.ForecastURL, "Base URL of the forecast backend")
	fs.StringVar(&diseaseURL, "disease-url", cfg.DiseaseURL, "Base URL of the disease.sh API")
	fs.DurationVar(&upstreamTimeout, "upstream-timeout", cfg.UpstreamTimeout, "Timeout of one upstream request")
	fs.StringVar(&cacheDBPath, "cache-db", cfg.CacheDBPath, "Path to the SQLite response cache (empty disables)")
	fs.DurationVar(&cacheTTL, "cache-ttl", cfg.CacheTTL, "How long cached upstream responses are served")
	fs.DurationVar(&refreshInterval, "refresh-interval", cfg.RefreshInterval, "Dashboard snapshot refresh interval (0 disables)")
	fs.IntVar(&maxCompare, "max-compare", cfg.MaxCompareCountries, "Maximum number of countries per comparison")
	fs.IntVar(&forecastDays, "forecast-days", cfg.DefaultForecastDays, "Default forecast horizon in days")
	fs.BoolVar(&verbose, "verbose", cfg.Verbose, "Log cache database details")

	if err := fs.Parse(args); err != nil {
		return appconf.Config{}, err
	}

	if configFile != "" {
		if err := appconf.LoadFile(configFile, &cfg); err != nil {
			return appconf.Config{}, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = port
		case "env":
			cfg.Env = appconf.EnvFlagToEnvironment(env)
		case "api-keys":
			cfg.ApiKeys = splitKeys(apiKeys)
		case "rate-limit":
			cfg.RateLimit = rateLimit
		case "log-level":
			cfg.LogLevel = logLevel
		case "forecast-url":
			cfg.ForecastURL = forecastURL
		case "disease-url":
			cfg.DiseaseURL = diseaseURL
		case "upstream-timeout":
			cfg.UpstreamTimeout = upstreamTimeout
		case "cache-db":
			cfg.CacheDBPath = cacheDBPath
		case "cache-ttl":
			cfg.CacheTTL = cacheTTL
		case "refresh-interval":
			cfg.RefreshInterval = refreshInterval
		case "max-compare":
			cfg.MaxCompareCountries = maxCompare
		case "forecast-days":
			cfg.DefaultForecastDays = forecastDays
		case "verbose":
			cfg.Verbose = verbose
		}
	})

	if err := cfg.Validate(); err != nil {
		return appconf.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if len(cfg.ApiKeys) == 0 {
		return appconf.Config{}, errors.New("invalid configuration: at least one API key is required")
	}
	return cfg, nil
}

func splitKeys(flagValue string) []string {
	var keys []string
	for _, key := range strings.Split(flagValue, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

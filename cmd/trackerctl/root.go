package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"covidtracker.io/internal/appconf"
	"covidtracker.io/internal/logging"
	"covidtracker.io/internal/tracker"
	"covidtracker.io/internal/upstream"
)

type rootOptions struct {
	forecastURL string
	diseaseURL  string
	timeout     time.Duration
	logLevel    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "trackerctl",
		Short:         "Query COVID-19 history and forecasts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.forecastURL, "forecast-url", appconf.DefaultForecastURL, "Base URL of the forecast backend")
	flags.StringVar(&opts.diseaseURL, "disease-url", appconf.DefaultDiseaseURL, "Base URL of the disease.sh API")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "Timeout of one upstream request")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug|info|warn|error)")

	cmd.AddCommand(
		newCompareCmd(opts),
		newCountriesCmd(opts),
		newCountryCmd(opts),
		newOverviewCmd(opts),
	)
	return cmd
}

// manager builds a tracker without loading the dashboard snapshot
func (opts *rootOptions) manager(cmd *cobra.Command) (*tracker.Manager, error) {
	logger := logging.NewStructuredLogger(cmd.ErrOrStderr(), logging.ParseLevel(opts.logLevel))
	slog.SetDefault(logger)

	clientOpts := []upstream.Option{
		upstream.WithHTTPClient(&http.Client{Timeout: opts.timeout}),
		upstream.WithLogger(logger),
	}

	return tracker.NewManager(tracker.Config{
		RefreshTimeout:      2 * opts.timeout,
		MinForecastDays:     appconf.MinForecastDays,
		MaxForecastDays:     appconf.MaxForecastDays,
		MaxCompareCountries: 10,
	},
		upstream.NewDiseaseClient(opts.diseaseURL, clientOpts...),
		upstream.NewForecastClient(opts.forecastURL, clientOpts...),
		logger)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}

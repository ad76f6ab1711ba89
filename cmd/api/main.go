package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"covidtracker.io/internal/app"
	"covidtracker.io/internal/appconf"
	"covidtracker.io/internal/cachedb"
	"covidtracker.io/internal/logging"
	"covidtracker.io/internal/restapi"
	"covidtracker.io/internal/tracker"
	"covidtracker.io/internal/upstream"
	"covidtracker.io/internal/webui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run starts the server and blocks until ctx is cancelled or the server fails
func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, err := loadConfig(args, os.Stderr)
	if err != nil {
		return err
	}

	logger := logging.NewStructuredLogger(stdout, logging.ParseLevel(cfg.LogLevel))
	slog.SetDefault(logger)

	cache, err := openCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if cache != nil {
		defer logging.SafeCloseWithLogging(cache, logger, "cache_database")
	}

	clientOpts := []upstream.Option{
		upstream.WithHTTPClient(&http.Client{Timeout: cfg.UpstreamTimeout}),
		upstream.WithLogger(logger),
	}
	if cache != nil {
		clientOpts = append(clientOpts, upstream.WithCache(cache, cfg.CacheTTL))
	}

	manager, err := tracker.InitManager(ctx, tracker.Config{
		RefreshInterval:     cfg.RefreshInterval,
		RefreshTimeout:      2 * cfg.UpstreamTimeout,
		MaxCompareCountries: cfg.MaxCompareCountries,
		DefaultForecastDays: cfg.DefaultForecastDays,
		MinForecastDays:     appconf.MinForecastDays,
		MaxForecastDays:     appconf.MaxForecastDays,
	},
		upstream.NewDiseaseClient(cfg.DiseaseURL, clientOpts...),
		upstream.NewForecastClient(cfg.ForecastURL, clientOpts...),
		logger)
	if err != nil {
		return fmt.Errorf("failed to initialize tracker: %w", err)
	}
	defer manager.Shutdown()

	application := &app.Application{
		Config:  cfg,
		Logger:  logger,
		Tracker: manager,
		Cache:   cache,
	}

	api := restapi.NewRestAPI(application)
	defer api.Shutdown()
	webUI := &webui.WebUI{Application: application}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.Handler(webUI.SetWebUIRoutes),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout + 10*time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	return serve(ctx, srv, logger, cfg.Env)
}

func openCache(ctx context.Context, cfg appconf.Config, logger *slog.Logger) (*cachedb.Client, error) {
	if cfg.CacheDBPath == "" {
		return nil, nil
	}

	cache, err := cachedb.NewClient(cachedb.NewConfig(cfg.CacheDBPath, cfg.Env, cfg.Verbose))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	removed, err := cache.Purge(ctx, time.Now().Add(-cfg.CacheTTL))
	if err != nil {
		logging.LogError(logger, "failed to purge stale cache entries", err)
	} else if removed > 0 {
		logging.LogOperation(logger, "purged_stale_cache_entries", slog.Int64("removed", removed))
	}
	return cache, nil
}

// serve runs srv until ctx is done, then shuts it down gracefully
func serve(ctx context.Context, srv *http.Server, logger *slog.Logger, env appconf.Environment) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "env", env.String())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logging.LogOperation(logger, "shutting_down_server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

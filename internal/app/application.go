package app

import (
	"log/slog"

	"covidtracker.io/internal/appconf"
	"covidtracker.io/internal/cachedb"
	"covidtracker.io/internal/tracker"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware.
type Application struct {
	Config  appconf.Config
	Logger  *slog.Logger
	Tracker *tracker.Manager
	Cache   *cachedb.Client
}

package cachedb

import "covidtracker.io/internal/appconf"

// Config holds configuration options for the Client
type Config struct {
	DBPath  string // Path to the SQLite database file, or ":memory:"
	Env     appconf.Environment
	Verbose bool
}

func NewConfig(dbPath string, env appconf.Environment, verbose bool) Config {
	return Config{
		DBPath:  dbPath,
		Env:     env,
		Verbose: verbose,
	}
}

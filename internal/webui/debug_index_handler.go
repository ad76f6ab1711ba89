package webui

import (
	"embed"
	"html/template"
	"net/http"
	"slices"

	"github.com/davecgh/go-spew/spew"

	"covidtracker.io/internal/app"
	"covidtracker.io/internal/logging"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

// WebUI serves the debug pages
type WebUI struct {
	*app.Application
}

var dataTypes = []string{"overview", "trend", "continents", "severity", "countries", "cache", "config"}

type debugData struct {
	Title string
	Pre   string
	Links []string
	Key   string
}

func writeDebugData(w http.ResponseWriter, r *http.Request, title string, data interface{}) {
	page := debugData{
		Title: title,
		Pre:   spew.Sdump(data),
		Links: dataTypes,
		Key:   r.URL.Query().Get("key"),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := debugTemplate.Execute(w, page); err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to render debug page", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// debugIndexHandler dumps one part of the live tracker state
func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	if webUI.RequestHasInvalidAPIKey(r) {
		http.Error(w, "permission denied", http.StatusUnauthorized)
		return
	}

	var data interface{}
	var title string

	switch dataType := r.URL.Query().Get("dataType"); dataType {
	case "overview":
		data = webUI.Tracker.Overview()
		title = "Snapshot - Overview"
	case "trend":
		data = webUI.Tracker.GlobalTrend()
		title = "Snapshot - Daily Global Cases"
	case "continents":
		data = webUI.Tracker.Continents()
		title = "Snapshot - Continents"
	case "severity":
		data = webUI.Tracker.MapSeverity()
		title = "Snapshot - Map Severity"
	case "countries":
		data = webUI.Tracker.Snapshot().CountryNames
		title = "Snapshot - Country Names"
	case "cache":
		if webUI.Cache == nil {
			data = map[string]string{"error": "no cache configured"}
		} else if stats, err := webUI.Cache.Stats(r.Context()); err != nil {
			data = map[string]string{"error": err.Error()}
		} else {
			data = stats
		}
		title = "Response Cache"
	case "config":
		config := webUI.Config
		config.ApiKeys = slices.Repeat([]string{"***"}, len(config.ApiKeys))
		data = config
		title = "Configuration"
	default:
		data = map[string]string{
			"error": "Please use one of the following: overview, trend, continents, severity, countries, cache, config.",
		}
		title = "Choose a data type"
	}

	writeDebugData(w, r, title, data)
}

package restapi

import (
	"net/http"

	"covidtracker.io/internal/choropleth"
	"covidtracker.io/internal/models"
	"covidtracker.io/internal/utils"
)

func (api *RestAPI) globalHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewEntryResponse(api.Tracker.Overview()))
}

// globalTrendHandler returns worldwide new cases per day
func (api *RestAPI) globalTrendHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewListResponse(api.Tracker.GlobalTrend(), false))
}

func (api *RestAPI) continentsHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewListResponse(api.Tracker.Continents(), false))
}

func (api *RestAPI) countriesHandler(w http.ResponseWriter, r *http.Request) {
	names, err := api.Tracker.Countries(r.Context())
	if err != nil {
		api.upstreamErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewListResponse(names, false))
}

// mapHandler returns the fill colour of every country for the world map
func (api *RestAPI) mapHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewListResponse(api.Tracker.MapSeverity(), false))
}

// mapCountryHandler returns the fill of one geography of the world atlas,
// translating atlas names to API names first
func (api *RestAPI) mapCountryHandler(w http.ResponseWriter, r *http.Request) {
	name := utils.SanitizeInput(utils.ExtractNameFromParams(r, "name"))
	entry, ok := choropleth.Lookup(api.Tracker.MapSeverity(), name)
	if !ok {
		api.sendNotFound(w, r)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry))
}

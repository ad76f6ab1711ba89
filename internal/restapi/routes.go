package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func validateAPIKey(api *RestAPI, finalHandler http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	})
}

func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.Handler(http.MethodGet, "/api/v1/current-time.json", validateAPIKey(api, api.currentTimeHandler))
	router.Handler(http.MethodGet, "/api/v1/global.json", validateAPIKey(api, api.globalHandler))
	router.Handler(http.MethodGet, "/api/v1/global-trend.json", validateAPIKey(api, api.globalTrendHandler))
	router.Handler(http.MethodGet, "/api/v1/continents.json", validateAPIKey(api, api.continentsHandler))
	router.Handler(http.MethodGet, "/api/v1/countries.json", validateAPIKey(api, api.countriesHandler))
	router.Handler(http.MethodGet, "/api/v1/country/:name", validateAPIKey(api, api.countryHandler))
	router.Handler(http.MethodGet, "/api/v1/compare.json", validateAPIKey(api, api.compareHandler))
	router.Handler(http.MethodGet, "/api/v1/map.json", validateAPIKey(api, api.mapHandler))
	router.Handler(http.MethodGet, "/api/v1/map/:name", validateAPIKey(api, api.mapCountryHandler))
	router.HandlerFunc(http.MethodGet, "/healthz", api.healthHandler)

	router.NotFound = http.HandlerFunc(api.sendNotFound)
	router.HandleMethodNotAllowed = false
}

package restapi

import (
	"errors"
	"net/http"
	"time"

	"covidtracker.io/internal/appconf"
	"covidtracker.io/internal/models"
	"covidtracker.io/internal/series"
	"covidtracker.io/internal/tracker"
	"covidtracker.io/internal/utils"
)

var errAllComparisonsFailed = errors.New("no selected country could be fetched")

// compareHandler merges the history and forecast of up to
// MaxCompareCountries countries into chart rows
func (api *RestAPI) compareHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	countries := utils.ParseListParam(query, "countries")
	days, fieldErrors := utils.ParseIntParam(query, "days", api.Config.DefaultForecastDays, nil)
	strict, fieldErrors := utils.ParseBoolParam(query, "strict", false, fieldErrors)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	fieldErrors = utils.ValidateCompareParams(countries, api.Config.MaxCompareCountries,
		days, appconf.MinForecastDays, appconf.MaxForecastDays)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	comparison, err := api.Tracker.Compare(r.Context(), tracker.CompareRequest{
		Countries: countries,
		Days:      days,
		Strict:    strict,
	})
	if err != nil {
		var dup *tracker.DuplicateSelectionError
		switch {
		case errors.As(err, &dup):
			api.validationErrorResponse(w, r, map[string][]string{"countries": {dup.Error()}})
		case errors.Is(err, tracker.ErrNoCountries), errors.Is(err, tracker.ErrTooManyCountries):
			api.validationErrorResponse(w, r, map[string][]string{"countries": {err.Error()}})
		case errors.Is(err, tracker.ErrInvalidDays):
			api.validationErrorResponse(w, r, map[string][]string{"days": {err.Error()}})
		case errors.Is(err, series.ErrLengthMismatch):
			api.badGatewayResponse(w, r, err)
		case errors.Is(err, series.ErrKeyCollision):
			api.serverErrorResponse(w, r, err)
		default:
			api.upstreamErrorResponse(w, r, err)
		}
		return
	}

	if len(comparison.Entities) == 0 && len(comparison.Failed) > 0 {
		api.badGatewayResponse(w, r, errAllComparisonsFailed)
		return
	}

	entry := models.ComparisonEntry{
		Days:        comparison.Days,
		Today:       time.Now().UTC().Format(time.DateOnly),
		Entities:    comparison.Entities,
		Rows:        comparison.Flat,
		Diagnostics: comparison.Diagnostics,
		Failed:      comparison.Failed,
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry))
}

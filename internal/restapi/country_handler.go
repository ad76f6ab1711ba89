package restapi

import (
	"net/http"

	"covidtracker.io/internal/models"
	"covidtracker.io/internal/utils"
)

func (api *RestAPI) countryHandler(w http.ResponseWriter, r *http.Request) {
	name := utils.SanitizeInput(utils.ExtractNameFromParams(r, "name"))
	province := utils.SanitizeInput(r.URL.Query().Get("province"))

	fieldErrors := make(map[string][]string)
	if err := utils.ValidateCountryName(name); err != nil {
		fieldErrors["name"] = append(fieldErrors["name"], err.Error())
	}
	if err := utils.ValidateProvince(province); err != nil {
		fieldErrors["province"] = append(fieldErrors["province"], err.Error())
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	detail, err := api.Tracker.CountryDetail(r.Context(), name, province)
	if err != nil {
		api.upstreamErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewEntryResponse(detail))
}

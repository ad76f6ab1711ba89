package restapi

import (
	"net/http"
	"time"

	"covidtracker.io/internal/models"
)

type healthStatus struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	SnapshotAge string `json:"snapshotAge,omitempty"`
}

// healthHandler reports liveness. It needs no API key.
func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := healthStatus{
		Status:      "ok",
		Environment: api.Config.Env.String(),
	}
	if api.Tracker != nil {
		if updated := api.Tracker.Snapshot().UpdatedAt; !updated.IsZero() {
			status.SnapshotAge = time.Since(updated).Round(time.Second).String()
		} else {
			status.Status = "degraded"
		}
	}
	api.sendResponse(w, r, models.NewEntryResponse(status))
}

package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"covidtracker.io/internal/logging"
	"covidtracker.io/internal/models"
	"covidtracker.io/internal/upstream"
)

// errorBody is the envelope of error responses; it carries no data
type errorBody struct {
	Code        int    `json:"code"`
	CurrentTime int64  `json:"currentTime"`
	Text        string `json:"text"`
	Version     int    `json:"version"`
}

func (api *RestAPI) errorResponse(w http.ResponseWriter, r *http.Request, status int, text string) {
	setJSONResponseType(w)
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(errorBody{
		Code:        status,
		CurrentTime: models.ResponseCurrentTime(),
		Text:        text,
		Version:     1,
	})
	if err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to encode error response", err)
	}
}

// invalidAPIKeyResponse sends a 401 Unauthorized response for a missing or unknown key
func (api *RestAPI) invalidAPIKeyResponse(w http.ResponseWriter, r *http.Request) {
	api.errorResponse(w, r, http.StatusUnauthorized, "permission denied")
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(logging.FromContext(r.Context()), "internal server error", err,
		slog.String("path", r.URL.Path))
	api.errorResponse(w, r, http.StatusInternalServerError, "internal server error")
}

func (api *RestAPI) badGatewayResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(logging.FromContext(r.Context()), "upstream request failed", err,
		slog.String("path", r.URL.Path))
	api.errorResponse(w, r, http.StatusBadGateway, "bad gateway")
}

// upstreamErrorResponse maps a failed upstream call onto 404, 502 or, when the
// client went away, nothing at all
func (api *RestAPI) upstreamErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, upstream.ErrNotFound):
		api.sendNotFound(w, r)
	case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
		logging.LogOperation(logging.FromContext(r.Context()), "request_cancelled_by_client",
			slog.String("path", r.URL.Path))
	default:
		api.badGatewayResponse(w, r, err)
	}
}

// validationErrorResponse sends a 400 Bad Request response with field-specific validation errors
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	response := struct {
		FieldErrors map[string][]string `json:"fieldErrors"`
	}{
		FieldErrors: fieldErrors,
	}

	setJSONResponseType(w)
	w.WriteHeader(http.StatusBadRequest)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to encode validation error response", err)
	}
}

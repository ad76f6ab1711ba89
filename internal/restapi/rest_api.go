package restapi

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"covidtracker.io/internal/app"
)

type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
}

// NewRestAPI creates a new RestAPI instance with initialized rate limiter
func NewRestAPI(app *app.Application) *RestAPI {
	return &RestAPI{
		Application: app,
		rateLimiter: NewRateLimitMiddleware(app.Config.RateLimit, time.Second),
	}
}

// Handler returns the router wrapped in the middleware chain:
// request logging, security headers, compression, rate limiting.
func (api *RestAPI) Handler(extra ...func(*httprouter.Router)) http.Handler {
	router := httprouter.New()
	api.SetRoutes(router)
	for _, register := range extra {
		register(router)
	}

	var handler http.Handler = router
	if api.rateLimiter != nil {
		handler = api.rateLimiter.Handler(handler)
	}
	handler = CompressionMiddleware(handler)
	handler = api.WithSecurityHeaders(handler)
	handler = NewRequestLoggingMiddleware(api.Logger)(handler)
	return handler
}

// Shutdown stops background work owned by the API
func (api *RestAPI) Shutdown() {
	if api.rateLimiter != nil {
		api.rateLimiter.Stop()
	}
}

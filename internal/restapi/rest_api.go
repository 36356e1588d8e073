// Package restapi exposes the ticket office as a JSON API under /api/.
package restapi

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"mmt.ticketoffice.org/internal/app"
)

type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
	sessions    *searchSessions
}

// NewRestAPI creates a new RestAPI instance with initialized rate limiter
func NewRestAPI(app *app.Application) *RestAPI {
	return &RestAPI{
		Application: app,
		rateLimiter: NewRateLimitMiddleware(app.Config.RateLimit, time.Second),
		sessions:    newSearchSessions(defaultSearchTTL),
	}
}

// Handler wraps router with the middleware chain shared by every endpoint.
// The outermost layer logs, so rejected and compressed responses are logged
// too.
func (api *RestAPI) Handler(router *httprouter.Router) http.Handler {
	var handler http.Handler = router
	handler = api.rateLimiter.Handler(handler)
	handler = CompressionMiddleware(handler)
	handler = api.WithSecurityHeaders(handler)
	return NewRequestLoggingMiddleware(api.Logger)(handler)
}

// Close stops background work started by NewRestAPI.
func (api *RestAPI) Close() {
	api.rateLimiter.Stop()
}

package app

import (
	"net/http"
	"slices"
)

// APIKeyHeader carries the key when it is not given as the "key" query
// parameter.
const APIKeyHeader = "X-API-Key"

// RequestAPIKey returns the key of a request, query parameter first.
func RequestAPIKey(r *http.Request) string {
	if key := r.URL.Query().Get("key"); key != "" {
		return key
	}
	return r.Header.Get(APIKeyHeader)
}

func (app *Application) RequestHasInvalidAPIKey(r *http.Request) bool {
	return app.IsInvalidAPIKey(RequestAPIKey(r))
}

func (app *Application) IsInvalidAPIKey(key string) bool {
	if key == "" {
		return true
	}
	return !slices.Contains(app.Config.ApiKeys, key)
}

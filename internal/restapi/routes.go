package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request)

func validateAPIKey(api *RestAPI, finalHandler handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	})
}

func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.Handler(http.MethodGet, "/api/current-time", validateAPIKey(api, api.currentTimeHandler))

	router.Handler(http.MethodGet, "/api/services", validateAPIKey(api, api.servicesHandler))
	router.Handler(http.MethodGet, "/api/services/:id", validateAPIKey(api, api.serviceHandler))
	router.Handler(http.MethodGet, "/api/stations/:name/departures", validateAPIKey(api, api.departuresHandler))
	router.Handler(http.MethodGet, "/api/stations/:name/arrivals", validateAPIKey(api, api.arrivalsHandler))

	router.Handler(http.MethodGet, "/api/passengers", validateAPIKey(api, api.passengersHandler))
	router.Handler(http.MethodPost, "/api/passengers", validateAPIKey(api, api.registerPassengerHandler))
	router.Handler(http.MethodDelete, "/api/passengers", validateAPIKey(api, api.resetPassengersHandler))
	router.Handler(http.MethodGet, "/api/passengers/:id", validateAPIKey(api, api.passengerHandler))
	router.Handler(http.MethodPut, "/api/passengers/:id", validateAPIKey(api, api.renamePassengerHandler))
	router.Handler(http.MethodGet, "/api/passengers/:id/itineraries", validateAPIKey(api, api.passengerItinerariesHandler))
	router.Handler(http.MethodGet, "/api/passengers/:id/search", validateAPIKey(api, api.searchHandler))
	router.Handler(http.MethodPost, "/api/passengers/:id/commit", validateAPIKey(api, api.commitHandler))

	router.Handler(http.MethodGet, "/api/itineraries", validateAPIKey(api, api.itinerariesHandler))

	router.Handler(http.MethodPost, "/api/import", validateAPIKey(api, api.importHandler))
	router.Handler(http.MethodGet, "/api/export", validateAPIKey(api, api.exportHandler))
	router.Handler(http.MethodPost, "/api/snapshot", validateAPIKey(api, api.snapshotHandler))

	router.NotFound = http.HandlerFunc(api.sendNotFound)
}

package restapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"mmt.ticketoffice.org/internal/importer"
	"mmt.ticketoffice.org/internal/ledger"
	"mmt.ticketoffice.org/internal/logging"
	"mmt.ticketoffice.org/internal/models"
	"mmt.ticketoffice.org/internal/search"
	"mmt.ticketoffice.org/internal/timetable"
)

// invalidAPIKeyResponse sends a 401 Unauthorized response
func (api *RestAPI) invalidAPIKeyResponse(w http.ResponseWriter, r *http.Request) {
	api.errorResponse(w, r, http.StatusUnauthorized, "permission denied")
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(logging.FromContext(r.Context()), "request failed", err)
	api.errorResponse(w, r, http.StatusInternalServerError, "internal server error")
}

// validationErrorResponse sends a 400 Bad Request response with field-specific validation errors
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	response := struct {
		FieldErrors map[string][]string `json:"fieldErrors"`
	}{
		FieldErrors: fieldErrors,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		api.Logger.Error("failed to encode validation error response", "error", err)
	}
}

// officeErrorResponse maps errors from the ticket office to a status code.
// The error text is safe to show: it only names the offending input.
func (api *RestAPI) officeErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.errorResponse(w, r, status, err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ledger.ErrNoSuchPassenger),
		errors.Is(err, timetable.ErrNoSuchService),
		errors.Is(err, timetable.ErrNoSuchStation):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicateName),
		errors.Is(err, timetable.ErrDuplicateService):
		return http.StatusConflict
	case errors.Is(err, timetable.ErrInvalidDate),
		errors.Is(err, timetable.ErrInvalidTime),
		errors.Is(err, ledger.ErrInvalidChoice),
		errors.Is(err, search.ErrSameStation),
		errors.Is(err, importer.ErrMalformedRecord),
		errors.Is(err, timetable.ErrBadSchedule):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (api *RestAPI) errorResponse(w http.ResponseWriter, r *http.Request, status int, text string) {
	api.sendResponse(w, r, models.NewErrorResponse(status, text))
}

package restapi

import (
	"bytes"
	"errors"
	"net/http"

	"mmt.ticketoffice.org/internal/importer"
	"mmt.ticketoffice.org/internal/logging"
	"mmt.ticketoffice.org/internal/models"
	"mmt.ticketoffice.org/internal/ticketoffice"
)

const maxImportBytes = 10 << 20

type importResult struct {
	Services    int    `json:"services"`
	Passengers  int    `json:"passengers"`
	Itineraries int    `json:"itineraries"`
	Error       string `json:"error,omitempty"`
}

// importHandler reads records from the request body. Records before a
// malformed one stay applied and are reported along with the error.
func (api *RestAPI) importHandler(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)

	var stats importer.Stats
	err := api.WithOffice(func(o *ticketoffice.Office) error {
		var err error
		stats, err = o.Import(body)
		return err
	})

	result := importResult{
		Services:    stats.Services,
		Passengers:  stats.Passengers,
		Itineraries: stats.Itineraries,
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.errorResponse(w, r, http.StatusRequestEntityTooLarge, "import body too large")
			return
		}
		// Unknown ids and duplicate names inside the body are bad input too.
		if statusForError(err) == http.StatusInternalServerError {
			api.serverErrorResponse(w, r, err)
			return
		}
		result.Error = err.Error()
		api.sendResponse(w, r, models.NewResponse(http.StatusBadRequest, map[string]interface{}{"entry": result}, err.Error()))
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(result))
}

// exportHandler writes the state in the record format accepted by import.
func (api *RestAPI) exportHandler(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := api.WithOffice(func(o *ticketoffice.Office) error {
		return o.Export(&buf)
	})
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		logging.LogError(logging.FromContext(r.Context()), "export write failed", err)
	}
}

// snapshotHandler saves the state to the store when it changed.
func (api *RestAPI) snapshotHandler(w http.ResponseWriter, r *http.Request) {
	saved, err := api.Save(r.Context())
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(models.SnapshotResult{Saved: saved}))
}

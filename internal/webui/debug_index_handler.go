package webui

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/davecgh/go-spew/spew"
	"mmt.ticketoffice.org/internal/models"
	"mmt.ticketoffice.org/internal/ticketoffice"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

var dataTypes = []string{"services", "passengers", "itineraries", "state"}

type debugData struct {
	Title string
	Pre   string
	Links []string
}

// officeState summarizes the office for the "state" page.
type officeState struct {
	Services        int
	Passengers      int
	Itineraries     int
	NextPassengerID int
	UnsavedChanges  bool
	StoredRows      map[string]int
}

// tableCounter is implemented by stores that can report their row counts.
type tableCounter interface {
	TableCounts(ctx context.Context) (map[string]int, error)
}

func writeDebugData(w http.ResponseWriter, title string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := debugTemplate.Execute(w, debugData{
		Title: title,
		Pre:   spew.Sdump(data),
		Links: dataTypes,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	dataType := r.URL.Query().Get("dataType")

	var data interface{}
	var title string

	_ = webUI.WithOffice(func(o *ticketoffice.Office) error {
		switch dataType {
		case "services":
			data = models.NewServices(o.Services())
			title = "Services"
		case "passengers":
			data = models.NewPassengers(o.Passengers())
			title = "Passengers"
		case "itineraries":
			var groups []models.PassengerItineraries
			for _, group := range o.AllItineraries() {
				groups = append(groups, models.PassengerItineraries{
					Passenger:   models.NewPassenger(group.Passenger),
					Itineraries: models.NewItineraries(group.Itineraries),
				})
			}
			data = groups
			title = "Itineraries by passenger"
		case "state":
			snap := o.Snapshot()
			state := officeState{
				Services:        len(snap.Services),
				Passengers:      len(snap.Passengers),
				NextPassengerID: snap.NextPassengerID,
				UnsavedChanges:  o.Dirty(),
			}
			for _, p := range snap.Passengers {
				state.Itineraries += len(p.Itineraries)
			}
			data = state
			title = "Office state"
		default:
			data = map[string]string{
				"error": "Please use one of the following: services, passengers, itineraries, state.",
			}
			title = "Choose a data type"
		}
		return nil
	})

	if state, ok := data.(officeState); ok {
		if counter, ok := webUI.Store.(tableCounter); ok {
			counts, err := counter.TableCounts(r.Context())
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			state.StoredRows = counts
			data = state
		}
	}

	writeDebugData(w, title, data)
}

package restapi

import (
	"net/http"

	"mmt.ticketoffice.org/internal/models"
	"mmt.ticketoffice.org/internal/ticketoffice"
	"mmt.ticketoffice.org/internal/timetable"
	"mmt.ticketoffice.org/internal/utils"
)

func (api *RestAPI) servicesHandler(w http.ResponseWriter, r *http.Request) {
	var list []models.Service
	_ = api.WithOffice(func(o *ticketoffice.Office) error {
		list = models.NewServices(o.Services())
		return nil
	})
	api.sendResponse(w, r, models.NewListResponse(list))
}

func (api *RestAPI) serviceHandler(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ExtractIntFromParams(r, "id")
	if err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"id": {err.Error()}})
		return
	}

	var entry models.Service
	err = api.WithOffice(func(o *ticketoffice.Office) error {
		s, err := o.Service(id)
		if err != nil {
			return err
		}
		entry = models.NewService(s)
		return nil
	})
	if err != nil {
		api.officeErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry))
}

// departuresHandler lists the services starting at a station, later
// departures first.
func (api *RestAPI) departuresHandler(w http.ResponseWriter, r *http.Request) {
	api.stationServices(w, r, (*ticketoffice.Office).ServicesDepartingFrom)
}

// arrivalsHandler lists the services ending at a station, later arrivals
// first.
func (api *RestAPI) arrivalsHandler(w http.ResponseWriter, r *http.Request) {
	api.stationServices(w, r, (*ticketoffice.Office).ServicesArrivingAt)
}

func (api *RestAPI) stationServices(w http.ResponseWriter, r *http.Request,
	selectServices func(*ticketoffice.Office, string) ([]*timetable.Service, error)) {
	name := utils.ExtractIDFromParams(r, "name")

	var list []models.Service
	err := api.WithOffice(func(o *ticketoffice.Office) error {
		services, err := selectServices(o, name)
		if err != nil {
			return err
		}
		list = models.NewServices(services)
		return nil
	})
	if err != nil {
		api.officeErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewListResponse(list))
}

package restapi

import (
	"net/http"

	"mmt.ticketoffice.org/internal/models"
	"mmt.ticketoffice.org/internal/ticketoffice"
	"mmt.ticketoffice.org/internal/utils"
)

func (api *RestAPI) passengersHandler(w http.ResponseWriter, r *http.Request) {
	var list []models.Passenger
	_ = api.WithOffice(func(o *ticketoffice.Office) error {
		list = models.NewPassengers(o.Passengers())
		return nil
	})
	api.sendResponse(w, r, models.NewListResponse(list))
}

func (api *RestAPI) passengerHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := api.passengerID(w, r)
	if !ok {
		return
	}

	var entry models.Passenger
	err := api.WithOffice(func(o *ticketoffice.Office) error {
		p, err := o.Passenger(id)
		if err != nil {
			return err
		}
		entry = models.NewPassenger(p)
		return nil
	})
	if err != nil {
		api.officeErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry))
}

func (api *RestAPI) registerPassengerHandler(w http.ResponseWriter, r *http.Request) {
	name, ok := api.passengerName(w, r)
	if !ok {
		return
	}

	var entry models.Passenger
	err := api.WithOffice(func(o *ticketoffice.Office) error {
		p, err := o.RegisterPassenger(name)
		if err != nil {
			return err
		}
		entry = models.NewPassenger(p)
		return nil
	})
	if err != nil {
		api.officeErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewResponse(http.StatusCreated, map[string]interface{}{"entry": entry}, "Created"))
}

func (api *RestAPI) renamePassengerHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := api.passengerID(w, r)
	if !ok {
		return
	}
	name, ok := api.passengerName(w, r)
	if !ok {
		return
	}

	var entry models.Passenger
	err := api.WithOffice(func(o *ticketoffice.Office) error {
		if err := o.RenamePassenger(id, name); err != nil {
			return err
		}
		p, err := o.Passenger(id)
		if err != nil {
			return err
		}
		entry = models.NewPassenger(p)
		return nil
	})
	if err != nil {
		api.officeErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry))
}

// resetPassengersHandler forgets every passenger and itinerary. Services
// stay, pending searches are dropped.
func (api *RestAPI) resetPassengersHandler(w http.ResponseWriter, r *http.Request) {
	_ = api.WithOffice(func(o *ticketoffice.Office) error {
		o.Reset()
		api.sessions.clear()
		return nil
	})
	api.sendResponse(w, r, models.NewListResponse([]models.Passenger{}))
}

func (api *RestAPI) passengerID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := utils.ExtractIntFromParams(r, "id")
	if err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"id": {err.Error()}})
		return 0, false
	}
	return id, true
}

func (api *RestAPI) passengerName(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := utils.SanitizeInput(r.FormValue("name"))
	if err := utils.ValidatePassengerName(name); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"name": {err.Error()}})
		return "", false
	}
	return name, true
}

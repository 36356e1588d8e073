package restapi

import (
	"net/http"

	"mmt.ticketoffice.org/internal/models"
	"mmt.ticketoffice.org/internal/ticketoffice"
)

// passengerItinerariesHandler lists one passenger's itineraries by travel
// date.
func (api *RestAPI) passengerItinerariesHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := api.passengerID(w, r)
	if !ok {
		return
	}

	var list []models.Itinerary
	err := api.WithOffice(func(o *ticketoffice.Office) error {
		itineraries, err := o.PassengerItineraries(id)
		if err != nil {
			return err
		}
		list = models.NewItineraries(itineraries)
		return nil
	})
	if err != nil {
		api.officeErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewListResponse(list))
}

// itinerariesHandler groups all itineraries by passenger. Passengers without
// itineraries are left out.
func (api *RestAPI) itinerariesHandler(w http.ResponseWriter, r *http.Request) {
	list := []models.PassengerItineraries{}
	_ = api.WithOffice(func(o *ticketoffice.Office) error {
		for _, group := range o.AllItineraries() {
			list = append(list, models.PassengerItineraries{
				Passenger:   models.NewPassenger(group.Passenger),
				Itineraries: models.NewItineraries(group.Itineraries),
			})
		}
		return nil
	})
	api.sendResponse(w, r, models.NewListResponse(list))
}

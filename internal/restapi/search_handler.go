package restapi

import (
	"net/http"

	"github.com/google/uuid"
	"mmt.ticketoffice.org/internal/models"
	"mmt.ticketoffice.org/internal/ticketoffice"
	"mmt.ticketoffice.org/internal/utils"
)

// searchHandler runs an itinerary search for a passenger and keeps the
// results under a fresh search id, replacing the passenger's previous search.
//
// Query parameters: from, to, date (YYYY-MM-DD) and time (HH:MM).
func (api *RestAPI) searchHandler(w http.ResponseWriter, r *http.Request) {
	passengerID, ok := api.passengerID(w, r)
	if !ok {
		return
	}

	params := r.URL.Query()
	from, fieldErrors := utils.RequireParam(params, "from", nil)
	to, fieldErrors := utils.RequireParam(params, "to", fieldErrors)
	date, fieldErrors := utils.RequireParam(params, "date", fieldErrors)
	after, fieldErrors := utils.RequireParam(params, "time", fieldErrors)
	for key, name := range map[string]string{"from": from, "to": to} {
		if name == "" {
			continue
		}
		if err := utils.ValidateStationName(name); err != nil {
			fieldErrors[key] = append(fieldErrors[key], err.Error())
		}
	}
	if date != "" {
		if err := utils.ValidateDate(date); err != nil {
			fieldErrors["date"] = append(fieldErrors["date"], err.Error())
		}
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	var result models.SearchResult
	err := api.WithOffice(func(o *ticketoffice.Office) error {
		results, err := o.Search(passengerID, from, to, date, after)
		if err != nil {
			return err
		}
		id := api.sessions.store(passengerID, results)
		result = models.SearchResult{
			SearchID:    id.String(),
			PassengerID: passengerID,
			Choices:     models.NewChoices(results),
		}
		return nil
	})
	if err != nil {
		api.officeErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(result))
}

// commitHandler attaches one offered itinerary to the passenger. Choice 0
// cancels. Either way the search is consumed. An out of range choice keeps
// the search so the passenger can choose again.
//
// Form parameters: searchId and choice.
func (api *RestAPI) commitHandler(w http.ResponseWriter, r *http.Request) {
	passengerID, ok := api.passengerID(w, r)
	if !ok {
		return
	}

	fieldErrors := map[string][]string{}
	if err := r.ParseForm(); err != nil {
		fieldErrors["body"] = append(fieldErrors["body"], "Invalid form body.")
	}
	rawID, fieldErrors := utils.RequireParam(r.Form, "searchId", fieldErrors)
	_, hasChoice := r.Form["choice"]
	choice, fieldErrors := utils.ParseIntParam(r.Form, "choice", 0, fieldErrors)
	if !hasChoice {
		fieldErrors["choice"] = append(fieldErrors["choice"], `Missing required field "choice".`)
	}
	searchID, err := uuid.Parse(rawID)
	if rawID != "" && err != nil {
		fieldErrors["searchId"] = append(fieldErrors["searchId"], `Invalid field value for field "searchId".`)
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	var result models.CommitResult
	found := true
	err = api.WithOffice(func(o *ticketoffice.Office) error {
		if _, err := o.Passenger(passengerID); err != nil {
			return err
		}
		offered, ok := api.sessions.get(passengerID, searchID)
		if !ok {
			found = false
			return nil
		}
		it, err := o.Commit(passengerID, offered, choice)
		if err != nil {
			return err
		}
		api.sessions.remove(passengerID)

		p, err := o.Passenger(passengerID)
		if err != nil {
			return err
		}
		result.Passenger = models.NewPassenger(p)
		if it != nil {
			entry := models.NewItinerary(it)
			result.Committed = true
			result.Itinerary = &entry
		}
		return nil
	})
	if err != nil {
		api.officeErrorResponse(w, r, err)
		return
	}
	if !found {
		api.errorResponse(w, r, http.StatusNotFound, "unknown or expired search "+searchID.String())
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(result))
}

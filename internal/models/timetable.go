package models

import (
	"time"

	"mmt.ticketoffice.org/internal/timetable"
)

type Station struct {
	Name string `json:"name"`
	Time string `json:"time"`
}

type Service struct {
	ID              int       `json:"id"`
	Cost            float64   `json:"cost"`
	Departure       Station   `json:"departure"`
	Arrival         Station   `json:"arrival"`
	DurationMinutes int64     `json:"durationMinutes"`
	Stations        []Station `json:"stations"`
}

// Segment is the part of a service a passenger travels on. FirstIndex and
// LastIndex are stop positions within the service.
type Segment struct {
	ServiceID  int       `json:"serviceId"`
	FirstIndex int       `json:"firstIndex"`
	LastIndex  int       `json:"lastIndex"`
	Cost       float64   `json:"cost"`
	Stations   []Station `json:"stations"`
}

type Itinerary struct {
	Date            string    `json:"date"`
	Departure       Station   `json:"departure"`
	Arrival         Station   `json:"arrival"`
	Cost            float64   `json:"cost"`
	DurationMinutes int64     `json:"durationMinutes"`
	ServiceIDs      []int     `json:"serviceIds"`
	Segments        []Segment `json:"segments"`
}

// Choice is an itinerary offered by a search together with the 1-based
// number used to commit it.
type Choice struct {
	Choice    int       `json:"choice"`
	Itinerary Itinerary `json:"itinerary"`
}

func NewStation(st timetable.Station) Station {
	return Station{Name: st.Name, Time: st.Time.String()}
}

func newStations(list []timetable.Station) []Station {
	out := make([]Station, len(list))
	for i, st := range list {
		out[i] = NewStation(st)
	}
	return out
}

func NewService(s *timetable.Service) Service {
	return Service{
		ID:              s.ID,
		Cost:            s.Cost,
		Departure:       NewStation(s.Departure()),
		Arrival:         NewStation(s.Arrival()),
		DurationMinutes: int64(s.Duration() / time.Minute),
		Stations:        newStations(s.Stations()),
	}
}

func NewServices(list []*timetable.Service) []Service {
	out := make([]Service, 0, len(list))
	for _, s := range list {
		out = append(out, NewService(s))
	}
	return out
}

func NewSegment(seg timetable.Segment) Segment {
	return Segment{
		ServiceID:  seg.ServiceID(),
		FirstIndex: seg.FirstIndex(),
		LastIndex:  seg.LastIndex(),
		Cost:       seg.Cost(),
		Stations:   newStations(seg.Stations()),
	}
}

func NewItinerary(it *timetable.Itinerary) Itinerary {
	segments := make([]Segment, 0, it.Len())
	for _, seg := range it.Segments() {
		segments = append(segments, NewSegment(seg))
	}
	return Itinerary{
		Date:            it.Date.Format(time.DateOnly),
		Departure:       NewStation(it.Departure()),
		Arrival:         NewStation(it.Arrival()),
		Cost:            it.Cost(),
		DurationMinutes: int64(it.Duration() / time.Minute),
		ServiceIDs:      it.ServiceIDs(),
		Segments:        segments,
	}
}

func NewItineraries(list []*timetable.Itinerary) []Itinerary {
	out := make([]Itinerary, 0, len(list))
	for _, it := range list {
		out = append(out, NewItinerary(it))
	}
	return out
}

// NewChoices numbers the itineraries from 1 in the order given.
func NewChoices(list []*timetable.Itinerary) []Choice {
	out := make([]Choice, 0, len(list))
	for i, it := range list {
		out = append(out, Choice{Choice: i + 1, Itinerary: NewItinerary(it)})
	}
	return out
}

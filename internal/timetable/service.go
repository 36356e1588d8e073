package timetable

import (
	"fmt"
	"strings"
	"time"
)

// Service is one timetabled train run: an ordered, chronological list of
// stops with a single fare for the whole run.
type Service struct {
	ID       int
	Cost     float64
	stations []Station
}

// NewService validates that the run has at least one stop and that stop
// times never go backwards.
func NewService(id int, cost float64, stations ...Station) (*Service, error) {
	if len(stations) == 0 {
		return nil, fmt.Errorf("%w: service %d has no stations", ErrBadSchedule, id)
	}
	for i := 1; i < len(stations); i++ {
		if stations[i].Time < stations[i-1].Time {
			return nil, fmt.Errorf("%w: service %d goes back in time at %s",
				ErrBadSchedule, id, stations[i])
		}
	}
	owned := make([]Station, len(stations))
	copy(owned, stations)
	return &Service{ID: id, Cost: cost, stations: owned}, nil
}

// MustService is NewService for fixtures that are known to be valid.
func MustService(id int, cost float64, stations ...Station) *Service {
	s, err := NewService(id, cost, stations...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Service) Len() int { return len(s.stations) }

// At returns the i-th timed occurrence of the run.
func (s *Service) At(i int) Station { return s.stations[i] }

// Stations returns a copy of the stop sequence.
func (s *Service) Stations() []Station {
	out := make([]Station, len(s.stations))
	copy(out, s.stations)
	return out
}

func (s *Service) Departure() Station { return s.stations[0] }

func (s *Service) Arrival() Station { return s.stations[len(s.stations)-1] }

// Duration is the time between the first and the last stop.
func (s *Service) Duration() time.Duration {
	return s.Departure().Time.Until(s.Arrival().Time)
}

// HasStation reports whether the run stops at the named station.
func (s *Service) HasStation(name string) bool {
	return s.IndexOf(name, 0) >= 0
}

// IndexOf returns the position of the first occurrence of name at or after
// from, or -1.
func (s *Service) IndexOf(name string, from int) int {
	for i := max(from, 0); i < len(s.stations); i++ {
		if s.stations[i].Name == name {
			return i
		}
	}
	return -1
}

func (s *Service) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Service #%d @ %.2f", s.ID, s.Cost)
	for _, st := range s.stations {
		b.WriteString("\n")
		b.WriteString(st.String())
	}
	return b.String()
}

// Selector classifies a service against a station name.
type Selector func(s *Service, name string) bool

// DepartsFrom selects services whose first stop is the named station.
func DepartsFrom(s *Service, name string) bool { return s.Departure().Name == name }

// ArrivesAt selects services whose last stop is the named station.
func ArrivesAt(s *Service, name string) bool { return s.Arrival().Name == name }

// ByDeparture orders services for the departures board: the later departure
// comes first, equal times fall back to ascending id.
func ByDeparture(a, b *Service) int {
	return laterFirst(a.Departure().Time, b.Departure().Time, a.ID, b.ID)
}

// ByArrival orders services for the arrivals board, later arrival first.
func ByArrival(a, b *Service) int {
	return laterFirst(a.Arrival().Time, b.Arrival().Time, a.ID, b.ID)
}

func laterFirst(ta, tb TimeOfDay, ida, idb int) int {
	switch {
	case ta > tb:
		return -1
	case ta < tb:
		return 1
	case ida < idb:
		return -1
	case ida > idb:
		return 1
	}
	return 0
}

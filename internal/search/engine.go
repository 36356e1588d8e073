// Package search finds itineraries between two stations over a read-only
// service directory.
//
// A search starts from every service stopping at the departure station no
// earlier than the requested time and follows connections recursively. Each
// service is used at most once per path. At every transfer point only the
// most direct continuations (fewest segments) survive, and among those the
// best by timetable.Compare is kept. The final list holds one itinerary per
// starting service, sorted by timetable.Compare.
package search

import (
	"errors"
	"math"
	"slices"
	"time"

	"mmt.ticketoffice.org/internal/timetable"
)

// ErrSameStation is returned when a query departs from and arrives at the
// same station.
var ErrSameStation = errors.New("departure and arrival are the same station")

// Query describes one search on one travel date.
type Query struct {
	Departure string
	After     timetable.TimeOfDay
	Arrival   string
	Date      time.Time
}

// Results is the ranked outcome of a search. Choices are 1-based when
// presented to a passenger.
type Results []*timetable.Itinerary

// Choice returns the itinerary for a 1-based choice number.
func (r Results) Choice(n int) (*timetable.Itinerary, bool) {
	if n < 1 || n > len(r) {
		return nil, false
	}
	return r[n-1], true
}

type Engine struct {
	directory *timetable.Directory
}

func NewEngine(directory *timetable.Directory) *Engine {
	return &Engine{directory: directory}
}

// Search runs the full search and only then reports unknown station names,
// one error per missing name. An empty result with a nil error means both
// stations exist but no timed connection does.
func (e *Engine) Search(q Query) (Results, error) {
	if q.Departure == q.Arrival {
		return nil, ErrSameStation
	}
	w := &walk{
		directory: e.directory,
		ids:       e.directory.IDs(),
		query:     q,
		used:      make(map[int]bool),
	}

	var results Results
	hasDeparture := false
	for _, id := range w.ids {
		service := w.service(id)
		var candidates []*timetable.Itinerary
		for i := 0; i < service.Len(); i++ {
			stop := service.At(i)
			if stop.Name != q.Departure {
				continue
			}
			hasDeparture = true
			if !notBefore(q.After, stop.Time) {
				continue
			}

			w.used[id] = true
			it := w.extend(nil, service, i)
			delete(w.used, id)

			if it != nil {
				candidates = append(candidates, it)
			}
		}
		if len(candidates) > 0 {
			results = append(results, slices.MinFunc(candidates, timetable.Compare))
		}
	}

	var errs []error
	if !hasDeparture {
		errs = append(errs, &timetable.NoSuchStationError{Name: q.Departure})
	}
	if len(results) == 0 && !e.directory.HasStation(q.Arrival) {
		errs = append(errs, &timetable.NoSuchStationError{Name: q.Arrival})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	timetable.SortItineraries(results)
	return results, nil
}

// walk carries the state of one search. used marks the services on the
// current path and is restored after every descent.
type walk struct {
	directory *timetable.Directory
	ids       []int
	query     Query
	used      map[int]bool
}

func (w *walk) service(id int) *timetable.Service {
	s, err := w.directory.Service(id)
	if err != nil {
		panic(err)
	}
	return s
}

// extend continues a path that boarded service at position board after the
// segments already travelled. It returns nil when the arrival cannot be
// reached from here.
func (w *walk) extend(travelled []timetable.Segment, service *timetable.Service, board int) *timetable.Itinerary {
	boarding := service.At(board)

	// A service that stops at the destination either reaches it from here
	// or ends the path; no further transfers are tried.
	if service.HasStation(w.query.Arrival) {
		for i := board; i < service.Len(); i++ {
			stop := service.At(i)
			if stop.Name == w.query.Arrival && notBefore(boarding.Time, stop.Time) {
				return timetable.NewItinerary(w.query.Date,
					withSegment(travelled, timetable.NewSegment(service, board, i))...)
			}
		}
		return nil
	}

	var best []*timetable.Itinerary
	fewest := math.MaxInt
	origin := service.Departure().Name

	for j := board + 1; j < service.Len(); j++ {
		transfer := service.At(j)
		if transfer.Name == origin {
			continue
		}
		leg := timetable.NewSegment(service, board, j)

		for _, id := range w.ids {
			if w.used[id] {
				continue
			}
			next := w.service(id)
			if !next.HasStation(transfer.Name) {
				continue
			}
			for k := 0; k < next.Len(); k++ {
				connection := next.At(k)
				if connection.Name != transfer.Name || !notBefore(transfer.Time, connection.Time) {
					continue
				}

				w.used[id] = true
				it := w.extend(withSegment(travelled, leg), next, k)
				delete(w.used, id)

				if it != nil {
					switch {
					case it.Len() < fewest:
						fewest = it.Len()
						best = []*timetable.Itinerary{it}
					case it.Len() == fewest:
						best = append(best, it)
					}
				}
				break
			}
		}
	}

	if len(best) == 0 {
		return nil
	}
	return slices.MinFunc(best, timetable.Compare)
}

// withSegment returns a new slice so sibling branches never share storage.
func withSegment(travelled []timetable.Segment, s timetable.Segment) []timetable.Segment {
	out := make([]timetable.Segment, len(travelled), len(travelled)+1)
	copy(out, travelled)
	return append(out, s)
}

// notBefore compares at minute resolution.
func notBefore(from, to timetable.TimeOfDay) bool {
	return from.Until(to)/time.Minute >= 0
}

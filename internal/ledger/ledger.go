// Package ledger keeps the registered passengers and commits itineraries to
// them.
package ledger

import (
	"maps"
	"slices"

	"mmt.ticketoffice.org/internal/timetable"
)

// Ledger maps passenger ids to passengers. Ids are handed out sequentially
// from zero and never reused.
type Ledger struct {
	passengers map[int]*Passenger
	nextID     int
}

func New() *Ledger {
	return &Ledger{passengers: make(map[int]*Passenger)}
}

// Restore rebuilds a ledger from persisted passengers. nextID must be past
// every restored id.
func Restore(passengers []*Passenger, nextID int) *Ledger {
	l := New()
	for _, p := range passengers {
		l.passengers[p.ID] = p
		nextID = max(nextID, p.ID+1)
	}
	l.nextID = nextID
	return l
}

func (l *Ledger) NextID() int { return l.nextID }

func (l *Ledger) Len() int { return len(l.passengers) }

// Register creates a Normal passenger with the next id. Names are unique
// and compared exactly.
func (l *Ledger) Register(name string) (*Passenger, error) {
	if l.nameTaken(name, -1) {
		return nil, &DuplicateNameError{Name: name}
	}
	p := newPassenger(l.nextID, name)
	l.passengers[p.ID] = p
	l.nextID++
	return p, nil
}

// Rename changes a passenger's name; the new name must not belong to any
// other passenger.
func (l *Ledger) Rename(id int, name string) error {
	p, err := l.Passenger(id)
	if err != nil {
		return err
	}
	if l.nameTaken(name, id) {
		return &DuplicateNameError{Name: name}
	}
	p.Name = name
	return nil
}

func (l *Ledger) nameTaken(name string, except int) bool {
	for id, p := range l.passengers {
		if id != except && p.Name == name {
			return true
		}
	}
	return false
}

func (l *Ledger) Passenger(id int) (*Passenger, error) {
	p, ok := l.passengers[id]
	if !ok {
		return nil, &NoSuchPassengerError{ID: id}
	}
	return p, nil
}

// Passengers lists every passenger by ascending id.
func (l *Ledger) Passengers() []*Passenger {
	ids := slices.Sorted(maps.Keys(l.passengers))
	out := make([]*Passenger, len(ids))
	for i, id := range ids {
		out[i] = l.passengers[id]
	}
	return out
}

// WithItineraries lists, by ascending id, the passengers that have
// committed at least one itinerary.
func (l *Ledger) WithItineraries() []*Passenger {
	var out []*Passenger
	for _, p := range l.Passengers() {
		if p.ItineraryCount() > 0 {
			out = append(out, p)
		}
	}
	return out
}

// Commit attaches the chosen itinerary from a search to the passenger.
// Choice 0 cancels and changes nothing; other choices are 1-based. The
// committed itinerary is returned, or nil on cancel.
func (l *Ledger) Commit(passengerID int, offered []*timetable.Itinerary, choice int) (*timetable.Itinerary, error) {
	p, err := l.Passenger(passengerID)
	if err != nil {
		return nil, err
	}
	if choice == 0 {
		return nil, nil
	}
	if choice < 1 || choice > len(offered) {
		return nil, &InvalidChoiceError{PassengerID: passengerID, Choice: choice, Available: len(offered)}
	}
	it := offered[choice-1]
	p.AddItinerary(it)
	return it, nil
}

// AddItinerary commits an itinerary built outside a search, as done by the
// record importer.
func (l *Ledger) AddItinerary(passengerID int, it *timetable.Itinerary) error {
	p, err := l.Passenger(passengerID)
	if err != nil {
		return err
	}
	p.AddItinerary(it)
	return nil
}

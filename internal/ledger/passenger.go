package ledger

import (
	"fmt"
	"slices"
	"time"

	"mmt.ticketoffice.org/internal/fares"
	"mmt.ticketoffice.org/internal/timetable"
)

// Passenger owns its committed itineraries and the running totals derived
// from them.
type Passenger struct {
	ID          int
	Name        string
	Category    fares.Category
	MoneySpent  float64
	TimeSpent   time.Duration
	itineraries []*timetable.Itinerary
}

func newPassenger(id int, name string) *Passenger {
	return &Passenger{ID: id, Name: name, Category: fares.NewCategory()}
}

// RestorePassenger rebuilds a passenger from persisted totals without
// replaying fares.
func RestorePassenger(id int, name string, category fares.Category, moneySpent float64,
	timeSpent time.Duration, itineraries []*timetable.Itinerary) *Passenger {
	return &Passenger{
		ID:          id,
		Name:        name,
		Category:    category,
		MoneySpent:  moneySpent,
		TimeSpent:   timeSpent,
		itineraries: slices.Clone(itineraries),
	}
}

// AddItinerary commits an itinerary. The charge uses the category held
// before this commit; the rolling window then gains the new fare and loses
// the fare of the itinerary that dropped out of the last ten.
func (p *Passenger) AddItinerary(it *timetable.Itinerary) {
	fare := it.Cost()

	p.itineraries = append(p.itineraries, it)
	p.MoneySpent += p.Category.Discount(fare)
	p.TimeSpent += it.Duration()

	delta := fare
	if n := len(p.itineraries); n > fares.WindowSize {
		delta -= p.itineraries[n-fares.WindowSize-1].Cost()
	}
	p.Category = p.Category.Apply(delta)
}

// Itineraries returns the committed itineraries in commit order.
func (p *Passenger) Itineraries() []*timetable.Itinerary {
	return slices.Clone(p.itineraries)
}

// ItinerariesByDate returns the committed itineraries sorted by travel date;
// itineraries on the same date keep their commit order.
func (p *Passenger) ItinerariesByDate() []*timetable.Itinerary {
	out := slices.Clone(p.itineraries)
	slices.SortStableFunc(out, timetable.CompareByDate)
	return out
}

func (p *Passenger) ItineraryCount() int { return len(p.itineraries) }

// FormatTimeSpent renders the accumulated travel time as HH:MM.
func (p *Passenger) FormatTimeSpent() string {
	minutes := int64(p.TimeSpent / time.Minute)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func (p *Passenger) String() string {
	return fmt.Sprintf("%d|%s|%s|%d|%.2f|%s",
		p.ID, p.Name, p.Category, len(p.itineraries), p.MoneySpent, p.FormatTimeSpent())
}

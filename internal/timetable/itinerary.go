package timetable

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// Itinerary is a journey on one date made of one or more connected segments.
type Itinerary struct {
	Date     time.Time
	segments []Segment
}

func NewItinerary(date time.Time, segments ...Segment) *Itinerary {
	owned := make([]Segment, len(segments))
	copy(owned, segments)
	return &Itinerary{Date: date, segments: owned}
}

// Append adds a segment at the end of the journey.
func (it *Itinerary) Append(s Segment) {
	it.segments = append(it.segments, s)
}

// Len is the number of segments, i.e. the itinerary's directness.
func (it *Itinerary) Len() int { return len(it.segments) }

func (it *Itinerary) Segments() []Segment {
	out := make([]Segment, len(it.segments))
	copy(out, it.segments)
	return out
}

func (it *Itinerary) Cost() float64 {
	var total float64
	for _, s := range it.segments {
		total += s.Cost()
	}
	return total
}

func (it *Itinerary) Departure() Station { return it.segments[0].First() }

func (it *Itinerary) Arrival() Station { return it.segments[len(it.segments)-1].Last() }

// Duration runs from the first boarding to the final arrival, waiting time
// at connections included.
func (it *Itinerary) Duration() time.Duration {
	if len(it.segments) == 0 {
		return 0
	}
	return it.Departure().Time.Until(it.Arrival().Time)
}

// ServiceIDs lists the services used, in travel order.
func (it *Itinerary) ServiceIDs() []int {
	ids := make([]int, len(it.segments))
	for i, s := range it.segments {
		ids[i] = s.ServiceID()
	}
	return ids
}

func (it *Itinerary) String() string {
	var b strings.Builder
	for _, s := range it.segments {
		b.WriteString(s.String())
		b.WriteString("\n")
	}
	return b.String()
}

// Compare ranks itineraries by departure time, then arrival time, then
// cost. Times are compared at minute resolution.
func Compare(a, b *Itinerary) int {
	if c := cmp.Compare(a.Departure().Time.Minutes(), b.Departure().Time.Minutes()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Arrival().Time.Minutes(), b.Arrival().Time.Minutes()); c != 0 {
		return c
	}
	return cmp.Compare(a.Cost(), b.Cost())
}

// CompareByDate orders itineraries by travel date only.
func CompareByDate(a, b *Itinerary) int {
	return a.Date.Compare(b.Date)
}

// SortItineraries sorts in place by Compare, keeping equal entries in order.
func SortItineraries(list []*Itinerary) {
	slices.SortStableFunc(list, Compare)
}

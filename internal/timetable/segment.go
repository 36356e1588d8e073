package timetable

import (
	"fmt"
	"strings"
	"time"
)

// Segment is the fare-bearing part of one service between a boarding and an
// alighting occurrence. Both ends are positions in the service's sequence so
// that repeated station names stay unambiguous.
type Segment struct {
	service *Service
	first   int
	last    int
}

// NewSegment panics when the positions do not describe a forward slice of
// the service; callers resolve positions from the service itself.
func NewSegment(service *Service, first, last int) Segment {
	if service == nil {
		panic("timetable: segment without service")
	}
	if first < 0 || last >= service.Len() || first > last {
		panic(fmt.Sprintf("timetable: invalid segment [%d,%d] on service %d with %d stops",
			first, last, service.ID, service.Len()))
	}
	return Segment{service: service, first: first, last: last}
}

// SegmentBetween resolves station names on the service: the boarding stop is
// the latest occurrence of from that precedes the first following occurrence
// of to.
func SegmentBetween(service *Service, from, to string) (Segment, bool) {
	first := -1
	for i := 0; i < service.Len(); i++ {
		name := service.At(i).Name
		if name == from {
			first = i
		} else if name == to && first >= 0 {
			return NewSegment(service, first, i), true
		}
	}
	return Segment{}, false
}

func (s Segment) Service() *Service { return s.service }

func (s Segment) ServiceID() int { return s.service.ID }

func (s Segment) FirstIndex() int { return s.first }

func (s Segment) LastIndex() int { return s.last }

func (s Segment) First() Station { return s.service.At(s.first) }

func (s Segment) Last() Station { return s.service.At(s.last) }

func (s Segment) Duration() time.Duration {
	return s.First().Time.Until(s.Last().Time)
}

// Cost apportions the service fare linearly over travelled minutes.
// A service that takes no time at all charges its whole fare.
func (s Segment) Cost() float64 {
	total := s.service.Departure().MinutesTo(s.service.Arrival())
	if total == 0 {
		return s.service.Cost
	}
	return float64(s.First().MinutesTo(s.Last())) * s.service.Cost / float64(total)
}

// HasStation scans the whole service by name: the match counts once the
// first stop's name has been seen and stops at the last stop's name. With
// repeated names on one service the first occurrence wins.
func (s Segment) HasStation(name string) bool {
	firstName, lastName := s.First().Name, s.Last().Name
	seenFirst := false
	for i := 0; i < s.service.Len(); i++ {
		current := s.service.At(i).Name
		if current == firstName {
			seenFirst = true
		}
		if current == name && seenFirst {
			return true
		}
		if current == lastName {
			break
		}
	}
	return false
}

// Stations returns the stops travelled on this segment, inclusive.
func (s Segment) Stations() []Station {
	out := make([]Station, 0, s.last-s.first+1)
	for i := s.first; i <= s.last; i++ {
		out = append(out, s.service.At(i))
	}
	return out
}

func (s Segment) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Service #%d @ %.2f", s.service.ID, s.Cost())
	for _, st := range s.Stations() {
		b.WriteString("\n")
		b.WriteString(st.String())
	}
	return b.String()
}

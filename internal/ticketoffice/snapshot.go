package ticketoffice

import (
	"fmt"
	"time"

	"mmt.ticketoffice.org/internal/fares"
	"mmt.ticketoffice.org/internal/ledger"
	"mmt.ticketoffice.org/internal/timetable"
	"mmt.ticketoffice.org/mmtdb"
)

// Snapshot captures services, passengers and committed itineraries.
// Segments are stored by stop position so repeated station names survive.
func (o *Office) Snapshot() mmtdb.Snapshot {
	snap := mmtdb.Snapshot{NextPassengerID: o.passengers.NextID()}

	for _, s := range o.directory.Services() {
		rec := mmtdb.ServiceRecord{ID: s.ID, Cost: s.Cost}
		for _, st := range s.Stations() {
			rec.Stations = append(rec.Stations, mmtdb.StationRecord{Name: st.Name, Time: time.Duration(st.Time)})
		}
		snap.Services = append(snap.Services, rec)
	}

	for _, p := range o.passengers.Passengers() {
		rec := mmtdb.PassengerRecord{
			ID:          p.ID,
			Name:        p.Name,
			Category:    p.Category.Tier.String(),
			RollingCost: p.Category.RollingCost,
			MoneySpent:  p.MoneySpent,
			TimeSpent:   p.TimeSpent,
		}
		for _, it := range p.Itineraries() {
			itRec := mmtdb.ItineraryRecord{Date: it.Date}
			for _, seg := range it.Segments() {
				itRec.Segments = append(itRec.Segments, mmtdb.SegmentRecord{
					ServiceID: seg.ServiceID(),
					First:     seg.FirstIndex(),
					Last:      seg.LastIndex(),
				})
			}
			rec.Itineraries = append(rec.Itineraries, itRec)
		}
		snap.Passengers = append(snap.Passengers, rec)
	}
	return snap
}

// Restore replaces the state with a snapshot. Totals and categories are
// taken as stored, not recomputed. Nothing changes when the snapshot is
// inconsistent.
func (o *Office) Restore(snap mmtdb.Snapshot) error {
	directory := timetable.NewDirectory()
	for _, rec := range snap.Services {
		stations := make([]timetable.Station, len(rec.Stations))
		for i, st := range rec.Stations {
			stations[i] = timetable.NewStation(st.Name, timetable.TimeOfDay(st.Time))
		}
		s, err := timetable.NewService(rec.ID, rec.Cost, stations...)
		if err != nil {
			return fmt.Errorf("restoring service %d: %w", rec.ID, err)
		}
		if err := directory.Add(s); err != nil {
			return fmt.Errorf("restoring service %d: %w", rec.ID, err)
		}
	}

	passengers := make([]*ledger.Passenger, 0, len(snap.Passengers))
	for _, rec := range snap.Passengers {
		tier, err := fares.ParseTier(rec.Category)
		if err != nil {
			return fmt.Errorf("restoring passenger %d: %w", rec.ID, err)
		}
		itineraries := make([]*timetable.Itinerary, 0, len(rec.Itineraries))
		for i, itRec := range rec.Itineraries {
			it, err := restoreItinerary(directory, itRec)
			if err != nil {
				return fmt.Errorf("restoring itinerary %d of passenger %d: %w", i, rec.ID, err)
			}
			itineraries = append(itineraries, it)
		}
		category := fares.Category{Tier: tier, RollingCost: rec.RollingCost}
		passengers = append(passengers, ledger.RestorePassenger(
			rec.ID, rec.Name, category, rec.MoneySpent, rec.TimeSpent, itineraries))
	}

	o.replace(directory, ledger.Restore(passengers, snap.NextPassengerID))
	o.dirty = true
	return nil
}

func restoreItinerary(directory *timetable.Directory, rec mmtdb.ItineraryRecord) (*timetable.Itinerary, error) {
	if len(rec.Segments) == 0 {
		return nil, fmt.Errorf("itinerary on %s has no segments", rec.Date.Format(time.DateOnly))
	}
	it := timetable.NewItinerary(rec.Date)
	for _, seg := range rec.Segments {
		s, err := directory.Service(seg.ServiceID)
		if err != nil {
			return nil, err
		}
		if seg.First < 0 || seg.Last >= s.Len() || seg.First > seg.Last {
			return nil, fmt.Errorf("segment [%d,%d] does not fit service %d", seg.First, seg.Last, s.ID)
		}
		it.Append(timetable.NewSegment(s, seg.First, seg.Last))
	}
	return it, nil
}

package importer

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/jamespfennell/gtfs"
	"mmt.ticketoffice.org/internal/timetable"
)

const serviceDay = 24 * time.Hour

// reservedNameChars separate fields and segment parts in exported records.
const reservedNameChars = "|/"

// GTFSOptions controls how scheduled trips become services.
type GTFSOptions struct {
	// FarePerHour prices each service by its end-to-end running time.
	FarePerHour float64
	// FirstServiceID numbers the imported services. Zero continues after the
	// highest id already in the directory. An explicit start must not run
	// into ids that are already taken.
	FirstServiceID int
}

// GTFSStats summarizes a feed import.
type GTFSStats struct {
	Services int
	// Skipped counts trips that cannot be a service: fewer than two stops,
	// times past the end of the service day, out-of-order stop times or stop
	// names that the record format cannot carry.
	Skipped  int
	Warnings int
}

// ImportGTFS parses a GTFS static zip and adds one service per scheduled
// trip. Trips are taken in trip id order so numbering is stable across runs.
// Nothing is added when a new service id is already taken.
func ImportGTFS(data []byte, directory *timetable.Directory, opts GTFSOptions) (GTFSStats, error) {
	var stats GTFSStats

	static, err := gtfs.ParseStatic(data, gtfs.ParseStaticOptions{})
	if err != nil {
		return stats, fmt.Errorf("parsing GTFS feed: %w", err)
	}
	stats.Warnings = len(static.Warnings)

	nextID := opts.FirstServiceID
	if nextID == 0 && directory.Len() > 0 {
		ids := directory.IDs()
		nextID = ids[len(ids)-1] + 1
	}

	trips := slices.Clone(static.Trips)
	slices.SortFunc(trips, func(a, b gtfs.ScheduledTrip) int {
		return cmp.Compare(a.ID, b.ID)
	})

	var services []*timetable.Service
	for _, trip := range trips {
		stations, ok := tripStations(trip)
		if !ok {
			stats.Skipped++
			continue
		}
		running := stations[0].Time.Until(stations[len(stations)-1].Time)
		service, err := timetable.NewService(nextID, fareFor(running, opts.FarePerHour), stations...)
		if err != nil {
			stats.Skipped++
			continue
		}
		if directory.Has(service.ID) {
			return GTFSStats{}, fmt.Errorf("trip %s: %w", trip.ID, &timetable.DuplicateServiceError{ID: service.ID})
		}
		services = append(services, service)
		nextID++
	}

	for _, service := range services {
		if err := directory.Add(service); err != nil {
			return stats, err
		}
		stats.Services++
	}
	return stats, nil
}

// tripStations converts stop times into stations. The first stop uses its
// departure time and the others their arrival time.
func tripStations(trip gtfs.ScheduledTrip) ([]timetable.Station, bool) {
	if len(trip.StopTimes) < 2 {
		return nil, false
	}
	stopTimes := slices.Clone(trip.StopTimes)
	slices.SortStableFunc(stopTimes, func(a, b gtfs.ScheduledStopTime) int {
		return cmp.Compare(a.StopSequence, b.StopSequence)
	})

	stations := make([]timetable.Station, 0, len(stopTimes))
	for i, st := range stopTimes {
		at := st.ArrivalTime
		if i == 0 {
			at = st.DepartureTime
		}
		if at < 0 || at >= serviceDay || st.Stop == nil {
			return nil, false
		}
		name := st.Stop.Name
		if name == "" {
			name = st.Stop.Id
		}
		if strings.ContainsAny(name, reservedNameChars) {
			return nil, false
		}
		stations = append(stations, timetable.NewStation(name, timetable.TimeOfDay(at)))
	}
	return stations, true
}

func fareFor(running time.Duration, perHour float64) float64 {
	return math.Round(running.Hours()*perHour*100) / 100
}

// Package ticketoffice is the single entry point to the timetable, the
// passenger ledger and the itinerary search. It also tracks whether the
// state changed since it was last saved or loaded.
//
// An Office is not safe for concurrent use.
package ticketoffice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"mmt.ticketoffice.org/internal/importer"
	"mmt.ticketoffice.org/internal/ledger"
	"mmt.ticketoffice.org/internal/logging"
	"mmt.ticketoffice.org/internal/search"
	"mmt.ticketoffice.org/internal/timetable"
	"mmt.ticketoffice.org/mmtdb"
)

// Store persists whole snapshots. mmtdb.Client implements it.
type Store interface {
	SaveSnapshot(ctx context.Context, snap mmtdb.Snapshot) error
	LoadSnapshot(ctx context.Context) (mmtdb.Snapshot, error)
}

type Office struct {
	directory  *timetable.Directory
	passengers *ledger.Ledger
	engine     *search.Engine
	dirty      bool
	logger     *slog.Logger
}

func New(logger *slog.Logger) *Office {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Office{logger: logger}
	o.replace(timetable.NewDirectory(), ledger.New())
	return o
}

func (o *Office) replace(directory *timetable.Directory, passengers *ledger.Ledger) {
	o.directory = directory
	o.passengers = passengers
	o.engine = search.NewEngine(directory)
}

// Dirty reports whether anything changed since the last save or load.
func (o *Office) Dirty() bool { return o.dirty }

func (o *Office) Services() []*timetable.Service {
	return o.directory.Services()
}

func (o *Office) Service(id int) (*timetable.Service, error) {
	return o.directory.Service(id)
}

// ServicesDepartingFrom lists the services whose first stop is name, later
// departures first.
func (o *Office) ServicesDepartingFrom(name string) ([]*timetable.Service, error) {
	return o.directory.DepartingFrom(name)
}

// ServicesArrivingAt lists the services whose last stop is name, later
// arrivals first.
func (o *Office) ServicesArrivingAt(name string) ([]*timetable.Service, error) {
	return o.directory.ArrivingAt(name)
}

func (o *Office) Passengers() []*ledger.Passenger {
	return o.passengers.Passengers()
}

func (o *Office) Passenger(id int) (*ledger.Passenger, error) {
	return o.passengers.Passenger(id)
}

func (o *Office) RegisterPassenger(name string) (*ledger.Passenger, error) {
	p, err := o.passengers.Register(name)
	if err != nil {
		return nil, err
	}
	o.dirty = true
	return p, nil
}

func (o *Office) RenamePassenger(id int, name string) error {
	if err := o.passengers.Rename(id, name); err != nil {
		return err
	}
	o.dirty = true
	return nil
}

// PassengerItineraries returns a passenger's itineraries ordered by travel
// date, commit order within a date.
func (o *Office) PassengerItineraries(id int) ([]*timetable.Itinerary, error) {
	p, err := o.passengers.Passenger(id)
	if err != nil {
		return nil, err
	}
	return p.ItinerariesByDate(), nil
}

// PassengerTrips pairs a passenger with their itineraries by date.
type PassengerTrips struct {
	Passenger   *ledger.Passenger
	Itineraries []*timetable.Itinerary
}

// AllItineraries groups itineraries by passenger id, leaving out passengers
// that have none.
func (o *Office) AllItineraries() []PassengerTrips {
	var out []PassengerTrips
	for _, p := range o.passengers.WithItineraries() {
		out = append(out, PassengerTrips{Passenger: p, Itineraries: p.ItinerariesByDate()})
	}
	return out
}

// Search validates the textual inputs and runs an itinerary search for the
// passenger. The results belong to the caller and are passed back to Commit.
func (o *Office) Search(passengerID int, departure, arrival, date, after string) (search.Results, error) {
	if _, err := o.passengers.Passenger(passengerID); err != nil {
		return nil, err
	}
	day, err := timetable.ParseDate(date)
	if err != nil {
		return nil, err
	}
	notBefore, err := timetable.ParseTimeOfDay(after)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := o.engine.Search(search.Query{
		Departure: departure,
		After:     notBefore,
		Arrival:   arrival,
		Date:      day,
	})
	if err != nil {
		return nil, err
	}

	o.logger.Debug("itinerary search",
		slog.Int("passenger_id", passengerID),
		slog.String("departure", departure),
		slog.String("arrival", arrival),
		slog.Int("results", len(results)),
		slog.Duration("duration", time.Since(start)))
	return results, nil
}

// Commit attaches a search result to the passenger. Choice 0 cancels.
func (o *Office) Commit(passengerID int, offered search.Results, choice int) (*timetable.Itinerary, error) {
	it, err := o.passengers.Commit(passengerID, offered, choice)
	if err != nil || it == nil {
		return nil, err
	}
	o.dirty = true
	logging.LogOperation(o.logger, "itinerary_committed",
		slog.Int("passenger_id", passengerID),
		slog.Int("choice", choice),
		slog.Float64("fare", it.Cost()))
	return it, nil
}

// Import reads pipe-delimited records. Records read before a failure stay
// applied.
func (o *Office) Import(r io.Reader) (importer.Stats, error) {
	stats, err := importer.Import(r, o.directory, o.passengers)
	if stats != (importer.Stats{}) {
		o.dirty = true
	}
	if err != nil {
		return stats, err
	}
	logging.LogOperation(o.logger, "records_imported",
		slog.Int("services", stats.Services),
		slog.Int("passengers", stats.Passengers),
		slog.Int("itineraries", stats.Itineraries))
	return stats, nil
}

// ImportGTFS adds one service per scheduled trip of a GTFS static feed.
func (o *Office) ImportGTFS(data []byte, opts importer.GTFSOptions) (importer.GTFSStats, error) {
	stats, err := importer.ImportGTFS(data, o.directory, opts)
	if err != nil {
		return stats, err
	}
	if stats.Services > 0 {
		o.dirty = true
	}
	logging.LogOperation(o.logger, "gtfs_feed_imported",
		slog.Int("services", stats.Services),
		slog.Int("skipped_trips", stats.Skipped),
		slog.Int("warnings", stats.Warnings))
	return stats, nil
}

// Export writes the current state in the record format read by Import.
func (o *Office) Export(w io.Writer) error {
	return importer.Export(w, o.directory, o.passengers)
}

// Reset forgets every passenger and itinerary. Services stay.
func (o *Office) Reset() {
	o.replace(o.directory, ledger.New())
	o.dirty = true
	logging.LogOperation(o.logger, "passengers_reset")
}

// Save writes a snapshot when something changed since the last save or
// load. It reports whether a snapshot was written.
func (o *Office) Save(ctx context.Context, store Store) (bool, error) {
	if !o.dirty {
		return false, nil
	}
	if err := store.SaveSnapshot(ctx, o.Snapshot()); err != nil {
		return false, fmt.Errorf("saving snapshot: %w", err)
	}
	o.dirty = false
	return true, nil
}

// Load replaces the current state with the stored snapshot. On failure the
// current state is kept.
func (o *Office) Load(ctx context.Context, store Store) error {
	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		if errors.Is(err, mmtdb.ErrNoSnapshot) {
			return err
		}
		return fmt.Errorf("loading snapshot: %w", err)
	}
	if err := o.Restore(snap); err != nil {
		return err
	}
	o.dirty = false
	logging.LogOperation(o.logger, "snapshot_loaded",
		slog.Int("services", len(snap.Services)),
		slog.Int("passengers", len(snap.Passengers)),
		slog.Time("saved_at", snap.SavedAt))
	return nil
}

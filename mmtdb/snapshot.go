package mmtdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mmt.ticketoffice.org/internal/logging"
)

// ErrNoSnapshot is returned by LoadSnapshot when nothing was saved yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

type StationRecord struct {
	Name string
	Time time.Duration // offset from midnight
}

type ServiceRecord struct {
	ID       int
	Cost     float64
	Stations []StationRecord
}

// SegmentRecord refers to stops by their position in the service.
type SegmentRecord struct {
	ServiceID int
	First     int
	Last      int
}

type ItineraryRecord struct {
	Date     time.Time
	Segments []SegmentRecord
}

type PassengerRecord struct {
	ID          int
	Name        string
	Category    string
	RollingCost float64
	MoneySpent  float64
	TimeSpent   time.Duration
	Itineraries []ItineraryRecord // commit order
}

// Snapshot is the whole persisted universe.
type Snapshot struct {
	Services        []ServiceRecord
	Passengers      []PassengerRecord
	NextPassengerID int
	SavedAt         time.Time
}

var clearStatements = []string{
	"DELETE FROM segments",
	"DELETE FROM itineraries",
	"DELETE FROM stations",
	"DELETE FROM passengers",
	"DELETE FROM services",
	"DELETE FROM snapshot_meta",
}

// SaveSnapshot replaces the stored snapshot. Either the whole snapshot is
// written or the previous one is left untouched.
func (c *Client) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	start := time.Now()
	if snap.SavedAt.IsZero() {
		snap.SavedAt = start.UTC()
	}

	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.SafeRollbackWithLogging(tx, c.logger, "save_snapshot")

	for _, stmt := range clearStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error clearing snapshot: %w", err)
		}
	}

	if err := insertServices(ctx, tx, snap.Services); err != nil {
		return err
	}
	if err := insertPassengers(ctx, tx, snap.Passengers); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO snapshot_meta (id, next_passenger_id, saved_at) VALUES (1, ?, ?)",
		snap.NextPassengerID, snap.SavedAt.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("error writing snapshot metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing snapshot: %w", err)
	}

	logging.LogOperation(c.logger, "snapshot_saved",
		slog.String("component", "mmtdb"),
		slog.Int("services", len(snap.Services)),
		slog.Int("passengers", len(snap.Passengers)),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func insertServices(ctx context.Context, tx *sql.Tx, services []ServiceRecord) error {
	serviceStmt, err := tx.PrepareContext(ctx, "INSERT INTO services (id, cost) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("error preparing service insert: %w", err)
	}
	defer serviceStmt.Close() // nolint:errcheck

	stationStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO stations (service_id, position, name, time_seconds) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("error preparing station insert: %w", err)
	}
	defer stationStmt.Close() // nolint:errcheck

	for _, s := range services {
		if _, err := serviceStmt.ExecContext(ctx, s.ID, s.Cost); err != nil {
			return fmt.Errorf("error inserting service %d: %w", s.ID, err)
		}
		for pos, st := range s.Stations {
			if _, err := stationStmt.ExecContext(ctx, s.ID, pos, st.Name, int64(st.Time/time.Second)); err != nil {
				return fmt.Errorf("error inserting station %d of service %d: %w", pos, s.ID, err)
			}
		}
	}
	return nil
}

func insertPassengers(ctx context.Context, tx *sql.Tx, passengers []PassengerRecord) error {
	passengerStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO passengers (id, name, category, rolling_cost, money_spent, time_spent_seconds)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing passenger insert: %w", err)
	}
	defer passengerStmt.Close() // nolint:errcheck

	itineraryStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO itineraries (passenger_id, position, travel_date) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("error preparing itinerary insert: %w", err)
	}
	defer itineraryStmt.Close() // nolint:errcheck

	segmentStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO segments (passenger_id, itinerary_position, position, service_id, first_index, last_index)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing segment insert: %w", err)
	}
	defer segmentStmt.Close() // nolint:errcheck

	for _, p := range passengers {
		if _, err := passengerStmt.ExecContext(ctx, p.ID, p.Name, p.Category,
			p.RollingCost, p.MoneySpent, int64(p.TimeSpent/time.Second)); err != nil {
			return fmt.Errorf("error inserting passenger %d: %w", p.ID, err)
		}
		for i, it := range p.Itineraries {
			if _, err := itineraryStmt.ExecContext(ctx, p.ID, i, it.Date.Format(time.DateOnly)); err != nil {
				return fmt.Errorf("error inserting itinerary %d of passenger %d: %w", i, p.ID, err)
			}
			for j, seg := range it.Segments {
				if _, err := segmentStmt.ExecContext(ctx, p.ID, i, j, seg.ServiceID, seg.First, seg.Last); err != nil {
					return fmt.Errorf("error inserting segment %d of itinerary %d of passenger %d: %w", j, i, p.ID, err)
				}
			}
		}
	}
	return nil
}

// LoadSnapshot reads the stored snapshot, or returns ErrNoSnapshot.
func (c *Client) LoadSnapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	var savedAt string
	err := c.DB.QueryRowContext(ctx,
		"SELECT next_passenger_id, saved_at FROM snapshot_meta WHERE id = 1").
		Scan(&snap.NextPassengerID, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("error reading snapshot metadata: %w", err)
	}
	if snap.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt); err != nil {
		return Snapshot{}, fmt.Errorf("error parsing snapshot time %q: %w", savedAt, err)
	}

	if snap.Services, err = c.loadServices(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Passengers, err = c.loadPassengers(ctx); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// each runs query and hands every row to scan. Rows are closed before it
// returns, which matters with a single pooled connection.
func (c *Client) each(ctx context.Context, query string, scan func(*sql.Rows) error) (err error) {
	rows, err := c.DB.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("error running %q: %w", query, err)
	}
	defer logging.JoinDeferredError(&err, rows.Close, c.logger, "close_rows")

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (c *Client) loadServices(ctx context.Context) ([]ServiceRecord, error) {
	var services []ServiceRecord
	index := make(map[int]int)

	err := c.each(ctx, "SELECT id, cost FROM services ORDER BY id", func(rows *sql.Rows) error {
		var s ServiceRecord
		if err := rows.Scan(&s.ID, &s.Cost); err != nil {
			return fmt.Errorf("error scanning service: %w", err)
		}
		index[s.ID] = len(services)
		services = append(services, s)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = c.each(ctx, "SELECT service_id, name, time_seconds FROM stations ORDER BY service_id, position",
		func(rows *sql.Rows) error {
			var serviceID int
			var seconds int64
			var st StationRecord
			if err := rows.Scan(&serviceID, &st.Name, &seconds); err != nil {
				return fmt.Errorf("error scanning station: %w", err)
			}
			st.Time = time.Duration(seconds) * time.Second
			i, ok := index[serviceID]
			if !ok {
				return fmt.Errorf("station refers to missing service %d", serviceID)
			}
			services[i].Stations = append(services[i].Stations, st)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return services, nil
}

func (c *Client) loadPassengers(ctx context.Context) ([]PassengerRecord, error) {
	var passengers []PassengerRecord
	index := make(map[int]int)

	err := c.each(ctx, `SELECT id, name, category, rolling_cost, money_spent, time_spent_seconds
		FROM passengers ORDER BY id`, func(rows *sql.Rows) error {
		var p PassengerRecord
		var seconds int64
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.RollingCost, &p.MoneySpent, &seconds); err != nil {
			return fmt.Errorf("error scanning passenger: %w", err)
		}
		p.TimeSpent = time.Duration(seconds) * time.Second
		index[p.ID] = len(passengers)
		passengers = append(passengers, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = c.each(ctx, "SELECT passenger_id, position, travel_date FROM itineraries ORDER BY passenger_id, position",
		func(rows *sql.Rows) error {
			var passengerID, position int
			var date string
			if err := rows.Scan(&passengerID, &position, &date); err != nil {
				return fmt.Errorf("error scanning itinerary: %w", err)
			}
			d, err := time.Parse(time.DateOnly, date)
			if err != nil {
				return fmt.Errorf("error parsing itinerary date %q: %w", date, err)
			}
			i, ok := index[passengerID]
			if !ok || position != len(passengers[i].Itineraries) {
				return fmt.Errorf("itinerary %d of passenger %d is out of place", position, passengerID)
			}
			passengers[i].Itineraries = append(passengers[i].Itineraries, ItineraryRecord{Date: d})
			return nil
		})
	if err != nil {
		return nil, err
	}

	err = c.each(ctx, `SELECT passenger_id, itinerary_position, service_id, first_index, last_index
		FROM segments ORDER BY passenger_id, itinerary_position, position`, func(rows *sql.Rows) error {
		var passengerID, position int
		var seg SegmentRecord
		if err := rows.Scan(&passengerID, &position, &seg.ServiceID, &seg.First, &seg.Last); err != nil {
			return fmt.Errorf("error scanning segment: %w", err)
		}
		i, ok := index[passengerID]
		if !ok || position >= len(passengers[i].Itineraries) {
			return fmt.Errorf("segment refers to missing itinerary %d of passenger %d", position, passengerID)
		}
		it := &passengers[i].Itineraries[position]
		it.Segments = append(it.Segments, seg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return passengers, nil
}

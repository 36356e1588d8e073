// Package importer loads services, passengers and committed itineraries from
// the pipe-delimited record format and writes them back out.
//
//	SERVICE|id|cost|time|station|time|station|...
//	PASSENGER|name
//	ITINERARY|passengerId|date|serviceId/firstStation/lastStation|...
package importer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"mmt.ticketoffice.org/internal/ledger"
	"mmt.ticketoffice.org/internal/timetable"
)

const (
	kindService   = "SERVICE"
	kindPassenger = "PASSENGER"
	kindItinerary = "ITINERARY"
)

var ErrMalformedRecord = errors.New("malformed record")

// MalformedRecordError reports a record that could not be parsed. Token is
// the first field of the offending line.
type MalformedRecordError struct {
	Token string
	Line  int
	Err   error
}

func (e *MalformedRecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bad entry %q on line %d: %v", e.Token, e.Line, e.Err)
	}
	return fmt.Sprintf("bad entry %q on line %d", e.Token, e.Line)
}

func (e *MalformedRecordError) Is(target error) bool { return target == ErrMalformedRecord }

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// Stats counts what an import added.
type Stats struct {
	Services    int
	Passengers  int
	Itineraries int
}

// Import reads records from r into the directory and ledger. It stops at the
// first failing record; records before it stay applied. Blank lines are
// ignored.
func Import(r io.Reader, directory *timetable.Directory, passengers *ledger.Ledger) (Stats, error) {
	var stats Stats
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := strings.Split(text, "|")

		var err error
		switch fields[0] {
		case kindService:
			err = importService(fields, directory)
			if err == nil {
				stats.Services++
			}
		case kindPassenger:
			err = importPassenger(fields, passengers)
			if err == nil {
				stats.Passengers++
			}
		case kindItinerary:
			err = importItinerary(fields, directory, passengers)
			if err == nil {
				stats.Itineraries++
			}
		default:
			err = &MalformedRecordError{Token: fields[0]}
		}
		if err != nil {
			return stats, atLine(err, fields[0], line)
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("reading records: %w", err)
	}
	return stats, nil
}

// atLine stamps the line number on parse failures and prefixes lookup
// failures so callers can still match them with errors.Is.
func atLine(err error, token string, line int) error {
	var bad *MalformedRecordError
	if errors.As(err, &bad) {
		bad.Token = token
		bad.Line = line
		return bad
	}
	return fmt.Errorf("line %d: %w", line, err)
}

func malformed(format string, args ...any) error {
	return &MalformedRecordError{Err: fmt.Errorf(format, args...)}
}

func importService(fields []string, directory *timetable.Directory) error {
	if len(fields) < 5 || (len(fields)-3)%2 != 0 {
		return malformed("service needs an id, a cost and time/station pairs")
	}
	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return malformed("service id %q", fields[1])
	}
	cost, err := strconv.ParseFloat(fields[2], 64)
	if err != nil || cost < 0 {
		return malformed("service cost %q", fields[2])
	}

	stations := make([]timetable.Station, 0, (len(fields)-3)/2)
	for i := 3; i < len(fields); i += 2 {
		t, err := timetable.ParseTimeOfDay(fields[i])
		if err != nil {
			return &MalformedRecordError{Err: err}
		}
		if fields[i+1] == "" {
			return malformed("empty station name")
		}
		stations = append(stations, timetable.NewStation(fields[i+1], t))
	}

	service, err := timetable.NewService(id, cost, stations...)
	if err != nil {
		return &MalformedRecordError{Err: err}
	}
	if err := directory.Add(service); err != nil {
		return &MalformedRecordError{Err: err}
	}
	return nil
}

func importPassenger(fields []string, passengers *ledger.Ledger) error {
	if len(fields) != 2 || fields[1] == "" {
		return malformed("passenger needs exactly one name")
	}
	_, err := passengers.Register(fields[1])
	return err
}

func importItinerary(fields []string, directory *timetable.Directory, passengers *ledger.Ledger) error {
	if len(fields) < 4 {
		return malformed("itinerary needs a passenger, a date and at least one segment")
	}
	passengerID, err := strconv.Atoi(fields[1])
	if err != nil {
		return malformed("passenger id %q", fields[1])
	}
	date, err := timetable.ParseDate(fields[2])
	if err != nil {
		return &MalformedRecordError{Err: err}
	}
	if _, err := passengers.Passenger(passengerID); err != nil {
		return err
	}

	it := timetable.NewItinerary(date)
	for _, raw := range fields[3:] {
		parts := strings.Split(raw, "/")
		if len(parts) != 3 {
			return malformed("segment %q is not serviceId/first/last", raw)
		}
		serviceID, err := strconv.Atoi(parts[0])
		if err != nil {
			return malformed("segment service id %q", parts[0])
		}
		service, err := directory.Service(serviceID)
		if err != nil {
			return err
		}
		segment, ok := timetable.SegmentBetween(service, parts[1], parts[2])
		if !ok {
			return malformed("service %d has no stop %q followed by %q", serviceID, parts[1], parts[2])
		}
		it.Append(segment)
	}
	return passengers.AddItinerary(passengerID, it)
}

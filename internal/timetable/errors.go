package timetable

import (
	"errors"
	"fmt"
)

var (
	ErrNoSuchStation    = errors.New("no such station")
	ErrNoSuchService    = errors.New("no such service")
	ErrDuplicateService = errors.New("duplicate service")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidTime      = errors.New("invalid time")
	ErrBadSchedule      = errors.New("bad schedule")
)

// NoSuchStationError is returned by station-scoped queries when no service
// stops at the named station.
type NoSuchStationError struct {
	Name string
}

func (e *NoSuchStationError) Error() string {
	return fmt.Sprintf("no such station: %q", e.Name)
}

func (e *NoSuchStationError) Is(target error) bool { return target == ErrNoSuchStation }

type NoSuchServiceError struct {
	ID int
}

func (e *NoSuchServiceError) Error() string {
	return fmt.Sprintf("no such service: %d", e.ID)
}

func (e *NoSuchServiceError) Is(target error) bool { return target == ErrNoSuchService }

// DuplicateServiceError is returned when a service id is already taken.
// Services never change once added.
type DuplicateServiceError struct {
	ID int
}

func (e *DuplicateServiceError) Error() string {
	return fmt.Sprintf("service %d already exists", e.ID)
}

func (e *DuplicateServiceError) Is(target error) bool { return target == ErrDuplicateService }

type InvalidDateError struct {
	Value string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q, use YYYY-MM-DD", e.Value)
}

func (e *InvalidDateError) Is(target error) bool { return target == ErrInvalidDate }

type InvalidTimeError struct {
	Value string
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("invalid time %q, use HH:MM", e.Value)
}

func (e *InvalidTimeError) Is(target error) bool { return target == ErrInvalidTime }

package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrNoSuchPassenger = errors.New("no such passenger")
	ErrDuplicateName   = errors.New("duplicate passenger name")
	ErrInvalidChoice   = errors.New("invalid itinerary choice")
)

type NoSuchPassengerError struct {
	ID int
}

func (e *NoSuchPassengerError) Error() string {
	return fmt.Sprintf("no such passenger: %d", e.ID)
}

func (e *NoSuchPassengerError) Is(target error) bool { return target == ErrNoSuchPassenger }

type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("passenger name already in use: %q", e.Name)
}

func (e *DuplicateNameError) Is(target error) bool { return target == ErrDuplicateName }

// InvalidChoiceError reports a commit index outside the offered itineraries.
type InvalidChoiceError struct {
	PassengerID int
	Choice      int
	Available   int
}

func (e *InvalidChoiceError) Error() string {
	return fmt.Sprintf("invalid itinerary choice %d for passenger %d (%d available)",
		e.Choice, e.PassengerID, e.Available)
}

func (e *InvalidChoiceError) Is(target error) bool { return target == ErrInvalidChoice }

package timetable

import (
	"maps"
	"slices"
)

// Directory holds every known service keyed by id. It is filled during
// import and read-only afterwards.
type Directory struct {
	services map[int]*Service
}

func NewDirectory() *Directory {
	return &Directory{services: make(map[int]*Service)}
}

// Add registers a service. Itineraries hold on to the services they use,
// so an id that is already taken is rejected.
func (d *Directory) Add(s *Service) error {
	if _, ok := d.services[s.ID]; ok {
		return &DuplicateServiceError{ID: s.ID}
	}
	d.services[s.ID] = s
	return nil
}

// Has reports whether the id is taken.
func (d *Directory) Has(id int) bool {
	_, ok := d.services[id]
	return ok
}

func (d *Directory) Len() int { return len(d.services) }

func (d *Directory) Service(id int) (*Service, error) {
	s, ok := d.services[id]
	if !ok {
		return nil, &NoSuchServiceError{ID: id}
	}
	return s, nil
}

// IDs returns all service ids in ascending order.
func (d *Directory) IDs() []int {
	return slices.Sorted(maps.Keys(d.services))
}

// Services lists every service by ascending id.
func (d *Directory) Services() []*Service {
	ids := d.IDs()
	out := make([]*Service, len(ids))
	for i, id := range ids {
		out[i] = d.services[id]
	}
	return out
}

// HasStation reports whether any service stops at the named station.
func (d *Directory) HasStation(name string) bool {
	for _, s := range d.services {
		if s.HasStation(name) {
			return true
		}
	}
	return false
}

// Select returns the services accepted by sel, by ascending id. It fails
// with NoSuchStationError only when the name appears on no service at all.
func (d *Directory) Select(sel Selector, name string) ([]*Service, error) {
	var out []*Service
	known := false
	for _, s := range d.Services() {
		if sel(s, name) {
			out = append(out, s)
			known = true
		} else if s.HasStation(name) {
			known = true
		}
	}
	if !known {
		return nil, &NoSuchStationError{Name: name}
	}
	return out, nil
}

// DepartingFrom lists services starting at name, later departures first.
func (d *Directory) DepartingFrom(name string) ([]*Service, error) {
	out, err := d.Select(DepartsFrom, name)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, ByDeparture)
	return out, nil
}

// ArrivingAt lists services ending at name, later arrivals first.
func (d *Directory) ArrivingAt(name string) ([]*Service, error) {
	out, err := d.Select(ArrivesAt, name)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, ByArrival)
	return out, nil
}

package restapi

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"mmt.ticketoffice.org/internal/search"
)

const defaultSearchTTL = 30 * time.Minute

// searchSession holds the itineraries last offered to one passenger.
type searchSession struct {
	id      uuid.UUID
	results search.Results
	created time.Time
}

// searchSessions keeps at most one pending search per passenger. A new
// search replaces the previous one and a commit consumes it.
type searchSessions struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[int]searchSession
}

func newSearchSessions(ttl time.Duration) *searchSessions {
	return &searchSessions{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[int]searchSession),
	}
}

func (s *searchSessions) store(passengerID int, results search.Results) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.sessions[passengerID] = searchSession{id: id, results: results, created: s.now()}
	return id
}

// get returns the pending results when id is the passenger's latest search
// and it has not expired.
func (s *searchSessions) get(passengerID int, id uuid.UUID) (search.Results, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[passengerID]
	if !ok || session.id != id {
		return nil, false
	}
	if s.now().Sub(session.created) > s.ttl {
		delete(s.sessions, passengerID)
		return nil, false
	}
	return session.results, true
}

func (s *searchSessions) remove(passengerID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, passengerID)
}

func (s *searchSessions) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.sessions)
}

func (s *searchSessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

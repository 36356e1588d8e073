package models

import "mmt.ticketoffice.org/internal/ledger"

type Passenger struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	RollingCost    float64 `json:"rollingCost"`
	MoneySpent     float64 `json:"moneySpent"`
	TimeSpent      string  `json:"timeSpent"`
	ItineraryCount int     `json:"itineraryCount"`
}

// PassengerItineraries is one group of the global itinerary listing.
type PassengerItineraries struct {
	Passenger   Passenger   `json:"passenger"`
	Itineraries []Itinerary `json:"itineraries"`
}

// SearchResult is what a search hands back: the id to commit against and
// the numbered choices.
type SearchResult struct {
	SearchID    string   `json:"searchId"`
	PassengerID int      `json:"passengerId"`
	Choices     []Choice `json:"choices"`
}

// CommitResult reports the outcome of a commit. Itinerary is nil when the
// passenger cancelled with choice 0.
type CommitResult struct {
	Committed bool       `json:"committed"`
	Itinerary *Itinerary `json:"itinerary"`
	Passenger Passenger  `json:"passenger"`
}

type SnapshotResult struct {
	Saved bool `json:"saved"`
}

func NewPassenger(p *ledger.Passenger) Passenger {
	return Passenger{
		ID:             p.ID,
		Name:           p.Name,
		Category:       p.Category.Tier.String(),
		RollingCost:    p.Category.RollingCost,
		MoneySpent:     p.MoneySpent,
		TimeSpent:      p.FormatTimeSpent(),
		ItineraryCount: p.ItineraryCount(),
	}
}

func NewPassengers(list []*ledger.Passenger) []Passenger {
	out := make([]Passenger, 0, len(list))
	for _, p := range list {
		out = append(out, NewPassenger(p))
	}
	return out
}

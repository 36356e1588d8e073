// Package fares holds the passenger fare categories and the rules that move
// a passenger between them.
package fares

import (
	"fmt"
	"strings"
)

// Tier is the discount level a passenger currently travels at.
type Tier int

const (
	Normal Tier = iota
	Frequent
	Special
)

const (
	// FrequentThreshold is the rolling cost above which Normal becomes Frequent.
	FrequentThreshold = 250.0
	// SpecialThreshold is the rolling cost above which Frequent becomes Special.
	SpecialThreshold = 2500.0

	// WindowSize is the number of most recent itineraries in the rolling cost.
	WindowSize = 10
)

func (t Tier) String() string {
	switch t {
	case Normal:
		return "NORMAL"
	case Frequent:
		return "FREQUENT"
	case Special:
		return "SPECIAL"
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

// Rate is the fraction of the fare actually charged.
func (t Tier) Rate() float64 {
	switch t {
	case Frequent:
		return 0.85
	case Special:
		return 0.5
	}
	return 1
}

// ParseTier accepts the names produced by Tier.String.
func ParseTier(s string) (Tier, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NORMAL":
		return Normal, nil
	case "FREQUENT":
		return Frequent, nil
	case "SPECIAL":
		return Special, nil
	}
	return Normal, fmt.Errorf("unknown fare tier %q", s)
}

// Category is a passenger's tier together with the pre-discount cost of the
// last WindowSize itineraries. It is a value: every change yields a new one.
type Category struct {
	Tier        Tier
	RollingCost float64
}

// NewCategory is the category of a freshly registered passenger.
func NewCategory() Category {
	return Category{Tier: Normal}
}

// Discount returns what the passenger pays for a fare in this category.
func (c Category) Discount(fare float64) float64 {
	return fare * c.Tier.Rate()
}

// Apply moves the rolling cost by delta and runs the transition checks.
func (c Category) Apply(delta float64) Category {
	c.RollingCost += delta
	return c.settle()
}

// settle runs the current tier's check. Moving up from Normal or down from
// Special hands over to Frequent, which checks again straight away.
func (c Category) settle() Category {
	switch c.Tier {
	case Normal:
		if c.RollingCost > FrequentThreshold {
			return Category{Tier: Frequent, RollingCost: c.RollingCost}.settle()
		}
	case Frequent:
		if c.RollingCost > SpecialThreshold {
			return Category{Tier: Special, RollingCost: c.RollingCost}
		}
		if c.RollingCost <= FrequentThreshold {
			return Category{Tier: Normal, RollingCost: c.RollingCost}
		}
	case Special:
		if c.RollingCost <= SpecialThreshold {
			return Category{Tier: Frequent, RollingCost: c.RollingCost}.settle()
		}
	}
	return c
}

func (c Category) String() string {
	return c.Tier.String()
}

package utils

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"
)

const maxNameLength = 100

// Detect HTML/script tags
var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// ValidatePassengerName rejects names that could not be written back as a
// PASSENGER record.
func ValidatePassengerName(name string) error {
	return validateName("name", name, "|")
}

// ValidateStationName also forbids '/', which separates the parts of an
// itinerary segment.
func ValidateStationName(name string) error {
	return validateName("station", name, "|/")
}

func validateName(field, name, forbidden string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New(field + " cannot be empty")
	}

	if len(name) > maxNameLength {
		return errors.New(field + " too long (max 100 characters)")
	}

	if strings.ContainsAny(name, forbidden) {
		return errors.New(field + " contains invalid characters")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return errors.New(field + " contains invalid characters")
		}
	}

	return nil
}

// ValidateDate validates date strings in YYYY-MM-DD format
func ValidateDate(date string) error {
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return errors.New("invalid date format, use YYYY-MM-DD")
	}
	return nil
}

// SanitizeInput removes HTML tags and surrounding whitespace.
func SanitizeInput(input string) string {
	sanitized := htmlTagPattern.ReplaceAllString(input, "")
	return strings.TrimSpace(sanitized)
}

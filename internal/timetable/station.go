package timetable

import (
	"fmt"
	"strings"
	"time"
)

// TimeOfDay is a clock reading within a single service day, stored as the
// offset from midnight.
type TimeOfDay time.Duration

// Clock builds a TimeOfDay from hours and minutes.
func Clock(hour, minute int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// ParseTimeOfDay accepts "HH:MM" and "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	value := strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		t, err := time.Parse(layout, value)
		if err == nil {
			offset := time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second
			return TimeOfDay(offset), nil
		}
	}
	return 0, &InvalidTimeError{Value: s}
}

// Until returns the signed duration from t to other.
func (t TimeOfDay) Until(other TimeOfDay) time.Duration {
	return time.Duration(other - t)
}

// Minutes truncates the offset from midnight to whole minutes.
func (t TimeOfDay) Minutes() int64 {
	return int64(time.Duration(t) / time.Minute)
}

func (t TimeOfDay) String() string {
	d := time.Duration(t)
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	seconds := int((d % time.Minute) / time.Second)
	if seconds != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}

// Station is a named stop at a given time of day. Two stations denote the
// same place when their names match; the time only describes one occurrence.
type Station struct {
	Name string
	Time TimeOfDay
}

func NewStation(name string, t TimeOfDay) Station {
	return Station{Name: name, Time: t}
}

// SameAs reports whether both stations name the same place.
func (s Station) SameAs(other Station) bool {
	return s.Name == other.Name
}

// MinutesTo returns the whole minutes between s and a later (or earlier) station.
func (s Station) MinutesTo(other Station) int64 {
	return int64(s.Time.Until(other.Time) / time.Minute)
}

func (s Station) String() string {
	return s.Time.String() + " " + s.Name
}

// ParseDate parses a travel date in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &InvalidDateError{Value: s}
	}
	return d, nil
}

package model

import (
	"fmt"
	"time"
)

// DayLayout is the calendar format used for day markers
const DayLayout = "2006-01-02"

// Day is a calendar date, formatted as YYYY-MM-DD
type Day string

// DayOf returns the calendar day of t in t's location
func DayOf(t time.Time) Day {
	return Day(t.Format(DayLayout))
}

// ParseDay validates and returns a Day
func ParseDay(s string) (Day, error) {
	if _, err := time.Parse(DayLayout, s); err != nil {
		return "", fmt.Errorf("parse day %q: %w", s, err)
	}
	return Day(s), nil
}

// DayRecord is the persisted form of the day marker
type DayRecord struct {
	CurrentDay Day `json:"current_day"`
	// OffsetDays counts simulated midnights; "today" is shifted by it
	OffsetDays int `json:"offset_days,omitempty"`
}

// Validate checks the day format and that the offset is not negative
func (r DayRecord) Validate() error {
	if _, err := ParseDay(string(r.CurrentDay)); err != nil {
		return err
	}
	if r.OffsetDays < 0 {
		return fmt.Errorf("negative day offset %d", r.OffsetDays)
	}
	return nil
}

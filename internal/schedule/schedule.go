/*
Copyright (C) 2026 Andes Retail

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package schedule implements timezone-aware evaluation of weekly trading
// schedules: whether a store is open at an instant and when it opens next.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Weekday is a calendar day in a weekly schedule.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// week lists the days Monday-first; lookahead rotation starts here.
var week = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var (
	// ErrInvalidClock marks a time string that is not 24-hour HH:MM.
	ErrInvalidClock = errors.New("invalid clock time, expected HH:MM (24h)")
	// ErrInvalidWeekday marks an unknown day name.
	ErrInvalidWeekday = errors.New("invalid weekday")
	// ErrInvalidTimezone marks a timezone that does not resolve to an IANA zone.
	ErrInvalidTimezone = errors.New("invalid timezone")
)

// WeekdayOf maps a time.Weekday onto the schedule's Monday-first week.
func WeekdayOf(d time.Weekday) Weekday {
	// time.Weekday is Sunday=0; shift so Monday lands on index 0.
	return week[(int(d)+6)%7]
}

// Index returns the Monday-first position of d, or -1 when d is unknown.
func (d Weekday) Index() int {
	for i, w := range week {
		if w == d {
			return i
		}
	}
	return -1
}

// Valid reports whether d names one of the seven days.
func (d Weekday) Valid() bool {
	return d.Index() >= 0
}

// Entry is one day's trading window.
type Entry struct {
	Day      Weekday `json:"day"`
	OpensAt  string  `json:"opens_at"`
	ClosesAt string  `json:"closes_at"`
	Closed   bool    `json:"closed,omitempty"`
}

// Validate checks the entry's day name and clock strings.
func (e Entry) Validate() error {
	if !e.Day.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidWeekday, e.Day)
	}
	if _, err := ParseClock(e.OpensAt); err != nil {
		return fmt.Errorf("opens_at: %w", err)
	}
	if _, err := ParseClock(e.ClosesAt); err != nil {
		return fmt.Errorf("closes_at: %w", err)
	}
	return nil
}

// Weekly holds at most one entry per weekday. A day without an entry is
// treated as closed.
type Weekly []Entry

// Validate checks every entry and rejects duplicate days.
func (w Weekly) Validate() error {
	seen := make(map[Weekday]struct{}, len(w))
	for i, e := range w {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if _, dup := seen[e.Day]; dup {
			return fmt.Errorf("entry %d: duplicate day %q", i, e.Day)
		}
		seen[e.Day] = struct{}{}
	}
	return nil
}

// Find returns the entry for day, if configured.
func (w Weekly) Find(day Weekday) (Entry, bool) {
	for _, e := range w {
		if e.Day == day {
			return e, true
		}
	}
	return Entry{}, false
}

// ParseClock parses a 24-hour "HH:MM" string into minutes past midnight.
// A single-digit hour is accepted, matching what older records carry.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return hour*60 + minute, nil
}

// ResolveLocation loads the IANA zone for name. An empty or unresolvable name
// is a configuration error; there is deliberately no fallback zone.
func ResolveLocation(name string) (*time.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty zone name", ErrInvalidTimezone)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, name)
	}
	return loc, nil
}

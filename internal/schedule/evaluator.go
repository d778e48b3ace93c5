/*
Copyright (C) 2026 Andes Retail

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package schedule

import (
	"math"
	"time"
)

// IsOpen reports whether a store with schedule w in zone loc is open at
// instant at.
//
// Only the current local weekday's entry is consulted. A window whose close
// minute is at or before its open minute wraps past midnight, except that an
// exactly equal open/close pair is a zero-width window and always reads
// closed. A wrapping window is honored on its own day only: the continuation
// past midnight counts only when the following day carries an entry that
// covers it.
func IsOpen(w Weekly, loc *time.Location, at time.Time) bool {
	local := at.In(loc)
	entry, ok := w.Find(WeekdayOf(local.Weekday()))
	if !ok || entry.Closed {
		return false
	}

	open, err := ParseClock(entry.OpensAt)
	if err != nil {
		return false
	}
	close, err := ParseClock(entry.ClosesAt)
	if err != nil {
		return false
	}

	now := local.Hour()*60 + local.Minute()

	if open == close {
		return false
	}
	if close < open {
		// Wraps past midnight, e.g. 22:00-02:00.
		return now >= open || now < close
	}
	return now >= open && now < close
}

// Opening describes the next time a schedule opens.
type Opening struct {
	Day          Weekday `json:"day"`
	At           string  `json:"at"`
	MinutesUntil int     `json:"minutes_until"`
}

// NextOpening finds the first opening strictly after instant at, searching the
// seven days starting from at's local weekday. Today's window only qualifies
// while its opening time is still in the future; once it has passed, today is
// skipped and the rotation does not come back around to it. The second return
// is false when no day in the rotation qualifies.
func NextOpening(w Weekly, loc *time.Location, at time.Time) (Opening, bool) {
	local := at.In(loc)
	today := WeekdayOf(local.Weekday()).Index()
	now := local.Hour()*60 + local.Minute()

	for i := 0; i < 7; i++ {
		day := week[(today+i)%7]
		entry, ok := w.Find(day)
		if !ok || entry.Closed {
			continue
		}
		open, err := ParseClock(entry.OpensAt)
		if err != nil {
			continue
		}
		if i == 0 && now >= open {
			continue
		}

		candidate := time.Date(local.Year(), local.Month(), local.Day()+i,
			open/60, open%60, 0, 0, loc)
		return Opening{
			Day:          day,
			At:           entry.OpensAt,
			MinutesUntil: int(math.Round(candidate.Sub(local).Minutes())),
		}, true
	}
	return Opening{}, false
}

// WindowFor returns the trading window configured for at's local weekday.
func WindowFor(w Weekly, loc *time.Location, at time.Time) (Entry, bool) {
	return w.Find(WeekdayOf(at.In(loc).Weekday()))
}

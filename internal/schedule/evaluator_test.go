/*
Copyright (C) 2026 Andes Retail

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package schedule

import (
	"testing"
	"time"
)

// 2024-01-01 is a Monday; the anchor week runs Monday through Sunday.
// America/Guayaquil has no DST, so minute arithmetic stays exact.
func guayaquil(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Guayaquil")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func at(t *testing.T, loc *time.Location, day, hour, minute int) time.Time {
	t.Helper()
	return time.Date(2024, time.January, day, hour, minute, 0, 0, loc)
}

func TestIsOpenDaytimeWindow(t *testing.T) {
	loc := guayaquil(t)
	w := Weekly{{Day: Monday, OpensAt: "09:00", ClosesAt: "18:00"}}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "before opening", at: at(t, loc, 1, 8, 59), want: false},
		{name: "at opening minute", at: at(t, loc, 1, 9, 0), want: true},
		{name: "mid window", at: at(t, loc, 1, 13, 30), want: true},
		{name: "closing minute is exclusive", at: at(t, loc, 1, 18, 0), want: false},
		{name: "after closing", at: at(t, loc, 1, 20, 0), want: false},
		{name: "day without entry", at: at(t, loc, 2, 13, 30), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOpen(w, loc, tt.at); got != tt.want {
				t.Errorf("IsOpen(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestIsOpenOvernightWindow(t *testing.T) {
	loc := guayaquil(t)
	w := Weekly{{Day: Monday, OpensAt: "22:00", ClosesAt: "02:00"}}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "before opening", at: at(t, loc, 1, 21, 59), want: false},
		{name: "at opening minute", at: at(t, loc, 1, 22, 0), want: true},
		{name: "late evening", at: at(t, loc, 1, 23, 0), want: true},
		// Early Monday morning falls inside Monday's own wrapped window.
		{name: "early morning same weekday", at: at(t, loc, 1, 1, 0), want: true},
		{name: "close minute same weekday", at: at(t, loc, 1, 2, 0), want: false},
		// Tuesday 01:00 is the continuation of Monday night, but only
		// Tuesday's entry is consulted and Tuesday has none.
		{name: "continuation on following day not honored", at: at(t, loc, 2, 1, 0), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOpen(w, loc, tt.at); got != tt.want {
				t.Errorf("IsOpen(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestIsOpenZeroWidthWindow(t *testing.T) {
	loc := guayaquil(t)
	w := Weekly{{Day: Monday, OpensAt: "09:00", ClosesAt: "09:00"}}

	for _, hour := range []int{0, 8, 9, 12, 23} {
		if IsOpen(w, loc, at(t, loc, 1, hour, 0)) {
			t.Errorf("IsOpen at %02d:00 = true for zero-width window, want false", hour)
		}
	}
}

func TestIsOpenClosedFlagOverridesWindow(t *testing.T) {
	loc := guayaquil(t)
	w := Weekly{{Day: Monday, OpensAt: "09:00", ClosesAt: "18:00", Closed: true}}

	if IsOpen(w, loc, at(t, loc, 1, 12, 0)) {
		t.Error("IsOpen = true for day flagged closed, want false")
	}
}

func TestIsOpenMalformedClockReadsClosed(t *testing.T) {
	loc := guayaquil(t)

	tests := []struct {
		name string
		w    Weekly
	}{
		{name: "bad opens_at", w: Weekly{{Day: Monday, OpensAt: "late", ClosesAt: "18:00"}}},
		{name: "bad closes_at", w: Weekly{{Day: Monday, OpensAt: "09:00", ClosesAt: "18h"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if IsOpen(tt.w, loc, at(t, loc, 1, 12, 0)) {
				t.Error("IsOpen = true for malformed clock, want false")
			}
		})
	}
}

func TestIsOpenUsesStoreLocalDay(t *testing.T) {
	loc := guayaquil(t)
	w := Weekly{{Day: Monday, OpensAt: "09:00", ClosesAt: "18:00"}}

	// 2024-01-02 03:00 UTC is still Monday 22:00 in Guayaquil (UTC-5),
	// after closing; 2024-01-01 15:00 UTC is Monday 10:00 local, open.
	if IsOpen(w, loc, time.Date(2024, time.January, 2, 3, 0, 0, 0, time.UTC)) {
		t.Error("IsOpen = true at Monday 22:00 local, want false")
	}
	if !IsOpen(w, loc, time.Date(2024, time.January, 1, 15, 0, 0, 0, time.UTC)) {
		t.Error("IsOpen = false at Monday 10:00 local, want true")
	}
}

func TestNextOpening(t *testing.T) {
	loc := guayaquil(t)

	tests := []struct {
		name        string
		w           Weekly
		at          time.Time
		wantDay     Weekday
		wantAt      string
		wantMinutes int
		wantNone    bool
	}{
		{
			name:        "later today",
			w:           Weekly{{Day: Monday, OpensAt: "09:00", ClosesAt: "18:00"}},
			at:          at(t, loc, 1, 7, 0),
			wantDay:     Monday,
			wantAt:      "09:00",
			wantMinutes: 120,
		},
		{
			name: "already open rolls to next configured day",
			w: Weekly{
				{Day: Monday, OpensAt: "08:00", ClosesAt: "20:00"},
				{Day: Tuesday, OpensAt: "08:00", ClosesAt: "20:00"},
			},
			at:          at(t, loc, 1, 21, 0),
			wantDay:     Tuesday,
			wantAt:      "08:00",
			wantMinutes: 660,
		},
		{
			// Today is skipped once its opening minute arrives, and the
			// rotation does not revisit today a week out.
			name:     "opening minute itself is not upcoming",
			w:        Weekly{{Day: Monday, OpensAt: "09:00", ClosesAt: "18:00"}},
			at:       at(t, loc, 1, 9, 0),
			wantNone: true,
		},
		{
			name: "skips closed days",
			w: Weekly{
				{Day: Tuesday, OpensAt: "09:00", ClosesAt: "18:00", Closed: true},
				{Day: Thursday, OpensAt: "10:00", ClosesAt: "14:00"},
			},
			at:          at(t, loc, 1, 12, 0),
			wantDay:     Thursday,
			wantAt:      "10:00",
			wantMinutes: 3*24*60 - 120,
		},
		{
			name: "skips malformed entries",
			w: Weekly{
				{Day: Tuesday, OpensAt: "soon", ClosesAt: "18:00"},
				{Day: Wednesday, OpensAt: "09:00", ClosesAt: "18:00"},
			},
			at:          at(t, loc, 1, 12, 0),
			wantDay:     Wednesday,
			wantAt:      "09:00",
			wantMinutes: 2*24*60 - 180,
		},
		{
			name:     "empty schedule never opens",
			w:        Weekly{},
			at:       at(t, loc, 1, 12, 0),
			wantNone: true,
		},
		{
			name: "all days closed never opens",
			w: Weekly{
				{Day: Monday, OpensAt: "09:00", ClosesAt: "18:00", Closed: true},
				{Day: Friday, OpensAt: "09:00", ClosesAt: "18:00", Closed: true},
			},
			at:       at(t, loc, 1, 12, 0),
			wantNone: true,
		},
		{
			name:        "wraps from sunday to monday",
			w:           Weekly{{Day: Monday, OpensAt: "09:00", ClosesAt: "18:00"}},
			at:          at(t, loc, 7, 12, 0),
			wantDay:     Monday,
			wantAt:      "09:00",
			wantMinutes: 21 * 60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NextOpening(tt.w, loc, tt.at)
			if tt.wantNone {
				if ok {
					t.Fatalf("NextOpening() = %+v, want none", got)
				}
				return
			}
			if !ok {
				t.Fatal("NextOpening() = none, want opening")
			}
			if got.Day != tt.wantDay || got.At != tt.wantAt || got.MinutesUntil != tt.wantMinutes {
				t.Errorf("NextOpening() = %+v, want day=%q at=%q minutes=%d",
					got, tt.wantDay, tt.wantAt, tt.wantMinutes)
			}
		})
	}
}

func TestNextOpeningNeverInPast(t *testing.T) {
	loc := guayaquil(t)
	w := Weekly{
		{Day: Monday, OpensAt: "08:00", ClosesAt: "20:00"},
		{Day: Wednesday, OpensAt: "10:00", ClosesAt: "16:00"},
		{Day: Saturday, OpensAt: "07:30", ClosesAt: "12:00"},
	}

	for day := 1; day <= 7; day++ {
		for hour := 0; hour < 24; hour += 3 {
			instant := at(t, loc, day, hour, 17)
			opening, ok := NextOpening(w, loc, instant)
			if !ok {
				t.Fatalf("NextOpening(%v) = none", instant)
			}
			if opening.MinutesUntil <= 0 {
				t.Errorf("NextOpening(%v).MinutesUntil = %d, want > 0", instant, opening.MinutesUntil)
			}
		}
	}
}

func TestWindowFor(t *testing.T) {
	loc := guayaquil(t)
	w := Weekly{{Day: Monday, OpensAt: "09:00", ClosesAt: "18:00"}}

	entry, ok := WindowFor(w, loc, at(t, loc, 1, 3, 0))
	if !ok {
		t.Fatal("WindowFor() = none on configured day")
	}
	if entry.Day != Monday || entry.OpensAt != "09:00" {
		t.Errorf("WindowFor() = %+v, want Monday 09:00", entry)
	}

	if _, ok := WindowFor(w, loc, at(t, loc, 2, 3, 0)); ok {
		t.Error("WindowFor() found entry on unconfigured day")
	}
}

package timer

import (
	"testing"
	"time"
)

// sessionsOn builds a history with n sessions on each of the given day offsets
// (0 = today, 1 = yesterday, ...).
func sessionsOn(minutes int, offsets ...int) History {
	var h History
	for _, off := range offsets {
		d := testNow.AddDate(0, 0, -off)
		h = append(h, Session{Date: Day(d), Timestamp: d, DurationMinutes: minutes})
	}
	return h
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{0, "00:00"},
		{59, "00:59"},
		{60, "01:00"},
		{599, "09:59"},
		{1500, "25:00"},
		{99 * 60, "99:00"},
		{-5, "00:00"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.secs); got != tt.want {
			t.Errorf("FormatTime(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestFormatFocusTime(t *testing.T) {
	if got := FormatFocusTime(135); got != "2h 15m" {
		t.Fatalf("got %q", got)
	}
	if got := FormatFocusTime(0); got != "0h 0m" {
		t.Fatalf("got %q", got)
	}
}

func TestTodayAndTotals(t *testing.T) {
	h := sessionsOn(25, 0, 0, 1, 3)
	if got := h.TodayCount(testNow); got != 2 {
		t.Fatalf("today count: got %d", got)
	}
	if got := h.TodayMinutes(testNow); got != 50 {
		t.Fatalf("today minutes: got %d", got)
	}
	if got := h.TotalSessions(); got != 4 {
		t.Fatalf("total sessions: got %d", got)
	}
	if got := h.TotalMinutes(); got != 100 {
		t.Fatalf("total minutes: got %d", got)
	}
}

func TestStreak(t *testing.T) {
	tests := []struct {
		name    string
		history History
		want    int
	}{
		{"empty", nil, 0},
		{"today only", sessionsOn(25, 0), 1},
		{"today and yesterday", sessionsOn(25, 0, 1), 2},
		{"missing today does not break", sessionsOn(25, 1, 2, 3), 3},
		{"gap stops the walk", sessionsOn(25, 0, 1, 3, 4), 2},
		{"yesterday missing", sessionsOn(25, 0, 2), 1},
		{"only old sessions", sessionsOn(25, 5, 6), 0},
		{"duplicates count once", sessionsOn(25, 0, 0, 0, 1), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.history.Streak(testNow); got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStreakBoundedByWindow(t *testing.T) {
	offsets := make([]int, 400)
	for i := range offsets {
		offsets[i] = i
	}
	if got := sessionsOn(1, offsets...).Streak(testNow); got != streakWindow {
		t.Fatalf("expected %d, got %d", streakWindow, got)
	}
}

func TestLast7Days(t *testing.T) {
	h := sessionsOn(25, 0, 0, 2, 6, 7)
	days := h.Last7Days(testNow)
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	if days[6].Date != Day(testNow) {
		t.Fatalf("last entry should be today, got %s", days[6].Date)
	}
	if days[0].Date != Day(testNow.AddDate(0, 0, -6)) {
		t.Fatalf("first entry should be 6 days ago, got %s", days[0].Date)
	}
	wantCounts := []int{1, 0, 0, 0, 1, 0, 2}
	for i, d := range days {
		if d.Count != wantCounts[i] {
			t.Errorf("day %d (%s): got %d, want %d", i, d.Date, d.Count, wantCounts[i])
		}
	}
	// 2026-10-18 is a Sunday.
	if days[6].Label != "SUN" || days[0].Label != "MON" {
		t.Fatalf("unexpected labels %s / %s", days[0].Label, days[6].Label)
	}
}

func TestRecent(t *testing.T) {
	h := sessionsOn(25, 2, 1, 0)
	r := h.Recent(2)
	if len(r) != 2 {
		t.Fatalf("expected 2, got %d", len(r))
	}
	if r[0].Date != Day(testNow) {
		t.Fatal("recent should be newest first")
	}
	if len(h.Recent(0)) != 3 {
		t.Fatal("limit 0 should return everything")
	}
}

func TestHistoryValidate(t *testing.T) {
	if err := sessionsOn(25, 0, 1).Validate(); err != nil {
		t.Fatalf("valid history rejected: %v", err)
	}
	bad := History{{Date: "not-a-date", Timestamp: time.Now(), DurationMinutes: 25}}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for bad date")
	}
	neg := History{{Date: "2026-10-18", DurationMinutes: -1}}
	if err := neg.Validate(); err == nil {
		t.Fatal("expected error for negative duration")
	}
}

func TestModeText(t *testing.T) {
	for _, m := range Modes {
		b, err := m.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back Mode
		if err := back.UnmarshalText(b); err != nil || back != m {
			t.Fatalf("round trip %s failed: %v", m, err)
		}
	}
	if _, err := ParseMode("NAP"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if LongBreak.Label() != "LONG BREAK" {
		t.Fatalf("unexpected label %q", LongBreak.Label())
	}
}

func TestDurationsWith(t *testing.T) {
	d := DefaultDurations().With(Work, 150)
	if d.Work != MaxMinutes {
		t.Fatalf("expected clamp to 99, got %d", d.Work)
	}
	d = d.With(LongBreak, -4)
	if d.LongBreak != MinMinutes {
		t.Fatalf("expected clamp to 1, got %d", d.LongBreak)
	}
	if d.Seconds(ShortBreak) != 300 {
		t.Fatalf("expected 300s, got %d", d.Seconds(ShortBreak))
	}
}

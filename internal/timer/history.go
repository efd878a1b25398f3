package timer

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used for Session.Date.
const DateLayout = "2006-01-02"

// streakWindow bounds how far back Streak looks.
const streakWindow = 365

// Session is one completed WORK interval.
type Session struct {
	Date            string    `json:"date"`
	Timestamp       time.Time `json:"timestamp"`
	DurationMinutes int       `json:"durationMinutes"`
}

// History is the append-only log of completed work sessions, oldest first.
type History []Session

// DayCount is one bar of the last-seven-days chart.
type DayCount struct {
	Date  string
	Label string // upper-case weekday abbreviation, e.g. "MON"
	Count int
}

// Day formats t as a local calendar day.
func Day(t time.Time) string {
	return t.Local().Format(DateLayout)
}

// Validate rejects histories with malformed dates or negative durations.
func (h History) Validate() error {
	for i, s := range h {
		if _, err := time.ParseInLocation(DateLayout, s.Date, time.Local); err != nil {
			return fmt.Errorf("session %d: bad date %q", i, s.Date)
		}
		if s.DurationMinutes < 0 {
			return fmt.Errorf("session %d: negative duration", i)
		}
	}
	return nil
}

func (h History) countOn(date string) (count, minutes int) {
	for _, s := range h {
		if s.Date == date {
			count++
			minutes += s.DurationMinutes
		}
	}
	return count, minutes
}

func (h History) TodayCount(now time.Time) int {
	n, _ := h.countOn(Day(now))
	return n
}

func (h History) TodayMinutes(now time.Time) int {
	_, m := h.countOn(Day(now))
	return m
}

func (h History) TotalSessions() int { return len(h) }

func (h History) TotalMinutes() int {
	total := 0
	for _, s := range h {
		total += s.DurationMinutes
	}
	return total
}

// Streak counts consecutive days with at least one session, walking back
// from today. A day without sessions ends the streak, except today itself.
func (h History) Streak(now time.Time) int {
	if len(h) == 0 {
		return 0
	}
	days := make(map[string]struct{}, len(h))
	for _, s := range h {
		days[s.Date] = struct{}{}
	}

	anchor := noon(now)
	streak := 0
	for i := 0; i < streakWindow; i++ {
		ds := anchor.AddDate(0, 0, -i).Format(DateLayout)
		if _, ok := days[ds]; ok {
			streak++
			continue
		}
		if i == 0 {
			continue
		}
		break
	}
	return streak
}

// Last7Days returns the seven days ending today, oldest first.
func (h History) Last7Days(now time.Time) []DayCount {
	anchor := noon(now)
	out := make([]DayCount, 0, 7)
	for i := 6; i >= 0; i-- {
		d := anchor.AddDate(0, 0, -i)
		ds := d.Format(DateLayout)
		n, _ := h.countOn(ds)
		out = append(out, DayCount{
			Date:  ds,
			Label: strings.ToUpper(d.Weekday().String()[:3]),
			Count: n,
		})
	}
	return out
}

// Recent returns up to limit sessions, newest first. limit <= 0 means all.
func (h History) Recent(limit int) []Session {
	n := len(h)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Session, 0, n)
	for i := len(h) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, h[i])
	}
	return out
}

// noon pins now to midday local time so day arithmetic is DST-safe.
func noon(now time.Time) time.Time {
	l := now.Local()
	return time.Date(l.Year(), l.Month(), l.Day(), 12, 0, 0, 0, time.Local)
}

// FormatTime renders seconds as MM:SS.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FormatFocusTime renders minutes as "Xh Ym".
func FormatFocusTime(minutes int) string {
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

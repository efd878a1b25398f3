package timer

import "fmt"

const (
	MinMinutes = 1
	MaxMinutes = 99
)

// Durations holds the configured length of each mode, in minutes.
type Durations struct {
	Work       int `json:"WORK"`
	ShortBreak int `json:"SHORT_BREAK"`
	LongBreak  int `json:"LONG_BREAK"`
}

func DefaultDurations() Durations {
	return Durations{Work: 25, ShortBreak: 5, LongBreak: 15}
}

// Minutes returns the configured minutes for m.
func (d Durations) Minutes(m Mode) int {
	switch m {
	case ShortBreak:
		return d.ShortBreak
	case LongBreak:
		return d.LongBreak
	default:
		return d.Work
	}
}

// Seconds returns the full countdown length for m.
func (d Durations) Seconds(m Mode) int {
	return d.Minutes(m) * 60
}

// With returns a copy of d with m set to minutes, clamped to [MinMinutes, MaxMinutes].
func (d Durations) With(m Mode, minutes int) Durations {
	v := Clamp(minutes)
	switch m {
	case ShortBreak:
		d.ShortBreak = v
	case LongBreak:
		d.LongBreak = v
	default:
		d.Work = v
	}
	return d
}

// Validate rejects configurations with a mode outside the allowed range.
func (d Durations) Validate() error {
	for _, m := range Modes {
		if v := d.Minutes(m); v < MinMinutes || v > MaxMinutes {
			return fmt.Errorf("%s duration %d out of range [%d, %d]", m, v, MinMinutes, MaxMinutes)
		}
	}
	return nil
}

func Clamp(minutes int) int {
	if minutes < MinMinutes {
		return MinMinutes
	}
	if minutes > MaxMinutes {
		return MaxMinutes
	}
	return minutes
}

package timer

import "fmt"

// Mode is the kind of interval the timer is counting down.
type Mode int

const (
	Work Mode = iota
	ShortBreak
	LongBreak
)

// Modes lists every mode in display order.
var Modes = [...]Mode{Work, ShortBreak, LongBreak}

var modeKeys = map[Mode]string{
	Work:       "WORK",
	ShortBreak: "SHORT_BREAK",
	LongBreak:  "LONG_BREAK",
}

var modeLabels = map[Mode]string{
	Work:       "WORK",
	ShortBreak: "SHORT BREAK",
	LongBreak:  "LONG BREAK",
}

func (m Mode) String() string {
	if k, ok := modeKeys[m]; ok {
		return k
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Label is the human readable name shown in prompts and headers.
func (m Mode) Label() string {
	return modeLabels[m]
}

// IsBreak reports whether m is one of the break modes.
func (m Mode) IsBreak() bool {
	return m == ShortBreak || m == LongBreak
}

// ParseMode accepts the WORK / SHORT_BREAK / LONG_BREAK keys.
func ParseMode(s string) (Mode, error) {
	for m, k := range modeKeys {
		if k == s {
			return m, nil
		}
	}
	return Work, fmt.Errorf("unknown mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	k, ok := modeKeys[m]
	if !ok {
		return nil, fmt.Errorf("unknown mode %d", int(m))
	}
	return []byte(k), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

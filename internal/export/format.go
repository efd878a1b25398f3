package export

import (
	"fmt"
	"strings"

	"github.com/sadopc/pixelpomo/internal/timer"
)

// Format is an export file type.
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
	YAML Format = "yaml"
)

var Formats = []Format{CSV, JSON, YAML}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case CSV, JSON, YAML:
		return f, nil
	case "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, json or yaml)", s)
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

// Write exports sessions to path in format f.
func Write(f Format, sessions timer.History, path string) error {
	switch f {
	case CSV:
		return ToCSV(sessions, path)
	case JSON:
		return ToJSON(sessions, path)
	case YAML:
		return ToYAML(sessions, path)
	}
	return fmt.Errorf("unknown export format %q", string(f))
}

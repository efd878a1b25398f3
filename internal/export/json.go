package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/pixelpomo/internal/timer"
)

// document is the shared shape of the JSON and YAML exports.
type document struct {
	ExportedAt   string   `json:"exported_at" yaml:"exported_at"`
	Count        int      `json:"count" yaml:"count"`
	TotalMinutes int      `json:"total_minutes" yaml:"total_minutes"`
	Sessions     []record `json:"sessions" yaml:"sessions"`
}

type record struct {
	Date        string `json:"date" yaml:"date"`
	CompletedAt string `json:"completed_at" yaml:"completed_at"`
	Minutes     int    `json:"minutes" yaml:"minutes"`
}

func newDocument(sessions timer.History, now time.Time) document {
	doc := document{
		ExportedAt:   now.UTC().Format(time.RFC3339),
		Count:        sessions.TotalSessions(),
		TotalMinutes: sessions.TotalMinutes(),
	}
	for _, s := range sessions {
		doc.Sessions = append(doc.Sessions, record{
			Date:        s.Date,
			CompletedAt: s.Timestamp.Local().Format(time.RFC3339),
			Minutes:     s.DurationMinutes,
		})
	}
	return doc
}

func ToJSON(sessions timer.History, path string) error {
	data, err := json.MarshalIndent(newDocument(sessions, time.Now()), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

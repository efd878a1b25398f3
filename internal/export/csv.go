package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/pixelpomo/internal/timer"
)

var csvHeader = []string{"#", "Date", "Completed At", "Minutes", "Focus Time"}

// ToCSV writes one row per completed work session, oldest first.
func ToCSV(sessions timer.History, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close csv file: %w", cerr)
		}
	}()

	w := csv.NewWriter(f)

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for i, s := range sessions {
		row := []string{
			strconv.Itoa(i + 1),
			s.Date,
			s.Timestamp.Local().Format(time.RFC3339),
			strconv.Itoa(s.DurationMinutes),
			timer.FormatFocusTime(s.DurationMinutes),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write csv file: %w", err)
	}
	return nil
}

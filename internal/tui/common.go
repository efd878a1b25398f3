package tui

import (
	"github.com/sadopc/pixelpomo/internal/orchestrator"
)

// viewState represents the currently active view.
type viewState int

const (
	viewPomodoro viewState = iota
	viewBoard
	viewStats
	viewSettings
)

var viewNames = []string{"Timer", "Board", "Stats", "Settings"}

// durationStep is how many minutes +/- add or remove.
const durationStep = 5

// --- Messages ---

// eventMsg carries one orchestrator event into the update loop.
type eventMsg orchestrator.Event

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

type wipeDoneMsg struct {
	err error
}

// --- Helpers ---

// truncate shortens s to at most n cells, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// clampCursor keeps a list cursor inside [0, n).
func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

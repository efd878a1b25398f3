package orchestrator

import (
	"github.com/sadopc/pixelpomo/internal/board"
	"github.com/sadopc/pixelpomo/internal/store"
	"github.com/sadopc/pixelpomo/internal/timer"
)

// Storage keys.
const (
	KeyDurations         = store.Namespace + "durations"
	KeyTasks             = store.Namespace + "tasks"
	KeySessionsCompleted = store.Namespace + "sessionsCompleted"
	KeySessions          = store.Namespace + "sessions"
)

// Prompt is the modal question currently waiting for the user.
type Prompt int

const (
	PromptNone Prompt = iota
	// PromptFocus asks which task to work on before a WORK interval starts.
	PromptFocus
	// PromptTransition offers the next mode after an interval ends.
	PromptTransition
	// PromptCompletion asks whether the focused task is finished.
	PromptCompletion
)

func (p Prompt) String() string {
	switch p {
	case PromptFocus:
		return "focus"
	case PromptTransition:
		return "transition"
	case PromptCompletion:
		return "completion"
	}
	return "none"
}

type EventKind int

const (
	// EventChanged is sent after any timer state change, including ticks.
	EventChanged EventKind = iota
	// EventCompleted is sent when an interval reaches zero.
	EventCompleted
)

// Event tells front ends that a fresh Snapshot is worth reading.
type Event struct {
	Kind       EventKind
	Completion *timer.Completion
}

// Stats are derived from the session history on every read.
type Stats struct {
	TodayCount    int
	TodayMinutes  int
	Streak        int
	TotalSessions int
	TotalMinutes  int
	Last7Days     []timer.DayCount
	Recent        []timer.Session
}

// Snapshot is everything a front end needs to render one frame.
type Snapshot struct {
	Timer     timer.State
	Prompt    Prompt
	Board     board.State
	Focused   *board.Task
	QuestLog  []board.Entry
	DoneTasks []board.Entry
	DoneTotal int
	AllTotal  int
	Drag      board.DragState
	Stats     Stats
}

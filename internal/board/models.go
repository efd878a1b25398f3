package board

import (
	"fmt"
	"strings"
	"time"
)

type Task struct {
	ID        int       `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// State is the persisted shape of the board: one ordered slice per column.
type State struct {
	Todo       []Task `json:"todo"`
	InProgress []Task `json:"inProgress"`
	Done       []Task `json:"done"`
}

// Entry is a task tagged with the column it currently sits in.
type Entry struct {
	Task
	Column Column
}

// DragState tracks an in-flight drag gesture.
type DragState struct {
	Active bool
	From   Column
	TaskID int
	// Over is the column under the pointer, valid when Hovering is set.
	Over     Column
	Hovering bool
}

// column returns the slice backing c.
func (s *State) column(c Column) *[]Task {
	switch c {
	case Todo:
		return &s.Todo
	case InProgress:
		return &s.InProgress
	case Done:
		return &s.Done
	}
	panic(fmt.Sprintf("board: invalid column %d", int(c)))
}

// Tasks returns the tasks in c, in display order.
func (s State) Tasks(c Column) []Task {
	return *s.column(c)
}

// Clone returns a deep copy.
func (s State) Clone() State {
	return State{
		Todo:       append([]Task(nil), s.Todo...),
		InProgress: append([]Task(nil), s.InProgress...),
		Done:       append([]Task(nil), s.Done...),
	}
}

func (s State) Len() int {
	return len(s.Todo) + len(s.InProgress) + len(s.Done)
}

// MaxID returns the highest id on the board, or 0 when empty.
func (s State) MaxID() int {
	max := 0
	for _, c := range Columns {
		for _, t := range s.Tasks(c) {
			if t.ID > max {
				max = t.ID
			}
		}
	}
	return max
}

// Validate rejects boards that could not have been produced by the engine.
func (s State) Validate() error {
	seen := make(map[int]Column)
	for _, c := range Columns {
		for _, t := range s.Tasks(c) {
			if t.ID <= 0 {
				return fmt.Errorf("%s: invalid task id %d", c, t.ID)
			}
			if strings.TrimSpace(t.Text) == "" {
				return fmt.Errorf("%s: task %d has empty text", c, t.ID)
			}
			if prev, ok := seen[t.ID]; ok {
				return fmt.Errorf("task %d appears in both %s and %s", t.ID, prev, c)
			}
			seen[t.ID] = c
		}
	}
	return nil
}

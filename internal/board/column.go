package board

import "fmt"

// Column is one of the three fixed lanes of the board.
type Column int

const (
	Todo Column = iota
	InProgress
	Done
)

// Columns lists the lanes in display order.
var Columns = [...]Column{Todo, InProgress, Done}

func (c Column) String() string {
	switch c {
	case Todo:
		return "todo"
	case InProgress:
		return "inProgress"
	case Done:
		return "done"
	}
	return fmt.Sprintf("Column(%d)", int(c))
}

// Title is the heading shown above the lane.
func (c Column) Title() string {
	switch c {
	case Todo:
		return "TO DO"
	case InProgress:
		return "IN PROGRESS"
	case Done:
		return "DONE"
	}
	return c.String()
}

func (c Column) Valid() bool {
	return c >= Todo && c <= Done
}

// Next is the lane a task moves to when stepped forward; Done stays Done.
func (c Column) Next() Column {
	if c >= Done {
		return Done
	}
	return c + 1
}

// Prev is the lane a task moves to when stepped back; Todo stays Todo.
func (c Column) Prev() Column {
	if c <= Todo {
		return Todo
	}
	return c - 1
}

func ParseColumn(s string) (Column, error) {
	for _, c := range Columns {
		if c.String() == s {
			return c, nil
		}
	}
	return Todo, fmt.Errorf("unknown column %q", s)
}

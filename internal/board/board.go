package board

import (
	"strings"
	"sync"
	"time"
)

// Board owns the tasks, their column placement, the focused task and the
// transient drag gesture. It is safe for concurrent use.
type Board struct {
	mu sync.RWMutex

	state   State
	nextID  int
	focused int // 0 means nothing is focused
	drag    DragState
}

// New loads s. Ids continue after the highest id in s and are never reused
// while the board is alive.
func New(s State) *Board {
	return &Board{
		state:  s.Clone(),
		nextID: s.MaxID() + 1,
	}
}

// AddTask appends a task to Todo and returns its id. Blank text is ignored.
// The new task takes focus when nothing else is focused.
func (b *Board) AddTask(text string) (int, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.state.Todo = append(b.state.Todo, Task{ID: id, Text: text, CreatedAt: time.Now()})
	if b.focused == 0 {
		b.focused = id
	}
	return id, true
}

// DeleteTask removes id from c. Deleting the focused task clears focus.
func (b *Board) DeleteTask(c Column, id int) bool {
	if !c.Valid() {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.remove(c, id); !ok {
		return false
	}
	if b.focused == id {
		b.focused = 0
	}
	return true
}

// MoveTask moves id from one column to the end of another. Focus is kept.
func (b *Board) MoveTask(from, to Column, id int) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.move(from, to, id)
}

// StepTask moves id one column forward (todo → inProgress → done) or back.
func (b *Board) StepTask(c Column, id int, forward bool) bool {
	if !c.Valid() {
		return false
	}
	to := c.Prev()
	if forward {
		to = c.Next()
	}
	if to == c {
		return false
	}
	return b.MoveTask(c, to, id)
}

// QuickComplete moves id from Todo or InProgress to Done.
func (b *Board) QuickComplete(id int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, c := range [...]Column{Todo, InProgress} {
		if b.move(c, Done, id) {
			if b.focused == id {
				b.focused = 0
			}
			return true
		}
	}
	return false
}

// CompleteFocusedTask moves the focused task to Done and clears focus.
// It does nothing when the focused task is missing or already done.
func (b *Board) CompleteFocusedTask() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.focused == 0 {
		return false
	}
	c, ok := b.locate(b.focused)
	if !ok || c == Done {
		return false
	}
	b.move(c, Done, b.focused)
	b.focused = 0
	return true
}

// FocusTask toggles focus on id.
func (b *Board) FocusTask(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.focused == id {
		b.focused = 0
		return
	}
	b.focused = id
}

// FocusedID returns the focused id, if any.
func (b *Board) FocusedID() (int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.focused, b.focused != 0
}

// HasFocus reports whether a task id is currently focused.
func (b *Board) HasFocus() bool {
	_, ok := b.FocusedID()
	return ok
}

// FocusedTask looks the focused task up in every column.
func (b *Board) FocusedTask() (Task, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.focused == 0 {
		return Task{}, false
	}
	c, ok := b.locate(b.focused)
	if !ok {
		return Task{}, false
	}
	for _, t := range b.state.Tasks(c) {
		if t.ID == b.focused {
			return t, true
		}
	}
	return Task{}, false
}

// --- Drag and drop ---

// DragStart picks up id from c. An invalid column is ignored.
func (b *Board) DragStart(c Column, id int) {
	if !c.Valid() {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drag = DragState{Active: true, From: c, TaskID: id}
}

func (b *Board) DragOver(c Column) {
	if !c.Valid() {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drag.Over = c
	b.drag.Hovering = true
}

func (b *Board) DragLeave() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drag.Hovering = false
}

// Drop finishes the gesture on target, moving the dragged task when it came
// from a different column. Drag state is always cleared.
func (b *Board) Drop(target Column) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	d := b.drag
	b.drag = DragState{}
	if !d.Active || d.From == target || !d.From.Valid() || !target.Valid() {
		return false
	}
	return b.move(d.From, target, d.TaskID)
}

func (b *Board) DragEnd() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drag = DragState{}
}

func (b *Board) Drag() DragState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.drag
}

// --- Views ---

// Snapshot returns a deep copy of the columns.
func (b *Board) Snapshot() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state.Clone()
}

// QuestLog lists InProgress tasks followed by Todo tasks.
func (b *Board) QuestLog() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Entry, 0, len(b.state.InProgress)+len(b.state.Todo))
	out = appendTagged(out, b.state.InProgress, InProgress)
	return appendTagged(out, b.state.Todo, Todo)
}

func (b *Board) DoneTasks() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return appendTagged(nil, b.state.Done, Done)
}

func (b *Board) DoneTotal() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.state.Done)
}

func (b *Board) AllTotal() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state.Len()
}

// Available counts tasks that can still be worked on.
func (b *Board) Available() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.state.Todo) + len(b.state.InProgress)
}

// --- internal helpers, callers hold b.mu ---

func (b *Board) remove(c Column, id int) (Task, bool) {
	col := b.state.column(c)
	for i, t := range *col {
		if t.ID == id {
			out := make([]Task, 0, len(*col)-1)
			out = append(out, (*col)[:i]...)
			*col = append(out, (*col)[i+1:]...)
			return t, true
		}
	}
	return Task{}, false
}

func (b *Board) move(from, to Column, id int) bool {
	t, ok := b.remove(from, id)
	if !ok {
		return false
	}
	dst := b.state.column(to)
	*dst = append(*dst, t)
	return true
}

func (b *Board) locate(id int) (Column, bool) {
	for _, c := range Columns {
		for _, t := range b.state.Tasks(c) {
			if t.ID == id {
				return c, true
			}
		}
	}
	return Todo, false
}

func appendTagged(out []Entry, tasks []Task, c Column) []Entry {
	for _, t := range tasks {
		out = append(out, Entry{Task: t, Column: c})
	}
	return out
}

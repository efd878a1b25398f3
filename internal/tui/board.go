package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pixelpomo/internal/board"
	"github.com/sadopc/pixelpomo/internal/orchestrator"
)

// boardModel is the kanban view. Tasks are moved with the step keys or by
// grabbing a card and dropping it on another column.
type boardModel struct {
	orch   *orchestrator.Orchestrator
	snap   orchestrator.Snapshot
	width  int
	height int

	col    board.Column
	cursor [len(board.Columns)]int

	formActive bool
	form       *huh.Form
	newText    *string
}

func newBoardModel(o *orchestrator.Orchestrator) boardModel {
	text := ""
	return boardModel{
		orch:    o,
		snap:    o.Snapshot(),
		newText: &text,
	}
}

func (b *boardModel) setSize(w, h int) {
	b.width = w
	b.height = h
}

func (b *boardModel) setSnapshot(s orchestrator.Snapshot) {
	b.snap = s
	for _, c := range board.Columns {
		b.cursor[c] = clampCursor(b.cursor[c], len(s.Board.Tasks(c)))
	}
}

func (b boardModel) selected() (board.Task, bool) {
	tasks := b.snap.Board.Tasks(b.col)
	if i := b.cursor[b.col]; i < len(tasks) {
		return tasks[i], true
	}
	return board.Task{}, false
}

func (b boardModel) dragging() bool { return b.snap.Drag.Active }

func (b boardModel) update(msg tea.Msg) (boardModel, tea.Cmd) {
	if b.formActive && b.form != nil {
		return b.updateForm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, nil
	}
	if b.dragging() {
		return b.updateDrag(km)
	}

	switch {
	case key.Matches(km, keys.Left):
		b.col = b.col.Prev()
	case key.Matches(km, keys.Right):
		b.col = b.col.Next()
	case key.Matches(km, keys.Up):
		if b.cursor[b.col] > 0 {
			b.cursor[b.col]--
		}
	case key.Matches(km, keys.Down):
		if b.cursor[b.col] < len(b.snap.Board.Tasks(b.col))-1 {
			b.cursor[b.col]++
		}
	case key.Matches(km, keys.New):
		b.form = newTaskForm(b.newText)
		b.formActive = true
		return b, b.form.Init()
	case key.Matches(km, keys.Delete):
		if t, ok := b.selected(); ok && b.orch.DeleteTask(b.col, t.ID) {
			return b, status("Deleted "+truncate(t.Text, 30), false)
		}
	case key.Matches(km, keys.Focus):
		if t, ok := b.selected(); ok {
			b.orch.FocusTask(t.ID)
		}
	case key.Matches(km, keys.Complete):
		if t, ok := b.selected(); ok && b.orch.QuickComplete(t.ID) {
			return b, status("Quest complete: "+truncate(t.Text, 30), false)
		}
	case key.Matches(km, keys.StepForward), key.Matches(km, keys.StepBack):
		forward := key.Matches(km, keys.StepForward)
		if t, ok := b.selected(); ok && b.orch.StepTask(b.col, t.ID, forward) {
			b.follow(t.ID, b.stepTarget(forward))
		}
	case key.Matches(km, keys.Grab):
		if t, ok := b.selected(); ok {
			b.orch.DragStart(b.col, t.ID)
			b.orch.DragOver(b.col)
		}
	}
	return b, nil
}

// updateDrag handles keys while a card is held. Left and right carry the
// card across columns; moving off either edge leaves the board.
func (b boardModel) updateDrag(km tea.KeyMsg) (boardModel, tea.Cmd) {
	d := b.snap.Drag
	switch {
	case key.Matches(km, keys.Left):
		if b.col == board.Todo {
			b.orch.DragLeave()
			return b, nil
		}
		b.col = b.col.Prev()
		b.orch.DragOver(b.col)
	case key.Matches(km, keys.Right):
		if b.col == board.Done {
			b.orch.DragLeave()
			return b, nil
		}
		b.col = b.col.Next()
		b.orch.DragOver(b.col)
	case key.Matches(km, keys.Grab), key.Matches(km, keys.Enter):
		if !d.Hovering {
			b.orch.DragEnd()
			return b, nil
		}
		if b.orch.Drop(b.col) {
			b.follow(d.TaskID, b.col)
		}
	case key.Matches(km, keys.Back):
		b.orch.DragEnd()
		b.col = d.From
	}
	return b, nil
}

func (b boardModel) stepTarget(forward bool) board.Column {
	if forward {
		return b.col.Next()
	}
	return b.col.Prev()
}

// follow moves the cursor onto id, which now sits at the end of c.
func (b *boardModel) follow(id int, c board.Column) {
	b.col = c
	snap := b.orch.Snapshot()
	for i, t := range snap.Board.Tasks(c) {
		if t.ID == id {
			b.cursor[c] = i
		}
	}
}

func (b boardModel) updateForm(msg tea.Msg) (boardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			b.formActive = false
			b.form = nil
			return b, nil
		}
	}

	form, cmd := b.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		b.form = f
	}

	if b.form.State == huh.StateCompleted {
		b.formActive = false
		b.form = nil
		if _, ok := b.orch.AddTask(*b.newText); ok {
			b.col = board.Todo
			b.cursor[board.Todo] = len(b.snap.Board.Todo)
			return b, status("Quest added", false)
		}
		return b, nil
	}

	return b, cmd
}

func (b boardModel) view() string {
	w := b.width - 4

	if b.formActive && b.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Quest"), "", b.form.View()),
		)
	}

	title := titleStyle.Render("Quest Board")
	progress := mutedStyle.Render(fmt.Sprintf("  %d/%d done", b.snap.DoneTotal, b.snap.AllTotal))

	colWidth := max((w-6)/len(board.Columns), 16)
	var cols []string
	for _, c := range board.Columns {
		cols = append(cols, b.renderColumn(c, colWidth))
	}

	hint := "  n: new  f: focus  x: complete  d: delete  </>: move  m: grab"
	if b.dragging() {
		hint = "  ←/→: carry  m/enter: drop  esc: cancel"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title+progress,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, cols...),
		"",
		mutedStyle.Render(hint),
	)
}

func (b boardModel) renderColumn(c board.Column, width int) string {
	tasks := b.snap.Board.Tasks(c)
	d := b.snap.Drag

	focused := 0
	if b.snap.Focused != nil {
		focused = b.snap.Focused.ID
	}

	heading := titleStyle.Render(c.Title()) + mutedStyle.Render(fmt.Sprintf(" (%d)", len(tasks)))
	if c == b.col {
		heading = selectedItemStyle.Render(c.Title()) + mutedStyle.Render(fmt.Sprintf(" (%d)", len(tasks)))
	}
	rows := []string{heading, ""}

	if len(tasks) == 0 {
		rows = append(rows, mutedStyle.Render("empty"))
	}
	for i, t := range tasks {
		cursor := "  "
		style := normalItemStyle
		if c == board.Done {
			style = doneItemStyle
		}
		if c == b.col && i == b.cursor[c] {
			cursor = "> "
			style = selectedItemStyle
		}
		marker := ""
		if t.ID == focused {
			marker = focusStyle.Render("★ ")
		}
		if d.Active && t.ID == d.TaskID {
			marker = warningStyle.Render("≡ ")
		}
		rows = append(rows, cursor+marker+style.Render(truncate(t.Text, max(width-8, 6))))
	}

	style := columnStyle
	if d.Active && d.Hovering && d.Over == c {
		style = dropTargetStyle
	}
	return style.Width(width).Render(strings.Join(rows, "\n"))
}

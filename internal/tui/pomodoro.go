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
	"github.com/sadopc/pixelpomo/internal/timer"
)

// pomodoroModel is the main play screen: the countdown, the quest log and
// whichever prompt the orchestrator is asking.
type pomodoroModel struct {
	orch   *orchestrator.Orchestrator
	snap   orchestrator.Snapshot
	width  int
	height int

	cursor int // index into snap.QuestLog

	formActive bool
	form       *huh.Form
	newText    *string
}

func newPomodoroModel(o *orchestrator.Orchestrator) pomodoroModel {
	text := ""
	return pomodoroModel{
		orch:    o,
		snap:    o.Snapshot(),
		newText: &text,
	}
}

func (p *pomodoroModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p *pomodoroModel) setSnapshot(s orchestrator.Snapshot) {
	p.snap = s
	p.cursor = clampCursor(p.cursor, len(s.QuestLog))
}

func (p pomodoroModel) selected() (board.Entry, bool) {
	if p.cursor < len(p.snap.QuestLog) {
		return p.snap.QuestLog[p.cursor], true
	}
	return board.Entry{}, false
}

func (p pomodoroModel) update(msg tea.Msg) (pomodoroModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	switch p.snap.Prompt {
	case orchestrator.PromptCompletion:
		return p.updateCompletionPrompt(km)
	case orchestrator.PromptFocus:
		return p.updateFocusPrompt(km)
	case orchestrator.PromptTransition:
		return p.updateTransitionPrompt(km)
	}

	st := p.snap.Timer
	switch {
	case key.Matches(km, keys.Pause):
		if st.Running {
			p.orch.Pause()
		} else {
			p.orch.Start()
		}
	case key.Matches(km, keys.Start):
		p.orch.Start()
	case key.Matches(km, keys.Reset):
		p.orch.Reset()
	case key.Matches(km, keys.Work):
		p.orch.SwitchMode(timer.Work)
	case key.Matches(km, keys.ShortBreak):
		p.orch.SwitchMode(timer.ShortBreak)
	case key.Matches(km, keys.LongBreak):
		p.orch.SwitchMode(timer.LongBreak)
	case key.Matches(km, keys.Longer), key.Matches(km, keys.Shorter):
		delta := durationStep
		if key.Matches(km, keys.Shorter) {
			delta = -durationStep
		}
		if !p.orch.AdjustDuration(st.Mode, delta) {
			return p, status("Pause the timer to change durations", true)
		}
	case key.Matches(km, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(km, keys.Down):
		if p.cursor < len(p.snap.QuestLog)-1 {
			p.cursor++
		}
	case key.Matches(km, keys.Focus):
		if e, ok := p.selected(); ok {
			p.orch.FocusTask(e.ID)
		}
	case key.Matches(km, keys.Complete):
		if e, ok := p.selected(); ok && p.orch.QuickComplete(e.ID) {
			return p, status("Quest complete: "+e.Text, false)
		}
	case key.Matches(km, keys.New):
		p.form = newTaskForm(p.newText)
		p.formActive = true
		return p, p.form.Init()
	}
	return p, nil
}

func (p pomodoroModel) updateCompletionPrompt(msg tea.KeyMsg) (pomodoroModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Yes):
		name := ""
		if p.snap.Focused != nil {
			name = p.snap.Focused.Text
		}
		p.orch.ResolveCompletion(true)
		return p, status("Quest complete! "+name, false)
	case key.Matches(msg, keys.No), key.Matches(msg, keys.Back):
		p.orch.ResolveCompletion(false)
	}
	return p, nil
}

func (p pomodoroModel) updateFocusPrompt(msg tea.KeyMsg) (pomodoroModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(p.snap.QuestLog)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Focus):
		if e, ok := p.selected(); ok {
			p.orch.FocusTask(e.ID)
		}
	case key.Matches(msg, keys.Start):
		p.orch.StartAnyway()
	case key.Matches(msg, keys.Back):
		p.orch.CancelFocusPrompt()
	}
	return p, nil
}

func (p pomodoroModel) updateTransitionPrompt(msg tea.KeyMsg) (pomodoroModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Yes), key.Matches(msg, keys.Enter):
		p.orch.AcceptTransition()
	case key.Matches(msg, keys.No), key.Matches(msg, keys.Back):
		p.orch.DismissTransition()
	}
	return p, nil
}

func (p pomodoroModel) updateForm(msg tea.Msg) (pomodoroModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		p.form = nil
		if _, ok := p.orch.AddTask(*p.newText); ok {
			return p, status("Quest added", false)
		}
		return p, nil
	}

	return p, cmd
}

func (p pomodoroModel) view() string {
	w := p.width - 4

	if p.formActive && p.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Quest"), "", p.form.View()),
		)
	}

	timerPanel := panelStyle.Width(w).Render(p.renderTimer(w - 6))

	var lower string
	switch p.snap.Prompt {
	case orchestrator.PromptCompletion:
		lower = p.renderCompletionPrompt()
	case orchestrator.PromptFocus:
		lower = p.renderFocusPrompt()
	case orchestrator.PromptTransition:
		lower = p.renderTransitionPrompt()
	default:
		lower = panelStyle.Width(w).Render(p.renderQuestLog(w - 6))
	}
	if p.snap.Prompt != orchestrator.PromptNone {
		lower = lipgloss.PlaceHorizontal(w, lipgloss.Center, lower)
	}

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, lower)
}

func (p pomodoroModel) renderTimer(w int) string {
	st := p.snap.Timer

	// Mode selector with per-mode minutes
	var tabs []string
	for _, m := range timer.Modes {
		label := fmt.Sprintf("%s %dm", m.Label(), st.Durations.Minutes(m))
		if m == st.Mode {
			tabs = append(tabs, modeStyle(m).Padding(0, 2).Underline(true).Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}
	modeRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	clock := timer.FormatTime(st.TimeLeft)
	var timeDisplay, stateLabel string
	switch {
	case st.Running:
		timeDisplay = modeStyle(st.Mode).Width(w).Align(lipgloss.Center).Render(clock)
		stateLabel = modeStyle(st.Mode).Render(st.Mode.Label())
	case st.TimeLeft > 0 && st.TimeLeft < st.Full():
		timeDisplay = timerPausedStyle.Width(w).Render(clock)
		stateLabel = warningStyle.Render("PAUSED")
	default:
		timeDisplay = timerStyle.Width(w).Render(clock)
		stateLabel = mutedStyle.Render("READY")
	}

	focus := mutedStyle.Render("No quest focused")
	if p.snap.Focused != nil {
		focus = focusStyle.Render("★ " + truncate(p.snap.Focused.Text, max(w-4, 8)))
	}

	return lipgloss.JoinVertical(lipgloss.Center,
		modeRow,
		"",
		timeDisplay,
		stateLabel,
		"",
		renderBar(st.Progress(), min(w, 40), modeColors[st.Mode]),
		p.renderSessionDots(),
		"",
		focus,
	)
}

// renderSessionDots shows progress toward the next long break.
func (p pomodoroModel) renderSessionDots() string {
	st := p.snap.Timer
	filled := st.SessionsCompleted % timer.LongBreakInterval
	if st.SessionsCompleted > 0 && filled == 0 && st.Mode == timer.LongBreak {
		filled = timer.LongBreakInterval
	}
	var parts []string
	for i := 0; i < timer.LongBreakInterval; i++ {
		switch {
		case i < filled:
			parts = append(parts, successStyle.Render("●"))
		case i == filled && st.Mode == timer.Work && st.Running:
			parts = append(parts, modeStyle(timer.Work).Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	counter := mutedStyle.Render(fmt.Sprintf("  %d sessions", st.SessionsCompleted))
	return strings.Join(parts, " ") + counter
}

func (p pomodoroModel) renderQuestLog(w int) string {
	title := titleStyle.Render("Quest Log")
	if len(p.snap.QuestLog) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No open quests. Press n to add one."),
		)
	}

	rows := []string{title, ""}
	rows = append(rows, p.renderEntries(w)...)
	rows = append(rows, "", mutedStyle.Render("  n: new  f: focus  x: complete  space: start/pause  +/-: duration"))
	return strings.Join(rows, "\n")
}

func (p pomodoroModel) renderEntries(w int) []string {
	focused := 0
	if p.snap.Focused != nil {
		focused = p.snap.Focused.ID
	}
	var rows []string
	for i, e := range p.snap.QuestLog {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		marker := "  "
		if e.ID == focused {
			marker = focusStyle.Render("★ ")
		}
		tag := ""
		if e.Column == board.InProgress {
			tag = highlightStyle.Render(" [" + e.Column.Title() + "]")
		}
		rows = append(rows, cursor+marker+style.Render(truncate(e.Text, max(w-24, 10)))+tag)
	}
	return rows
}

func (p pomodoroModel) renderCompletionPrompt() string {
	name := "your quest"
	if p.snap.Focused != nil {
		name = p.snap.Focused.Text
	}
	return promptStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
		focusStyle.Render("SESSION COMPLETE"),
		"",
		"Did you finish",
		titleStyle.Render(name)+"?",
		"",
		mutedStyle.Render("y: yes, quest done   n: not yet"),
	))
}

func (p pomodoroModel) renderFocusPrompt() string {
	rows := []string{
		focusStyle.Render("CHOOSE YOUR QUEST"),
		"",
		"Pick a quest to focus on before starting.",
		"",
	}
	rows = append(rows, p.renderEntries(40)...)
	rows = append(rows, "", mutedStyle.Render("enter: focus & start   s: start anyway   esc: cancel"))
	return promptStyle.Align(lipgloss.Left).Render(strings.Join(rows, "\n"))
}

func (p pomodoroModel) renderTransitionPrompt() string {
	st := p.snap.Timer
	if st.Pending == nil {
		return ""
	}
	next := *st.Pending
	headline := "Time for a break!"
	if next == timer.Work {
		headline = "Break's over!"
	}
	return promptStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render(headline),
		"",
		"Start "+modeStyle(next).Render(next.Label())+fmt.Sprintf(" (%dm)?", st.Durations.Minutes(next)),
		"",
		mutedStyle.Render("y/enter: start   n/esc: later"),
	))
}

// renderBar draws a horizontal progress bar for percent in [0, 100].
func renderBar(percent float64, width int, color lipgloss.Color) string {
	if width < 1 {
		return ""
	}
	filled := int(percent / 100 * float64(width))
	filled = max(0, min(filled, width))
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(colorSubtle).Render(strings.Repeat("░", width-filled))
}

func status(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isError: isError}
	}
}

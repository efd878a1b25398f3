package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pixelpomo/internal/orchestrator"
	"github.com/sadopc/pixelpomo/internal/timer"
)

type settingsForm int

const (
	formDurations settingsForm = iota
	formWipe
)

type settingsModel struct {
	orch   *orchestrator.Orchestrator
	snap   orchestrator.Snapshot
	dbPath string
	width  int
	height int

	formActive bool
	form       *huh.Form
	formType   settingsForm

	// Form values as pointers (survive value copies)
	work       *string
	shortBreak *string
	longBreak  *string
	confirm    *bool
}

func newSettingsModel(o *orchestrator.Orchestrator, dbPath string) settingsModel {
	w, sb, lb, c := "", "", "", false
	return settingsModel{
		orch:       o,
		snap:       o.Snapshot(),
		dbPath:     dbPath,
		work:       &w,
		shortBreak: &sb,
		longBreak:  &lb,
		confirm:    &c,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s *settingsModel) setSnapshot(snap orchestrator.Snapshot) {
	s.snap = snap
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Enter):
			if s.snap.Prompt == orchestrator.PromptCompletion {
				return s, status("Answer the session prompt first", true)
			}
			if s.snap.Timer.Running {
				return s, status("Pause the timer to change durations", true)
			}
			return s.showDurationsForm()
		case key.Matches(msg, keys.Reset):
			return s.showWipeForm()
		}
	}
	return s, nil
}

func (s settingsModel) showDurationsForm() (settingsModel, tea.Cmd) {
	d := s.snap.Timer.Durations
	*s.work = strconv.Itoa(d.Work)
	*s.shortBreak = strconv.Itoa(d.ShortBreak)
	*s.longBreak = strconv.Itoa(d.LongBreak)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Work (min)").Value(s.work).Validate(validMinutes),
			huh.NewInput().Title("Short break (min)").Value(s.shortBreak).Validate(validMinutes),
			huh.NewInput().Title("Long break (min)").Value(s.longBreak).Validate(validMinutes),
		).Title("Durations"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formType = formDurations
	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) showWipeForm() (settingsModel, tea.Cmd) {
	*s.confirm = false
	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Wipe all data?").
				Description("Quests, session history and durations will be deleted.").
				Affirmative("Wipe").
				Negative("Keep").
				Value(s.confirm),
		),
	).WithShowHelp(true)

	s.formType = formWipe
	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		switch s.formType {
		case formDurations:
			return s, s.saveDurations()
		case formWipe:
			if *s.confirm {
				return s, s.wipe()
			}
		}
		return s, nil
	}

	return s, cmd
}

// saveDurations applies the form as per-mode adjustments so the usual
// clamping and persistence apply.
func (s settingsModel) saveDurations() tea.Cmd {
	current := s.snap.Timer.Durations
	wanted := map[timer.Mode]string{
		timer.Work:       *s.work,
		timer.ShortBreak: *s.shortBreak,
		timer.LongBreak:  *s.longBreak,
	}
	for _, m := range timer.Modes {
		n, err := strconv.Atoi(strings.TrimSpace(wanted[m]))
		if err != nil {
			continue
		}
		if delta := timer.Clamp(n) - current.Minutes(m); delta != 0 {
			if !s.orch.AdjustDuration(m, delta) {
				return status("Pause the timer to change durations", true)
			}
		}
	}
	return status("Durations saved", false)
}

func (s settingsModel) wipe() tea.Cmd {
	o := s.orch
	return func() tea.Msg {
		return wipeDoneMsg{err: o.Wipe()}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	d := s.snap.Timer.Durations
	row := func(label, value string) string {
		return fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(24).Render(label), highlightStyle.Render(value))
	}

	rows := []string{
		title,
		"",
		row("Work", fmt.Sprintf("%d min", d.Work)),
		row("Short break", fmt.Sprintf("%d min", d.ShortBreak)),
		row("Long break", fmt.Sprintf("%d min", d.LongBreak)),
		row("Long break every", fmt.Sprintf("%d sessions", timer.LongBreakInterval)),
		"",
		row("Database", s.dbPath),
		"",
		mutedStyle.Render("  enter: edit durations  r: wipe all data"),
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

package tui

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pixelpomo/internal/export"
	"github.com/sadopc/pixelpomo/internal/orchestrator"
	"github.com/sadopc/pixelpomo/internal/timer"
)

// Options configures the TUI. Zero values fall back to defaults.
type Options struct {
	// DBPath is shown in the settings view.
	DBPath string
	// ExportDir receives export files; defaults to the home directory.
	ExportDir string
	Logger    *slog.Logger
}

// App is the root Bubble Tea model.
type App struct {
	orch   *orchestrator.Orchestrator
	opts   Options
	logger *slog.Logger
	width  int
	height int

	snap orchestrator.Snapshot

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	pomodoro pomodoroModel
	board    boardModel
	reports  reportsModel
	settings settingsModel

	help   help.Model
	status string
	isErr  bool
}

func NewApp(o *orchestrator.Orchestrator, opts Options) App {
	h := help.New()
	h.ShowAll = false

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return App{
		orch:       o,
		opts:       opts,
		logger:     logger,
		snap:       o.Snapshot(),
		activeView: viewPomodoro,
		pomodoro:   newPomodoroModel(o),
		board:      newBoardModel(o),
		reports:    newReportsModel(o),
		settings:   newSettingsModel(o, opts.DBPath),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return waitForEvent(a.orch.Events())
}

// waitForEvent blocks on the orchestrator's event stream and hands the next
// event to the update loop. Update re-arms it after every event.
func waitForEvent(events <-chan orchestrator.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg(e)
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 5 // header + stats bar + footer
		a.pomodoro.setSize(a.width, contentHeight)
		a.board.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewPomodoro
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewBoard
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewStats
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, nil
		}

	case eventMsg:
		a.sync()
		if msg.Kind == orchestrator.EventCompleted && msg.Completion != nil {
			a.status = completionStatus(*msg.Completion)
			a.isErr = false
			// Prompts live on the timer view.
			a.activeView = viewPomodoro
		}
		return a, waitForEvent(a.orch.Events())

	case statusMsg:
		a.status = msg.text
		a.isErr = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.isErr = false
		a.exportPicking = false
		return a, nil

	case wipeDoneMsg:
		a.sync()
		if msg.err != nil {
			a.logger.Error("wipe failed", "error", msg.err)
			a.status = fmt.Sprintf("Wipe error: %v", msg.err)
			a.isErr = true
		} else {
			a.status = "All data wiped"
			a.isErr = false
		}
		return a, nil
	}

	return a.updateActiveView(msg)
}

func completionStatus(c timer.Completion) string {
	if c.Mode == timer.Work {
		return "Work session complete!"
	}
	return c.Mode.Label() + " over"
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewPomodoro:
		a.pomodoro, cmd = a.pomodoro.update(msg)
	case viewBoard:
		a.board, cmd = a.board.update(msg)
	case viewStats:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	a.sync()
	return a, cmd
}

// sync pulls a fresh snapshot into every view.
func (a *App) sync() {
	a.snap = a.orch.Snapshot()
	a.pomodoro.setSnapshot(a.snap)
	a.board.setSnapshot(a.snap)
	a.reports.setSnapshot(a.snap)
	a.settings.setSnapshot(a.snap)
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewPomodoro:
		return a.pomodoro.formActive
	case viewBoard:
		return a.board.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewPomodoro:
		content = a.pomodoro.view()
	case viewBoard:
		content = a.board.view()
	case viewStats:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("pixelpomo")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow)),
		headerStyle.Render(a.renderStatsBar()),
	)
}

// renderStatsBar is the one-line summary shown above every view.
func (a App) renderStatsBar() string {
	s := a.snap.Stats
	item := func(label, value string, color lipgloss.Color) string {
		return mutedStyle.Render(label+" ") + lipgloss.NewStyle().Foreground(color).Render(value)
	}
	return item("TODAY", fmt.Sprintf("%d", s.TodayCount), colorHighlight) + "   " +
		item("FOCUS", fmt.Sprintf("%dm", s.TodayMinutes), colorSuccess) + "   " +
		item("STREAK", fmt.Sprintf("%dd", s.Streak), colorPrimary) + "   " +
		item("QUESTS", fmt.Sprintf("%d/%d", a.snap.DoneTotal, a.snap.AllTotal), colorFocus)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.isErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	// Timer indicator in footer
	timerInfo := ""
	if st := a.snap.Timer; st.Running {
		timerInfo = modeStyle(st.Mode).Render(" ● " + st.Mode.Label() + " " + timer.FormatTime(st.TimeLeft))
	} else if st.TimeLeft > 0 && st.TimeLeft < st.Full() {
		timerInfo = warningStyle.Render(" ⏸ " + timer.FormatTime(st.TimeLeft))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Sessions")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range export.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+string(f)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(f export.Format) tea.Cmd {
	sessions := a.orch.History()
	dir := a.opts.ExportDir
	logger := a.logger
	return func() tea.Msg {
		if dir == "" {
			dir, _ = os.UserHomeDir()
		}
		path := filepath.Join(dir, ExportFileName(f, time.Now()))
		if err := export.Write(f, sessions, path); err != nil {
			logger.Error("export failed", "format", f, "path", path, "error", err)
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		logger.Info("exported sessions", "format", f, "path", path, "count", len(sessions))
		return exportDoneMsg{path: path}
	}
}

// ExportFileName is the default name of an export written on day now.
func ExportFileName(f export.Format, now time.Time) string {
	return fmt.Sprintf("pixelpomo-export-%s%s", now.Format("2006-01-02"), f.Ext())
}

package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Start       key.Binding
	Pause       key.Binding
	Reset       key.Binding
	Work        key.Binding
	ShortBreak  key.Binding
	LongBreak   key.Binding
	Longer      key.Binding
	Shorter     key.Binding
	New         key.Binding
	Delete      key.Binding
	Focus       key.Binding
	Complete    key.Binding
	StepForward key.Binding
	StepBack    key.Binding
	Grab        key.Binding
	Yes         key.Binding
	No          key.Binding
	Export      key.Binding
	Tab1        key.Binding
	Tab2        key.Binding
	Tab3        key.Binding
	Tab4        key.Binding
	Tab         key.Binding
	Help        key.Binding
	Enter       key.Binding
	Back        key.Binding
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	Quit        key.Binding
}

var keys = keyMap{
	Start: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "start"),
	),
	Pause: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "start/pause"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset"),
	),
	Work: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "work"),
	),
	ShortBreak: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "short break"),
	),
	LongBreak: key.NewBinding(
		key.WithKeys("B"),
		key.WithHelp("B", "long break"),
	),
	Longer: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "+5 min"),
	),
	Shorter: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "-5 min"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new quest"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Focus: key.NewBinding(
		key.WithKeys("f", "enter"),
		key.WithHelp("f", "focus"),
	),
	Complete: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "complete"),
	),
	StepForward: key.NewBinding(
		key.WithKeys(">", "shift+right"),
		key.WithHelp(">", "move right"),
	),
	StepBack: key.NewBinding(
		key.WithKeys("<", "shift+left"),
		key.WithHelp("<", "move left"),
	),
	Grab: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "grab/drop"),
	),
	Yes: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "yes"),
	),
	No: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "no"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export"),
	),
	Tab1: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "timer"),
	),
	Tab2: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "board"),
	),
	Tab3: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "stats"),
	),
	Tab4: key.NewBinding(
		key.WithKeys("4"),
		key.WithHelp("4", "settings"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "right"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Reset, k.New, k.Focus, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Reset, k.Work, k.ShortBreak, k.LongBreak},
		{k.Longer, k.Shorter, k.New, k.Focus, k.Complete},
		{k.Delete, k.StepBack, k.StepForward, k.Grab, k.Export},
		{k.Tab1, k.Tab2, k.Tab3, k.Tab4},
		{k.Up, k.Down, k.Left, k.Right, k.Back, k.Quit},
	}
}

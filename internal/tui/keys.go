package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every dashboard key binding. The help overlay lists the same
// keys from dashboard.HelpBindings.
type keyMap struct {
	Quit        key.Binding
	Help        key.Binding
	Detailed    key.Binding
	Compact     key.Binding
	Minimal     key.Binding
	CycleLayout key.Binding
	NextWidget  key.Binding
	PrevWidget  key.Binding
	SortCPU     key.Binding
	SortMemory  key.Binding
	Snapshot    key.Binding
	Colour      key.Binding
	Reset       key.Binding
	Alerts      key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("h", "?"),
		key.WithHelp("h/?", "help"),
	),
	Detailed: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "detailed layout"),
	),
	Compact: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "compact layout"),
	),
	Minimal: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "minimal layout"),
	),
	CycleLayout: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "cycle layout"),
	),
	NextWidget: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next widget"),
	),
	PrevWidget: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "previous widget"),
	),
	SortCPU: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "sort by cpu"),
	),
	SortMemory: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "sort by memory"),
	),
	Snapshot: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "snapshot"),
	),
	Colour: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "toggle colour"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset statistics"),
	),
	Alerts: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "toggle alerts"),
	),
}

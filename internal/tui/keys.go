package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Detectors  key.Binding
	Confirm    key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k", "shift+tab"),
		key.WithHelp("↑/k", "previous commit"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j", "tab"),
		key.WithHelp("↓/j", "next commit"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "scroll message up"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "scroll message down"),
	),
	Detectors: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "detectors"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter", "y"),
		key.WithHelp("enter/y", "create tag"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

package statsui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit       key.Binding
	PrevTab    key.Binding
	NextTab    key.Binding
	Wider      key.Binding
	Narrower   key.Binding
	Settings   key.Binding
	CharWindow key.Binding
	Apply      key.Binding
	Cancel     key.Binding
	NextField  key.Binding
	PrevField  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("left", "h", "shift+tab"),
			key.WithHelp("←", "prev tab"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("right", "l", "tab"),
			key.WithHelp("→", "next tab"),
		),
		Wider: key.NewBinding(
			key.WithKeys("="),
			key.WithHelp("=", "wider window"),
		),
		Narrower: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "narrower window"),
		),
		Settings: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		CharWindow: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "window/all chars"),
		),
		Apply: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "prev field"),
		),
	}
}

// browseKeys is the help shown while browsing.
type browseKeys keyMap

// ShortHelp implements help.KeyMap.
func (k browseKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevTab, k.NextTab, k.Narrower, k.Wider, k.CharWindow, k.Settings, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k browseKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// formKeys is the help shown while editing the filter form.
type formKeys keyMap

// ShortHelp implements help.KeyMap.
func (k formKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.NextField, k.PrevField, k.Apply, k.Cancel}
}

// FullHelp implements help.KeyMap.
func (k formKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

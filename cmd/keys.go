package cmd

import "github.com/charmbracelet/bubbles/key"

type helpKeyMap struct {
	quit       key.Binding
	toggleHelp key.Binding
}

var helpKeys = helpKeyMap{
	quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q/esc", "stop scanning"),
	),
	toggleHelp: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more help"),
	),
}

func (k helpKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggleHelp, k.quit}
}
func (k helpKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.toggleHelp},
		{k.quit},
	}
}

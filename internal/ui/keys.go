package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Start  key.Binding
	Pause  key.Binding
	Stop   key.Binding
	Edit   key.Binding
	Clock  key.Binding
	Help   key.Binding
	Quit   key.Binding
	Save   key.Binding
	Cancel key.Binding
	Next   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Start: key.NewBinding(key.WithKeys("s", " "), key.WithHelp("s/space", "start·resume")),
		Pause: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Stop:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop & log")),
		Edit:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "quick edit")),
		Clock: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "12/24h")),
		Help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Save:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "next·save")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Next:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "suggestion")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Pause, k.Stop, k.Edit, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Pause, k.Stop},
		{k.Edit, k.Clock},
		{k.Help, k.Quit},
	}
}

// editKeys is the help shown while the quick-edit form is open.
type editKeys struct{ keyMap }

func (k editKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Next, k.Cancel}
}

func (k editKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

package termui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	Help      key.Binding
	Edit      key.Binding
	Commit    key.Binding
	Cancel    key.Binding
	Raise     key.Binding
	Lower     key.Binding
	Best      key.Binding
	Metric    key.Binding
	Timeframe key.Binding
	Venue     key.Binding
	Next      key.Binding
	Prev      key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Edit, k.Raise, k.Lower, k.Metric, k.Next, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Quit, k.Help},
		{k.Edit, k.Commit, k.Cancel},
		{k.Raise, k.Lower, k.Best},
		{k.Metric, k.Timeframe, k.Venue},
		{k.Next, k.Prev},
	}
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q/ctrl+c", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e", "/"),
		key.WithHelp("e", "edit line"),
	),
	Commit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "commit"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "leave entry"),
	),
	Raise: key.NewBinding(
		key.WithKeys("up", "k", "+"),
		key.WithHelp("↑", "line +0.5"),
	),
	Lower: key.NewBinding(
		key.WithKeys("down", "j", "-"),
		key.WithHelp("↓", "line -0.5"),
	),
	Best: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "best line"),
	),
	Metric: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "metric"),
	),
	Timeframe: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "timeframe"),
	),
	Venue: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "home/away"),
	),
	Next: key.NewBinding(
		key.WithKeys("tab", "right", "l"),
		key.WithHelp("tab", "next subject"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab", "left", "h"),
		key.WithHelp("shift+tab", "prev subject"),
	),
}

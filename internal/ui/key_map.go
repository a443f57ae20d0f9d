package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	search    key.Binding
	confirm   key.Binding
	cancel    key.Binding
	sort      key.Binding
	direction key.Binding
	prev      key.Binding
	next      key.Binding
	grow      key.Binding
	shrink    key.Binding
	reload    key.Binding
	tab       key.Binding
	help      key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		confirm:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort field")),
		direction: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "direction")),
		prev:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
		next:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
		grow:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "more per page")),
		shrink:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "fewer per page")),
		reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		tab:       key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch")),
		help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.search, k.sort, k.prev, k.next, k.tab, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.search, k.confirm, k.cancel},
		{k.sort, k.direction, k.grow, k.shrink},
		{k.prev, k.next, k.reload},
		{k.tab, k.help, k.quit},
	}
}

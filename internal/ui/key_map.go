package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	like    key.Binding
	dislike key.Binding
	retry   key.Binding
	next    key.Binding
	prev    key.Binding
	swipe   key.Binding
	matches key.Binding
	library key.Binding
	history key.Binding
	add     key.Binding
	search  key.Binding
	enter   key.Binding
	back    key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		like:    key.NewBinding(key.WithKeys("l", "right", "y"), key.WithHelp("→/l", "want to watch")),
		dislike: key.NewBinding(key.WithKeys("h", "left", "n"), key.WithHelp("←/h", "nah")),
		retry:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		prev:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous view")),
		swipe:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "swipe")),
		matches: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "matches")),
		library: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "all movies")),
		history: key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "history")),
		add:     key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "add movie")),
		search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.next, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.like, k.dislike, k.retry},
		{k.swipe, k.matches, k.library, k.history, k.add},
		{k.search, k.enter, k.back, k.quit},
	}
}

package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Left   key.Binding
	Right  key.Binding
	Up     key.Binding
	Down   key.Binding
	Open   key.Binding
	Back   key.Binding
	Add    key.Binding
	Remove key.Binding
	Title  key.Binding
	Color  key.Binding
	Grab   key.Binding
	Theme  key.Binding
	Layout key.Binding
	Reload key.Binding
	Help   key.Binding
	Quit   key.Binding

	// Detail view.
	Edit     key.Binding
	Toggle   key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	Clear    key.Binding
	Start    key.Binding
	Lap      key.Binding
	Reset    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev (grid)")),
		Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next (grid)")),
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev (list)")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next (list)")),
		Open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Remove: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		Title:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "title")),
		Color:  key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "background")),
		Grab:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move")),
		Theme:  key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "theme")),
		Layout: key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "layout")),
		Reload: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Toggle:   key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle")),
		MoveUp:   key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
		MoveDown: key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
		Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		Start:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start/stop")),
		Lap:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "lap")),
		Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	}
}

// dashboardHelp adapts keyMap to help.KeyMap for the dashboard footer.
type dashboardHelp struct{ k keyMap }

func (h dashboardHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Open, h.k.Add, h.k.Grab, h.k.Theme, h.k.Layout, h.k.Help, h.k.Quit}
}

func (h dashboardHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{h.k.Left, h.k.Right, h.k.Up, h.k.Down, h.k.Open},
		{h.k.Add, h.k.Remove, h.k.Title, h.k.Color, h.k.Grab},
		{h.k.Theme, h.k.Layout, h.k.Reload, h.k.Help, h.k.Quit},
	}
}

// detailHelp lists the bindings that apply to one widget kind's detail view.
type detailHelp struct{ bindings []key.Binding }

func (h detailHelp) ShortHelp() []key.Binding { return h.bindings }

func (h detailHelp) FullHelp() [][]key.Binding { return [][]key.Binding{h.bindings} }

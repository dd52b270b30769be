package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next     key.Binding
	Prev     key.Binding
	First    key.Binding
	Last     key.Binding
	NextWord key.Binding
	PrevWord key.Binding
	Simplify key.Binding
	Mic      key.Binding
	Speak    key.Binding
	TOC      key.Binding
	Up       key.Binding
	Down     key.Binding
	Back     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("←/→", "sentence")),
		Prev:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "previous")),
		First:    key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home", "first")),
		Last:     key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end", "last")),
		NextWord: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "word")),
		PrevWord: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous word")),
		Simplify: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "simplify")),
		Mic:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mic")),
		Speak:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "speak")),
		TOC:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "contents")),
		Up:       key.NewBinding(key.WithKeys("up", "k")),
		Down:     key.NewBinding(key.WithKeys("down", "j")),
		Back:     key.NewBinding(key.WithKeys("esc")),
		Quit:     key.NewBinding(key.WithKeys("q", "Q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// shortHelp lists the bindings shown in the footer.
func (k keyMap) shortHelp() []key.Binding {
	return []key.Binding{k.Next, k.NextWord, k.Simplify, k.Mic, k.Speak, k.TOC, k.Quit}
}

package viewer

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings of the open lightbox.
type KeyMap struct {
	Close    key.Binding
	Previous key.Binding
	Next     key.Binding
	ZoomIn   key.Binding
	ZoomOut  key.Binding
	Rotate   key.Binding
	Reset    key.Binding
}

// DefaultKeyMap mirrors the web gallery: Esc closes, arrows navigate,
// +/= and - zoom, r rotates.
var DefaultKeyMap = KeyMap{
	Close: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "fechar"),
	),
	Previous: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←", "anterior"),
	),
	Next: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→", "próxima"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "ampliar"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "reduzir"),
	),
	Rotate: key.NewBinding(
		key.WithKeys("r", "R"),
		key.WithHelp("r", "girar"),
	),
	Reset: key.NewBinding(
		key.WithKeys("0"),
		key.WithHelp("0", "restaurar"),
	),
}

// ShortHelp returns the bindings shown in the lightbox status line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Previous, k.Next, k.ZoomIn, k.ZoomOut, k.Rotate, k.Reset, k.Close}
}

// FullHelp groups the bindings into navigation and transform columns.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Previous, k.Next, k.Close},
		{k.ZoomIn, k.ZoomOut, k.Rotate, k.Reset},
	}
}

// Dispatch applies the event bound to msg and reports whether any binding
// matched. Keys are ignored while the viewer is closed.
func (v *Viewer) Dispatch(keys KeyMap, msg fmt.Stringer) bool {
	if !v.open {
		return false
	}
	switch {
	case key.Matches(msg, keys.Close):
		v.Close()
	case key.Matches(msg, keys.Previous):
		v.Previous()
	case key.Matches(msg, keys.Next):
		v.Next()
	case key.Matches(msg, keys.ZoomIn):
		v.ZoomIn()
	case key.Matches(msg, keys.ZoomOut):
		v.ZoomOut()
	case key.Matches(msg, keys.Rotate):
		v.Rotate()
	case key.Matches(msg, keys.Reset):
		v.Reset()
	default:
		return false
	}
	return true
}

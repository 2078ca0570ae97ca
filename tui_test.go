//go:build !gui

package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/rlsouza/teses/internal/article"
	"github.com/rlsouza/teses/internal/content"
	"github.com/rlsouza/teses/internal/render"
)

func testArticle(t *testing.T) *article.Article {
	t.Helper()
	doc, err := content.Parse([]byte(`{"type":"doc","content":[
		{"type":"heading","attrs":{"level":1},"content":[{"type":"text","text":"Habeas corpus"}]},
		{"type":"image","attrs":{"src":"/uploads/a.png"}},
		{"type":"paragraph","content":[{"type":"text","text":"Fundamentos da impetração."}]},
		{"type":"image","attrs":{"src":"/uploads/b.jpg"}},
		{"type":"image","attrs":{"src":"/uploads/c.webp"}}
	]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return &article.Article{Title: "Habeas corpus", Category: "Direito Penal", Body: doc}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m model, msgs ...tea.Msg) (model, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(model)
	}
	return m, cmd
}

func TestNewModelClampsStart(t *testing.T) {
	a := testArticle(t)
	tests := []struct {
		start int
		want  int
	}{
		{0, 0},
		{2, 2},
		{3, 0},
		{-1, 0},
	}
	for _, tt := range tests {
		m := newModel(a, tt.start, render.TerminalOptions{})
		if m.lastIndex != tt.want {
			t.Errorf("newModel(start=%d) lastIndex = %d, want %d", tt.start, m.lastIndex, tt.want)
		}
	}
}

func TestModelGallery(t *testing.T) {
	m := newModel(testArticle(t), 1, render.TerminalOptions{Width: 60})
	m, _ = send(m, tea.WindowSizeMsg{Width: 100, Height: 30})

	if m.IsOpen() {
		t.Fatal("gallery should start closed")
	}
	if !strings.Contains(ansi.Strip(m.View()), "Fundamentos da impetração.") {
		t.Errorf("reader view should show the article:\n%s", m.View())
	}

	m, _ = send(m, keyMsg("i"))
	if !m.IsOpen() || m.Index() != 1 {
		t.Fatalf("Expected gallery open at 1, got open=%v index=%d", m.IsOpen(), m.Index())
	}
	view := ansi.Strip(m.View())
	for _, want := range []string{"2 de 3", "/uploads/b.jpg", "Zoom: 100%", "image-2.jpg"} {
		if !strings.Contains(view, want) {
			t.Errorf("lightbox missing %q:\n%s", want, view)
		}
	}

	m, _ = send(m, keyMsg("right"), keyMsg("right"))
	if m.Index() != 2 || m.lastIndex != 2 {
		t.Errorf("Expected index 2 at the end, got %d (last %d)", m.Index(), m.lastIndex)
	}

	m, _ = send(m, keyMsg("+"), keyMsg("r"))
	if m.ZoomPercent() != 120 || m.Rotation() != 90 {
		t.Errorf("Expected 120%% and 90°, got %d%% and %d°", m.ZoomPercent(), m.Rotation())
	}
	if !strings.Contains(ansi.Strip(m.View()), "Rotação: 90°") {
		t.Errorf("lightbox should show rotation:\n%s", ansi.Strip(m.View()))
	}

	m, _ = send(m, keyMsg("left"))
	if m.Index() != 1 || m.Zoom() != 1 || m.Rotation() != 0 {
		t.Errorf("navigation should reset transforms, got index=%d zoom=%v rot=%d", m.Index(), m.Zoom(), m.Rotation())
	}

	// q belongs to the lightbox while it is open and does nothing there.
	m, cmd := send(m, keyMsg("q"))
	if cmd != nil || m.quitting {
		t.Error("q should not quit from the lightbox")
	}

	m, _ = send(m, keyMsg("esc"))
	if m.IsOpen() {
		t.Error("esc should close the gallery")
	}
	if m.lastIndex != 1 {
		t.Errorf("Expected last index 1 after close, got %d", m.lastIndex)
	}

	m, _ = send(m, keyMsg("enter"))
	if !m.IsOpen() || m.Index() != 1 {
		t.Errorf("reopening should resume at 1, got %d", m.Index())
	}
}

func TestModelQuit(t *testing.T) {
	m := newModel(testArticle(t), 0, render.TerminalOptions{})
	m, _ = send(m, tea.WindowSizeMsg{Width: 80, Height: 24})

	m, cmd := send(m, keyMsg("q"))
	if !m.quitting || cmd == nil {
		t.Fatal("q should quit from the reader")
	}
	if m.View() != "" {
		t.Errorf("Expected empty view after quit, got %q", m.View())
	}

	m = newModel(testArticle(t), 0, render.TerminalOptions{})
	m, _ = send(m, tea.WindowSizeMsg{Width: 80, Height: 24}, keyMsg("i"))
	m, cmd = send(m, keyMsg("ctrl+c"))
	if !m.quitting || cmd == nil {
		t.Error("ctrl+c should quit from the lightbox")
	}
}

func TestModelWithoutImages(t *testing.T) {
	a := &article.Article{Title: "Sem imagens", Body: content.Empty()}
	m := newModel(a, 0, render.TerminalOptions{})
	m, _ = send(m, tea.WindowSizeMsg{Width: 80, Height: 24}, keyMsg("i"))
	if m.IsOpen() {
		t.Error("gallery should not open without images")
	}
	if strings.Contains(ansi.Strip(m.View()), "0 imagens") {
		t.Error("image count should be hidden when there are none")
	}
}

func TestModelRenderWidth(t *testing.T) {
	m := newModel(testArticle(t), 0, render.TerminalOptions{Width: 80})
	if m.View() != "Carregando..." {
		t.Errorf("Expected loading view before the first resize, got %q", m.View())
	}

	m, _ = send(m, tea.WindowSizeMsg{Width: 40, Height: 20})
	if got := m.renderOptions().Width; got != 38 {
		t.Errorf("Expected wrap width narrowed to 38, got %d", got)
	}
	m, _ = send(m, tea.WindowSizeMsg{Width: 200, Height: 20})
	if got := m.renderOptions().Width; got != 80 {
		t.Errorf("Expected configured width 80, got %d", got)
	}
	if m.viewport.Height < 1 || m.viewport.Height >= 20 {
		t.Errorf("viewport height %d should leave room for header and footer", m.viewport.Height)
	}
}

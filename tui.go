//go:build !gui

package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rlsouza/teses/internal/article"
	"github.com/rlsouza/teses/internal/render"
	"github.com/rlsouza/teses/internal/viewer"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F5F5F5")).
			Padding(0, 1)

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1E1E1E")).
			Background(lipgloss.Color("#C9A227")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#C9A227")).
			Align(lipgloss.Center, lipgloss.Center)

	captionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")).
			Italic(true)
)

// readerKeyMap holds the bindings of the article view. Scrolling is left to
// the viewport's own key map.
type readerKeyMap struct {
	Gallery key.Binding
	Help    key.Binding
	Quit    key.Binding
}

var readerKeys = readerKeyMap{
	Gallery: key.NewBinding(
		key.WithKeys("i", "enter"),
		key.WithHelp("i", "imagens"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "ajuda"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "Q", "ctrl+c"),
		key.WithHelp("q", "sair"),
	),
}

func (k readerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Gallery, k.Help, k.Quit}
}

func (k readerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Gallery}, {k.Help, k.Quit}}
}

// model is the terminal article reader. The embedded viewer is the
// lightbox; while it is open every key goes to it.
type model struct {
	*viewer.Viewer
	keys     viewer.KeyMap
	help     help.Model
	viewport viewport.Model

	article   *article.Article
	blocks    []render.Block
	images    []string
	opts      render.TerminalOptions
	lastIndex int

	ready    bool
	quitting bool
	width    int
	height   int
}

func newModel(a *article.Article, start int, opts render.TerminalOptions) model {
	images := a.Images()
	if start < 0 || start >= len(images) {
		start = 0
	}
	return model{
		Viewer:    viewer.New(),
		keys:      viewer.DefaultKeyMap,
		help:      help.New(),
		article:   a,
		blocks:    render.Render(a.Body),
		images:    images,
		opts:      opts,
		lastIndex: start,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.IsOpen() {
			if msg.String() == "ctrl+c" {
				m.quitting = true
				return m, tea.Quit
			}
			m.Dispatch(m.keys, msg)
			if _, ok := m.Current(); ok {
				m.lastIndex = m.Index()
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, readerKeys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, readerKeys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize()
			return m, nil
		case key.Matches(msg, readerKeys.Gallery):
			if len(m.images) > 0 {
				m.Open(m.images, m.lastIndex)
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if !m.ready {
			m.viewport = viewport.New(msg.Width, 1)
			m.ready = true
		}
		m.resize()
		m.viewport.SetContent(render.Terminal(m.blocks, m.renderOptions()))
		return m, nil
	}

	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// renderOptions narrows the configured wrap width to the window.
func (m model) renderOptions() render.TerminalOptions {
	opts := m.opts
	if avail := m.width - 2; avail > 0 && (opts.Width <= 0 || opts.Width > avail) {
		opts.Width = avail
	}
	return opts
}

func (m *model) resize() {
	if !m.ready {
		return
	}
	reserved := lipgloss.Height(m.header()) + lipgloss.Height(m.footer())
	m.viewport.Width = m.width
	m.viewport.Height = max(1, m.height-reserved)
}

func (m model) header() string {
	title := titleStyle.Render(m.article.Title)
	if m.article.Category != "" {
		title = lipgloss.JoinHorizontal(lipgloss.Center, badgeStyle.Render(m.article.Category), title)
	}
	return title
}

func (m model) footer() string {
	status := fmt.Sprintf("%3.f%%", m.viewport.ScrollPercent()*100)
	switch n := len(m.images); n {
	case 0:
	case 1:
		status += " | 1 imagem"
	default:
		status += fmt.Sprintf(" | %d imagens", n)
	}
	status += " | " + article.ViewsLabel(m.article.Views)
	return statusStyle.Render(status) + "\n" + m.help.View(readerKeys)
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Carregando..."
	}
	if m.IsOpen() {
		return m.lightbox()
	}
	return m.header() + "\n" + m.viewport.View() + "\n" + m.footer()
}

// lightbox draws the open image as a frame whose size follows the zoom
// level and whose orientation follows the rotation.
func (m model) lightbox() string {
	src, _ := m.Current()

	w := int(40 * m.Zoom())
	h := int(12 * m.Zoom())
	if m.Rotation()%180 != 0 {
		w, h = h*2, w/2
	}
	w = min(max(w, 16), max(m.width-4, 16))
	h = min(max(h, 3), max(m.height-8, 3))

	arrow := [...]string{"↑", "→", "↓", "←"}[m.Rotation()/viewer.RotateStep%4]
	frame := frameStyle.Width(w).Height(h).Render(arrow + "\n" + src)

	nav := ""
	if m.HasPrevious() {
		nav += "‹ "
	}
	nav += m.Position()
	if m.HasNext() {
		nav += " ›"
	}
	info := fmt.Sprintf("%s | Zoom: %d%% | Rotação: %d° | %s", nav, m.ZoomPercent(), m.Rotation(), m.DownloadName())

	alt := ""
	if m.article.Title != "" {
		alt = captionStyle.Render(m.article.Title)
	}
	body := lipgloss.JoinVertical(lipgloss.Center, frame, alt, statusStyle.Render(info))

	helpView := m.help.View(m.keys)
	avail := max(1, m.height-lipgloss.Height(helpView))
	return lipgloss.Place(m.width, avail, lipgloss.Center, lipgloss.Center, body) + "\n" + helpView
}

// browse runs the terminal reader and returns the last gallery position.
func browse(e *env, a *article.Article, start int) (int, error) {
	m := newModel(a, start, e.terminalOptions())
	e.logger.Debug("starting terminal reader", "images", len(m.images), "start", m.lastIndex)

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return m.lastIndex, fmt.Errorf("failed to run reader: %w", err)
	}
	if fm, ok := final.(model); ok {
		return fm.lastIndex, nil
	}
	return m.lastIndex, nil
}


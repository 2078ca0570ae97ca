package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
)

// TerminalOptions controls terminal output.
type TerminalOptions struct {
	Width     int    // wrap width; values under 20 mean 80
	CodeStyle string // chroma style for code blocks; empty means "monokai"
}

// Terminal renders blocks as ANSI styled text, blocks separated by a blank
// line. Images are shown as numbered placeholders matching their media index
// position so the reader can open them in the viewer.
func Terminal(blocks []Block, opts TerminalOptions) string {
	if opts.Width < 20 {
		opts.Width = 80
	}
	if opts.CodeStyle == "" {
		opts.CodeStyle = "monokai"
	}

	// Output is always for a terminal, so the color profile is forced
	// instead of detected from the (possibly absent) TTY.
	lip := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(termenv.ANSI256))
	lip.SetColorProfile(termenv.ANSI256)
	t := &terminal{lip: lip, opts: opts}

	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, t.block(b))
	}
	return strings.Join(out, "\n\n")
}

type terminal struct {
	lip  *lipgloss.Renderer
	opts TerminalOptions
}

var (
	headingColor = lipgloss.Color("#FFAA00")
	faintColor   = lipgloss.Color("#888888")
	linkColor    = lipgloss.Color("#5FAFFF")
	codeColor    = lipgloss.Color("#FF8700")
	markColor    = lipgloss.Color("#FFFF5F")
)

func (t *terminal) block(b Block) string {
	switch b := b.(type) {
	case Paragraph:
		return t.aligned(t.wrap(t.inlines(b.Inlines), t.opts.Width), b.Align)
	case Heading:
		level := b.level()
		style := t.lip.NewStyle().Bold(true).Foreground(headingColor)
		if level == 1 {
			style = style.Underline(true)
		}
		prefix := strings.Repeat("#", level) + " "
		text := ansi.Strip(t.inlines(b.Inlines))
		return t.aligned(style.Render(t.wrap(prefix+text, t.opts.Width)), b.Align)
	case List:
		lines := make([]string, 0, len(b.Items))
		for i, item := range b.Items {
			bullet := "• "
			if b.Ordered {
				bullet = fmt.Sprintf("%d. ", i+1)
			}
			body := t.wrap(t.inlines(item), t.opts.Width-len(bullet))
			lines = append(lines, bullet+indent(body, strings.Repeat(" ", len(bullet))))
		}
		return strings.Join(lines, "\n")
	case Blockquote:
		body := t.lip.NewStyle().Italic(true).Render(t.wrap(t.inlines(b.Inlines), t.opts.Width-2))
		bar := t.lip.NewStyle().Foreground(faintColor).Render("│ ")
		return bar + indent(body, bar)
	case CodeBlock:
		return indent(t.highlight(b.Code, b.Language), "  ")
	case HorizontalRule:
		return t.lip.NewStyle().Foreground(faintColor).Render(strings.Repeat("─", t.opts.Width))
	case Image:
		label := fmt.Sprintf("[imagem %d] %s", b.Index+1, b.Alt)
		return t.lip.NewStyle().Foreground(linkColor).Render(strings.TrimSpace(label)) +
			" " + t.lip.NewStyle().Foreground(faintColor).Render(b.Src)
	case Video:
		return t.lip.NewStyle().Foreground(linkColor).Render("[vídeo]") + " " + b.Src
	case Audio:
		return t.lip.NewStyle().Foreground(linkColor).Render("[áudio]") + " " + b.Src
	}
	return ""
}

// inlines styles each run. Marks combine into one style; a link also appends
// its target after the text.
func (t *terminal) inlines(runs []Inline) string {
	var sb strings.Builder
	for _, run := range runs {
		if run.Break {
			sb.WriteString("\n")
			continue
		}
		style := t.lip.NewStyle()
		suffix := ""
		for _, m := range run.Marks {
			switch m.Kind {
			case Bold:
				style = style.Bold(true)
			case Italic:
				style = style.Italic(true)
			case Underline:
				style = style.Underline(true)
			case Strike:
				style = style.Strikethrough(true)
			case Code:
				style = style.Foreground(codeColor)
			case Highlight:
				style = style.Background(markColor).Foreground(lipgloss.Color("#000000"))
			case Link:
				style = style.Underline(true).Foreground(linkColor)
				suffix = t.lip.NewStyle().Foreground(faintColor).Render(" (" + SafeHref(m.Href) + ")")
			}
		}
		sb.WriteString(style.Render(run.Text))
		sb.WriteString(suffix)
	}
	return sb.String()
}

func (t *terminal) wrap(s string, width int) string {
	if width < 10 {
		width = 10
	}
	return ansi.Wrap(s, width, " ,.;-+|")
}

func (t *terminal) aligned(s string, a Align) string {
	switch a {
	case AlignCenter:
		return t.lip.NewStyle().Width(t.opts.Width).Align(lipgloss.Center).Render(s)
	case AlignRight:
		return t.lip.NewStyle().Width(t.opts.Width).Align(lipgloss.Right).Render(s)
	}
	return s
}

// highlight uses chroma for a known language and falls back to faint plain
// text otherwise.
func (t *terminal) highlight(code, language string) string {
	code = strings.TrimRight(code, "\n")
	if language != "" {
		var sb strings.Builder
		if err := quick.Highlight(&sb, code, language, "terminal256", t.opts.CodeStyle); err == nil {
			return strings.TrimRight(sb.String(), "\n")
		}
	}
	return t.lip.NewStyle().Foreground(faintColor).Render(code)
}

func indent(s, prefix string) string {
	return strings.ReplaceAll(s, "\n", "\n"+prefix)
}

package render

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/net/html"
)

// Options controls HTML output.
type Options struct {
	// HighlightStyle is a chroma style name used for code blocks with a
	// known language. Empty leaves code unhighlighted.
	HighlightStyle string
}

var headingClasses = [...]string{
	1: "text-4xl font-bold mb-6 mt-8 text-gray-900",
	2: "text-3xl font-bold mb-4 mt-6 text-gray-900",
	3: "text-2xl font-bold mb-3 mt-4 text-gray-900",
	4: "text-xl font-bold mb-3 mt-4 text-gray-900",
	5: "text-lg font-bold mb-2 mt-3 text-gray-900",
	6: "text-base font-bold mb-2 mt-3 text-gray-900",
}

// cssLengthRegex accepts the video widths the editor produces ("100%", "640px").
var cssLengthRegex = regexp.MustCompile(`^\d+(\.\d+)?(%|px|em|rem|vw)?$`)

// HTML renders blocks to a markup string.
func HTML(blocks []Block, opts Options) string {
	var sb strings.Builder
	_ = WriteHTML(&sb, blocks, opts)
	return sb.String()
}

// WriteHTML writes the markup for blocks to w.
func WriteHTML(w io.Writer, blocks []Block, opts Options) error {
	var sb strings.Builder
	for _, b := range blocks {
		writeBlock(&sb, b, opts)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeBlock(sb *strings.Builder, b Block, opts Options) {
	switch b := b.(type) {
	case Paragraph:
		sb.WriteString(`<p class="mb-4 leading-relaxed text-gray-800"` + alignAttr(b.Align) + `>`)
		writeInlines(sb, b.Inlines)
		sb.WriteString(`</p>`)
	case Heading:
		level := b.level()
		fmt.Fprintf(sb, `<h%d id="%s" class="%s"%s>`, level, html.EscapeString(b.Anchor), headingClasses[level], alignAttr(b.Align))
		writeInlines(sb, b.Inlines)
		fmt.Fprintf(sb, `</h%d>`, level)
	case List:
		tag, class := "ul", "list-disc"
		if b.Ordered {
			tag, class = "ol", "list-decimal"
		}
		sb.WriteString(`<` + tag + ` class="` + class + ` list-inside mb-4 space-y-2 text-gray-800"` + alignAttr(b.Align) + `>`)
		for _, item := range b.Items {
			sb.WriteString(`<li class="leading-relaxed">`)
			writeInlines(sb, item)
			sb.WriteString(`</li>`)
		}
		sb.WriteString(`</` + tag + `>`)
	case Blockquote:
		sb.WriteString(`<blockquote class="border-l-4 border-primary pl-4 italic my-4 text-gray-700 bg-gray-50 py-2 rounded-r"` + alignAttr(b.Align) + `>`)
		writeInlines(sb, b.Inlines)
		sb.WriteString(`</blockquote>`)
	case CodeBlock:
		writeCodeBlock(sb, b, opts)
	case HorizontalRule:
		sb.WriteString(`<hr class="my-8 border-t-2 border-gray-300" />`)
	case Image:
		fmt.Fprintf(sb, `<div class="my-8 text-center"><img src="%s" alt="%s" class="rounded-lg max-w-full h-auto mx-auto shadow-lg cursor-zoom-in" data-image-index="%d" /></div>`,
			html.EscapeString(b.Src), html.EscapeString(b.Alt), b.Index)
	case Video:
		fmt.Fprintf(sb, `<div class="my-8 text-center"><video src="%s" controls class="rounded-lg max-w-full h-auto mx-auto shadow-lg" style="width: %s"></video></div>`,
			html.EscapeString(b.Src), videoWidth(b.Width))
	case Audio:
		fmt.Fprintf(sb, `<div class="my-8"><audio src="%s" controls class="w-full"></audio></div>`, html.EscapeString(b.Src))
	}
}

func alignAttr(a Align) string {
	switch a {
	case AlignCenter, AlignRight, AlignJustify:
		return ` style="text-align: ` + string(a) + `"`
	}
	return ""
}

func videoWidth(w string) string {
	if cssLengthRegex.MatchString(w) {
		return w
	}
	return DefaultVideoWidth
}

// writeInlines wraps each run's text in its marks, first mark innermost.
func writeInlines(sb *strings.Builder, runs []Inline) {
	for _, run := range runs {
		if run.Break {
			sb.WriteString(`<br />`)
			continue
		}
		out := html.EscapeString(run.Text)
		for _, m := range run.Marks {
			out = wrapMark(m, out)
		}
		sb.WriteString(out)
	}
}

func wrapMark(m Mark, inner string) string {
	switch m.Kind {
	case Bold:
		return `<strong class="font-semibold">` + inner + `</strong>`
	case Italic:
		return `<em class="italic">` + inner + `</em>`
	case Underline:
		return `<u>` + inner + `</u>`
	case Strike:
		return `<s>` + inner + `</s>`
	case Code:
		return `<code class="rounded bg-gray-100 px-1 font-mono text-sm">` + inner + `</code>`
	case Highlight:
		return `<mark class="bg-yellow-200">` + inner + `</mark>`
	case Subscript:
		return `<sub>` + inner + `</sub>`
	case Superscript:
		return `<sup>` + inner + `</sup>`
	case Link:
		return `<a href="` + html.EscapeString(SafeHref(m.Href)) + `" class="text-primary underline hover:text-primary/80 transition-colors" target="_blank" rel="noopener noreferrer">` + inner + `</a>`
	}
	return inner
}

// SafeHref returns href when it is relative or uses a web, mail or phone
// scheme, and "#" otherwise.
func SafeHref(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return "#"
	}
	u, err := url.Parse(href)
	if err != nil {
		return "#"
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto", "tel":
		return href
	}
	return "#"
}

func writeCodeBlock(sb *strings.Builder, b CodeBlock, opts Options) {
	if opts.HighlightStyle != "" && b.Language != "" {
		if highlighted, ok := highlightHTML(b.Code, b.Language, opts.HighlightStyle); ok {
			sb.WriteString(`<div class="my-4 overflow-x-auto rounded-lg text-sm">`)
			sb.WriteString(highlighted)
			sb.WriteString(`</div>`)
			return
		}
	}
	sb.WriteString(`<pre class="my-4 overflow-x-auto rounded-lg bg-gray-900 p-4 text-sm text-gray-100"><code`)
	if b.Language != "" {
		sb.WriteString(` class="language-` + html.EscapeString(b.Language) + `"`)
	}
	sb.WriteString(`>`)
	sb.WriteString(html.EscapeString(b.Code))
	sb.WriteString(`</code></pre>`)
}

func highlightHTML(code, language, style string) (string, bool) {
	lexer := lexers.Get(language)
	if lexer == nil {
		return "", false
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return "", false
	}
	formatter := chromahtml.New(chromahtml.WithClasses(false), chromahtml.TabWidth(4))
	var sb strings.Builder
	if err := formatter.Format(&sb, styles.Get(style), iterator); err != nil {
		return "", false
	}
	return sb.String(), true
}

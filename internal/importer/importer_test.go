package importer

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rlsouza/teses/internal/content"
)

func types(nodes []content.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Type)
	}
	return out
}

func markTypes(n content.Node) []string {
	var out []string
	for _, m := range n.Marks {
		out = append(out, m.Type)
	}
	return out
}

func TestImportFile(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("plain text", func(t *testing.T) {
		path := filepath.Join(tmpDir, "test.txt")
		os.WriteFile(path, []byte("Primeiro parágrafo.\n\nSegundo\nlinha dois"), 0644)

		doc, err := ImportFile(path)
		if err != nil {
			t.Fatalf("ImportFile: %v", err)
		}
		if got := types(doc.Content); !reflect.DeepEqual(got, []string{"paragraph", "paragraph"}) {
			t.Fatalf("got %v", got)
		}
		if got := types(doc.Content[1].Content); !reflect.DeepEqual(got, []string{"text", "hardBreak", "text"}) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("unknown extension falls back to text", func(t *testing.T) {
		path := filepath.Join(tmpDir, "notes.log")
		os.WriteFile(path, []byte("uma linha"), 0644)

		doc, err := ImportFile(path)
		if err != nil {
			t.Fatalf("ImportFile: %v", err)
		}
		if content.Text(doc) != "uma linha" {
			t.Errorf("got %q", content.Text(doc))
		}
	})

	t.Run("jsonc", func(t *testing.T) {
		path := filepath.Join(tmpDir, "doc.jsonc")
		os.WriteFile(path, []byte(`{
			// fixture
			"type": "doc",
			"content": [
				{"type": "image", "attrs": {"src": "/a.png"},},
			],
		}`), 0644)

		doc, err := ImportFile(path)
		if err != nil {
			t.Fatalf("ImportFile: %v", err)
		}
		if got := content.Images(doc); !reflect.DeepEqual(got, []string{"/a.png"}) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(tmpDir, "bad.json")
		os.WriteFile(path, []byte(`{"type":"doc"}`), 0644)

		if _, err := ImportFile(path); !errors.Is(err, content.ErrNoContent) {
			t.Errorf("expected ErrNoContent, got %v", err)
		}
	})

	t.Run("nonexistent file", func(t *testing.T) {
		if _, err := ImportFile(filepath.Join(tmpDir, "nonexistent.md")); err == nil {
			t.Error("expected error")
		}
	})
}

func TestLookup(t *testing.T) {
	f, err := Lookup("markdown")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if f.Name() != "Markdown" {
		t.Errorf("got %q", f.Name())
	}
	if _, err := Lookup("docx"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestSupportedFormats(t *testing.T) {
	formats := SupportedFormats()
	for _, want := range []string{"EPUB (.epub)", "Markdown (.md, .markdown)", "JSON (.json, .jsonc)"} {
		found := false
		for _, f := range formats {
			if f == want {
				found = true
			}
		}
		if !found {
			t.Errorf("%s not registered: %v", want, formats)
		}
	}
}

func TestParseMarkdown(t *testing.T) {
	src := "# Habeas corpus\n\n" +
		"Texto com **negrito**, *itálico*, ~~riscado~~ e `código`.\n" +
		"Linha seguinte com [link](https://stf.jus.br).\n\n" +
		"- um\n- dois\n  - aninhado\n\n" +
		"1. primeiro\n\n" +
		"> citação\n\n" +
		"```go\nfmt.Println(1)\n```\n\n" +
		"---\n\n" +
		"![Fachada](/img/fachada.jpg)\n"

	doc := ParseMarkdown([]byte(src))
	want := []string{"heading", "paragraph", "bulletList", "orderedList", "blockquote", "codeBlock", "horizontalRule", "image"}
	if got := types(doc.Content); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if level, _ := doc.Content[0].AttrInt("level"); level != 1 {
		t.Errorf("Expected level 1, got %d", level)
	}

	p := doc.Content[1]
	if got := p.PlainText(); got != "Texto com negrito, itálico, riscado e código. Linha seguinte com link." {
		t.Errorf("paragraph text %q", got)
	}
	marks := map[string][]string{}
	for _, n := range p.Content {
		if len(n.Marks) > 0 {
			marks[n.Text] = markTypes(n)
		}
	}
	wantMarks := map[string][]string{
		"negrito": {"bold"},
		"itálico": {"italic"},
		"riscado": {"strike"},
		"código":  {"code"},
		"link":    {"link"},
	}
	if !reflect.DeepEqual(marks, wantMarks) {
		t.Errorf("marks %v, want %v", marks, wantMarks)
	}

	list := doc.Content[2]
	if len(list.Content) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(list.Content))
	}
	if got := types(list.Content[1].Content); !reflect.DeepEqual(got, []string{"paragraph", "bulletList"}) {
		t.Errorf("nested item %v", got)
	}

	code := doc.Content[5]
	if code.AttrString("language") != "go" || code.PlainText() != "fmt.Println(1)" {
		t.Errorf("code block %+v", code)
	}

	img := doc.Content[7]
	if img.AttrString("src") != "/img/fachada.jpg" || img.AttrString("alt") != "Fachada" {
		t.Errorf("image %+v", img.Attrs)
	}
}

func TestParseMarkdownNestedMarks(t *testing.T) {
	doc := ParseMarkdown([]byte("**[x](https://a.b)**"))
	n := doc.Content[0].Content[0]
	if got := markTypes(n); !reflect.DeepEqual(got, []string{"link", "bold"}) {
		t.Errorf("Expected link innermost, got %v", got)
	}
}

func TestParseMarkdownHardBreak(t *testing.T) {
	doc := ParseMarkdown([]byte("um  \ndois"))
	if got := types(doc.Content[0].Content); !reflect.DeepEqual(got, []string{"text", "hardBreak", "text"}) {
		t.Errorf("got %v", got)
	}
}

func TestParseHTML(t *testing.T) {
	markup := `
	<html>
		<head><title>Ignorado</title><style>p{}</style></head>
		<body>
			<h2 style="text-align: center">Prisão <em>preventiva</em></h2>
			<p>Texto <strong>forte <a href="/x">link</a></strong><br>quebra</p>
			<div>Solto <span>no</span> div</div>
			<ul><li>um</li><li><p>dois</p><ol><li>três</li></ol></li></ul>
			<blockquote><p>a</p><p>b</p></blockquote>
			<pre><code class="language-python">print("x")</code></pre>
			<hr>
			<p><img src="/a.png" alt="A"> legenda</p>
			<video src="/v.mp4" style="width: 50%"></video>
			<audio><source src="/a.mp3"></audio>
			<script>alert(1)</script>
		</body>
	</html>`

	doc, err := ParseHTML(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	want := []string{"heading", "paragraph", "paragraph", "bulletList", "blockquote", "codeBlock",
		"horizontalRule", "paragraph", "image", "video", "audio"}
	if got := types(doc.Content); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	h := doc.Content[0]
	if level, _ := h.AttrInt("level"); level != 2 || h.AttrString("textAlign") != "center" {
		t.Errorf("heading attrs %v", h.Attrs)
	}
	if h.PlainText() != "Prisão preventiva" {
		t.Errorf("heading text %q", h.PlainText())
	}

	p := doc.Content[1]
	if got := types(p.Content); !reflect.DeepEqual(got, []string{"text", "text", "text", "hardBreak", "text"}) {
		t.Errorf("paragraph nodes %v", got)
	}
	if got := markTypes(p.Content[2]); !reflect.DeepEqual(got, []string{"link", "bold"}) {
		t.Errorf("link marks %v", got)
	}

	if got := doc.Content[2].PlainText(); got != "Solto no div" {
		t.Errorf("loose text %q", got)
	}

	items := doc.Content[3].Content
	if len(items) != 2 || !reflect.DeepEqual(types(items[1].Content), []string{"paragraph", "orderedList"}) {
		t.Errorf("list items %+v", items)
	}

	if got := types(doc.Content[4].Content); !reflect.DeepEqual(got, []string{"paragraph", "paragraph"}) {
		t.Errorf("blockquote %v", got)
	}

	code := doc.Content[5]
	if code.AttrString("language") != "python" || code.PlainText() != `print("x")` {
		t.Errorf("code %+v", code)
	}

	if got := doc.Content[7].PlainText(); got != "legenda" {
		t.Errorf("caption %q", got)
	}
	if got := content.Images(doc); !reflect.DeepEqual(got, []string{"/a.png"}) {
		t.Errorf("images %v", got)
	}
	if w := doc.Content[9].AttrString("width"); w != "50%" {
		t.Errorf("video width %q", w)
	}
	if src := doc.Content[10].AttrString("src"); src != "/a.mp3" {
		t.Errorf("audio src %q", src)
	}
}

func writeZip(t *testing.T, path string, files [][2]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)
	for _, file := range files {
		w, err := zw.Create(file[0])
		if err != nil {
			t.Fatalf("zip Create: %v", err)
		}
		w.Write([]byte(file[1]))
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip Close: %v", err)
	}
}

func TestEPUBImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livro.epub")
	writeZip(t, path, [][2]string{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles><rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/></rootfiles>
</container>`},
		{"OEBPS/content.opf", `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata><title>Livro</title></metadata>
  <manifest>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="c1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="c2" href="ch2.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine toc="ncx"><itemref idref="c1"/><itemref idref="c2"/></spine>
</package>`},
		{"OEBPS/toc.ncx", `<?xml version="1.0"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <navMap>
    <navPoint id="n1"><navLabel><text>Capítulo 1</text></navLabel><content src="ch1.xhtml"/></navPoint>
    <navPoint id="n2"><navLabel><text>Capítulo 2</text></navLabel><content src="ch2.xhtml#top"/></navPoint>
  </navMap>
</ncx>`},
		{"OEBPS/ch1.xhtml", `<html><body><p>Primeiro texto.</p></body></html>`},
		{"OEBPS/ch2.xhtml", `<html><body><h1>Dois</h1><p>Segundo texto.</p></body></html>`},
	})

	doc, err := ImportFile(path)
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	want := []string{"heading", "paragraph", "horizontalRule", "heading", "paragraph"}
	if got := types(doc.Content); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got := doc.Content[0].PlainText(); got != "Capítulo 1" {
		t.Errorf("Expected NCX title, got %q", got)
	}
	if got := doc.Content[3].PlainText(); got != "Dois" {
		t.Errorf("Expected chapter heading kept, got %q", got)
	}
}

func TestEPUBImportInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.epub")
	os.WriteFile(path, []byte("not a zip"), 0644)
	if _, err := ImportFile(path); err == nil {
		t.Error("expected error")
	}
}

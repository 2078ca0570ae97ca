package article

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/rlsouza/teses/internal/render"
)

const metadata = `
title: Prisão preventiva e excesso de prazo
description: Tese sobre excesso de prazo.
category: Direito Penal
author: Ricardo Lopes de Souza
cover_image: /uploads/capa.jpg
published: true
published_at: 2025-01-02T10:00:00Z
views: 41
content: |
  {"type":"doc","content":[
    {"type":"heading","attrs":{"level":2},"content":[{"type":"text","text":"Fatos"}]},
    {"type":"image","attrs":{"src":"/uploads/a.png","alt":"A"}},
    {"type":"paragraph","content":[{"type":"text","text":"<b>texto</b>"}]},
    {"type":"image","attrs":{"src":"/uploads/b.png"}}
  ]}
`

func TestParse(t *testing.T) {
	a, err := Parse([]byte(metadata), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if a.Slug != "prisao-preventiva-e-excesso-de-prazo" {
		t.Errorf("Expected derived slug, got %q", a.Slug)
	}
	if a.Views != 41 || a.Category != "Direito Penal" || !a.Published {
		t.Errorf("unexpected metadata %+v", a)
	}
	if a.PublishedAt == nil || a.PublishedAt.Day() != 2 {
		t.Errorf("unexpected publish date %v", a.PublishedAt)
	}
	if got := a.Images(); !reflect.DeepEqual(got, []string{"/uploads/a.png", "/uploads/b.png"}) {
		t.Errorf("images %v", got)
	}
}

func TestParseInlineMapping(t *testing.T) {
	a, err := Parse([]byte(`
title: Mapa
content:
  type: doc
  content:
    - type: paragraph
      content:
        - type: text
          text: olá
`), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(a.Body.Content) != 1 || a.Body.Content[0].PlainText() != "olá" {
		t.Errorf("unexpected body %+v", a.Body)
	}
}

func TestParseBadContentIsLogged(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	a, err := Parse([]byte("title: Quebrada\ncontent: '{not json'\n"), logger)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(a.Body.Content) != 0 {
		t.Errorf("Expected empty body, got %+v", a.Body)
	}
	if !strings.Contains(logs.String(), "discarding unreadable document") {
		t.Errorf("Expected a warning, got %q", logs.String())
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]byte("description: sem título\n"), nil); err == nil {
		t.Error("expected error for missing title")
	}
	if _, err := Parse([]byte("title: x\nunknown: y\n"), nil); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestLoadContentFile(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "corpo.md"), []byte("# Título\n\n![foto](/f.jpg)\n"), 0644)
	path := filepath.Join(dir, "tese.yaml")
	os.WriteFile(path, []byte("title: Com arquivo\ncontent_file: corpo.md\n"), 0644)

	a, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := a.Images(); !reflect.DeepEqual(got, []string{"/f.jpg"}) {
		t.Errorf("images %v", got)
	}
}

func TestOpenBareBody(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "habeas.md")
	os.WriteFile(path, []byte("Texto sem título.\n\n## Seção\n"), 0644)

	a, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if a.Title != "Seção" || a.Slug != "secao" {
		t.Errorf("Expected title from heading, got %q %q", a.Title, a.Slug)
	}
	if !a.Published {
		t.Error("a bare body should be published")
	}

	plain := filepath.Join(dir, "notas.txt")
	os.WriteFile(plain, []byte("nada"), 0644)
	a, err = Open(plain, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if a.Title != "notas" {
		t.Errorf("Expected title from file name, got %q", a.Title)
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), "2 de janeiro de 2025"},
		{time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), "31 de março de 2024"},
		{time.Date(2023, 12, 25, 0, 0, 0, 0, time.UTC), "25 de dezembro de 2023"},
	}
	for _, tt := range tests {
		if got := FormatDate(tt.date); got != tt.want {
			t.Errorf("FormatDate(%v) = %q, want %q", tt.date, got, tt.want)
		}
	}
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func TestPage(t *testing.T) {
	a, err := Parse([]byte(metadata), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := Page(a, render.Options{})
	if err != nil {
		t.Fatalf("Page: %v", err)
	}

	for _, want := range []string{
		`<h1 class="text-4xl font-serif font-bold mb-4 text-foreground">Prisão preventiva e excesso de prazo</h1>`,
		`Direito Penal`,
		`Ricardo Lopes de Souza`,
		`<time datetime="2025-01-02">2 de janeiro de 2025</time>`,
		`41 visualizações`,
		`style="object-position: center"`,
		`<h2 id="fatos"`,
		`data-image-index="1"`,
		`&lt;b&gt;texto&lt;/b&gt;`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q:\n%s", want, out)
		}
	}

	root, err := html.Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("html.Parse: %v", err)
	}
	script := findByID(root, "gallery-images")
	if script == nil || script.FirstChild == nil {
		t.Fatal("gallery payload missing")
	}
	var images []string
	if err := json.Unmarshal([]byte(script.FirstChild.Data), &images); err != nil {
		t.Fatalf("gallery payload is not JSON: %v (%q)", err, script.FirstChild.Data)
	}
	if !reflect.DeepEqual(images, a.Images()) {
		t.Errorf("gallery %v, want %v", images, a.Images())
	}
}

func TestPageMinimal(t *testing.T) {
	out, err := Page(&Article{Title: "Só título", CoverImage: "/c.jpg", CoverImagePosition: "top"}, render.Options{})
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if strings.Contains(out, "<time") {
		t.Error("an undated article should have no <time>")
	}
	if !strings.Contains(out, `style="object-position: top"`) {
		t.Errorf("custom cover position missing:\n%s", out)
	}
	if !strings.Contains(out, "0 visualizações") {
		t.Errorf("views missing:\n%s", out)
	}
	if !strings.Contains(out, `id="gallery-images">[]</script>`) {
		t.Errorf("empty gallery payload expected:\n%s", out)
	}
}

// Package article describes a published thesis: its metadata and body, how
// it is read from disk, and how its public page is rendered.
package article

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rlsouza/teses/internal/content"
	"github.com/rlsouza/teses/internal/importer"
)

// Article is one thesis as shown on its public page.
type Article struct {
	Title              string     `yaml:"title"`
	Slug               string     `yaml:"slug"`
	Description        string     `yaml:"description"`
	Category           string     `yaml:"category"`
	Author             string     `yaml:"author"`
	CoverImage         string     `yaml:"cover_image"`
	CoverImagePosition string     `yaml:"cover_image_position"`
	Published          bool       `yaml:"published"`
	PublishedAt        *time.Time `yaml:"published_at"`
	Views              int        `yaml:"views"`

	// Content is the stored body: a JSON string or an inline mapping.
	Content any `yaml:"content"`
	// ContentFile names a source file imported as the body, relative to the
	// metadata file. It is used when Content is empty.
	ContentFile string `yaml:"content_file"`

	Body content.Document `yaml:"-"`
}

// Load reads an article metadata file and resolves its body. A body that
// cannot be read is logged and replaced by the empty document, so the page
// still renders.
func Load(path string, logger *slog.Logger) (*Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read article: %w", err)
	}
	a, err := Parse(data, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to parse article %s: %w", path, err)
	}
	if a.Content == nil && a.ContentFile != "" {
		file := a.ContentFile
		if !filepath.IsAbs(file) {
			file = filepath.Join(filepath.Dir(path), file)
		}
		doc, err := importer.ImportFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to import article body: %w", err)
		}
		a.Body = doc
	}
	return a, nil
}

// Parse decodes article metadata. The title is required; a missing slug is
// derived from it.
func Parse(data []byte, logger *slog.Logger) (*Article, error) {
	var a Article
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&a); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" {
		return nil, errors.New("article has no title")
	}
	if a.Slug == "" {
		a.Slug = content.Slugify(a.Title)
	}
	a.Body = content.Normalizer{Logger: logger}.Normalize(a.Content)
	return &a, nil
}

// ErrNotPublished is returned for drafts where only published articles are
// served.
var ErrNotPublished = errors.New("article is not published")

// Open loads path as article metadata when it is a YAML file, and otherwise
// imports it as a bare body. A bare body takes its title from the first
// heading, or from the file name, and has no draft state: it is published.
func Open(path string, logger *slog.Logger) (*Article, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return Load(path, logger)
	}
	doc, err := importer.ImportFile(path)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if outline := content.Outline(doc); len(outline) > 0 && outline[0].Title != "" {
		title = outline[0].Title
	}
	return &Article{Title: title, Slug: content.Slugify(title), Published: true, Body: doc}, nil
}

// Images returns the media index of the body.
func (a *Article) Images() []string {
	return content.Images(a.Body)
}

var months = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// FormatDate formats t as a long Brazilian Portuguese date,
// e.g. "2 de janeiro de 2025".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), months[t.Month()-1], t.Year())
}

// FormatCardDate formats t the way article cards show it,
// e.g. "02 de janeiro, 2025".
func FormatCardDate(t time.Time) string {
	return fmt.Sprintf("%02d de %s, %d", t.Day(), months[t.Month()-1], t.Year())
}

// ViewsLabel formats a view count for the page header.
func ViewsLabel(views int) string {
	return fmt.Sprintf("%d visualizações", views)
}

package article

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// AllCategories is the category filter that keeps every article.
const AllCategories = "Todas"

// LoadDir loads every metadata file (.yaml, .yml) directly inside dir, in
// file name order. A file that fails to load is logged and skipped.
func LoadDir(dir string, logger *slog.Logger) ([]*Article, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read articles: %w", err)
	}
	var articles []*Article
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml":
		default:
			continue
		}
		path := filepath.Join(dir, entry.Name())
		a, err := Load(path, logger)
		if err != nil {
			logger.Warn("skipping article", "path", path, "error", err)
			continue
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// Published returns the published articles, newest first. Articles without
// a publish date come last; equal dates keep their input order.
func Published(articles []*Article) []*Article {
	var out []*Article
	for _, a := range articles {
		if a.Published {
			out = append(out, a)
		}
	}
	slices.SortStableFunc(out, func(a, b *Article) int {
		switch {
		case a.PublishedAt == nil && b.PublishedAt == nil:
			return 0
		case a.PublishedAt == nil:
			return 1
		case b.PublishedAt == nil:
			return -1
		}
		return b.PublishedAt.Compare(*a.PublishedAt)
	})
	return out
}

// Categories returns the distinct non-empty categories of articles, sorted.
func Categories(articles []*Article) []string {
	var out []string
	for _, a := range articles {
		if a.Category != "" && !slices.Contains(out, a.Category) {
			out = append(out, a.Category)
		}
	}
	slices.Sort(out)
	return out
}

// Filter narrows a list of articles by category and a search query.
type Filter struct {
	// Category keeps only articles in this category. Empty or
	// AllCategories keeps every category.
	Category string
	// Search keeps articles whose title, description or category contains
	// it, ignoring case.
	Search string
}

// Apply returns the articles matching f, in input order.
func (f Filter) Apply(articles []*Article) []*Article {
	query := strings.ToLower(strings.TrimSpace(f.Search))
	var out []*Article
	for _, a := range articles {
		if f.Category != "" && f.Category != AllCategories && !strings.EqualFold(a.Category, f.Category) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(a.Title), query) &&
			!strings.Contains(strings.ToLower(a.Description), query) &&
			!strings.Contains(strings.ToLower(a.Category), query) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// ResultsLabel formats the search result count.
func ResultsLabel(n int) string {
	if n == 1 {
		return "1 resultado encontrado"
	}
	return fmt.Sprintf("%d resultados encontrados", n)
}

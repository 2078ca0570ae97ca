package article

import (
	"html/template"
	"io"
	"strings"

	"github.com/rlsouza/teses/internal/render"
)

const pageTemplate = `<article class="max-w-4xl mx-auto px-4 sm:px-6 lg:px-8 py-12">
<header class="mb-8">
{{- if .Category}}
<div class="flex items-center gap-2 mb-4"><span class="badge badge-secondary">{{.Category}}</span></div>
{{- end}}
<h1 class="text-4xl font-serif font-bold mb-4 text-foreground">{{.Title}}</h1>
{{- if .Description}}
<p class="text-xl text-muted-foreground mb-6">{{.Description}}</p>
{{- end}}
<div class="flex items-center gap-6 text-sm text-muted-foreground">
{{- if .Author}}
<span class="author">{{.Author}}</span>
{{- end}}
{{- if .Published}}
<time datetime="{{.PublishedISO}}">{{.Published}}</time>
{{- end}}
<span class="views">{{.Views}}</span>
</div>
</header>
{{- if .CoverImage}}
<div class="mb-8"><div class="relative w-full h-64 md:h-96 rounded-lg overflow-hidden">
<img src="{{.CoverImage}}" alt="{{.Title}}" class="w-full h-full object-cover" style="object-position: {{.CoverPosition}}" />
</div></div>
{{- end}}
<div class="prose prose-lg max-w-none">{{.Body}}</div>
<script type="application/json" id="gallery-images">{{.Images}}</script>
</article>
`

var page = template.Must(template.New("page").Parse(pageTemplate))

type pageData struct {
	Title         string
	Category      string
	Description   string
	Author        string
	Published     string
	PublishedISO  string
	Views         string
	CoverImage    string
	CoverPosition string
	Body          template.HTML
	Images        []string
}

// WritePage writes the public page of a: header, cover image, rendered body
// and the gallery payload the click-to-enlarge viewer reads. Image elements
// in the body carry data-image-index pointing into that payload.
func WritePage(w io.Writer, a *Article, opts render.Options) error {
	data := pageData{
		Title:         a.Title,
		Category:      a.Category,
		Description:   a.Description,
		Author:        a.Author,
		Views:         ViewsLabel(a.Views),
		CoverImage:    a.CoverImage,
		CoverPosition: a.CoverImagePosition,
		Body:          template.HTML(render.HTML(render.Render(a.Body), opts)),
		Images:        a.Images(),
	}
	if data.CoverPosition == "" {
		data.CoverPosition = "center"
	}
	if a.PublishedAt != nil {
		data.Published = FormatDate(*a.PublishedAt)
		data.PublishedISO = a.PublishedAt.Format("2006-01-02")
	}
	return page.Execute(w, data)
}

// Page returns the public page of a as a string.
func Page(a *Article, opts render.Options) (string, error) {
	var sb strings.Builder
	if err := WritePage(&sb, a, opts); err != nil {
		return "", err
	}
	return sb.String(), nil
}

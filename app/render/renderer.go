package render

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lysyi3m/rss-planet/app/database"
)

// pageTemplate is the entry template every page is rendered through. The
// template directory is user-supplied; this name is the contract.
const pageTemplate = "template.html"

// PageData is what a page template is executed with.
type PageData struct {
	Title       string
	Entries     []database.Entry
	GeneratedAt time.Time
}

// Renderer turns a page title plus an ordered entry sequence into one
// static HTML file under the output directory.
type Renderer struct {
	tmpl      *template.Template
	outputDir string
	location  *time.Location
}

func NewRenderer(templatesDir, outputDir string, location *time.Location) (*Renderer, error) {
	titleCaser := cases.Title(language.English)

	funcs := template.FuncMap{
		"date": func(t time.Time) string {
			return t.In(location).Format("Monday, January 2, 2006")
		},
		"datetime": func(t time.Time) string {
			return t.In(location).Format("Jan 2, 2006 15:04")
		},
		"titlecase": func(s string) string {
			return titleCaser.String(s)
		},
		// Entry content is feed-supplied HTML; templates opt in explicitly.
		"raw": func(s string) template.HTML {
			return template.HTML(s)
		},
	}

	tmpl, err := template.New("").Funcs(funcs).ParseGlob(filepath.Join(templatesDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	if tmpl.Lookup(pageTemplate) == nil {
		return nil, fmt.Errorf("template directory %s does not contain %s", templatesDir, pageTemplate)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Renderer{
		tmpl:      tmpl,
		outputDir: outputDir,
		location:  location,
	}, nil
}

// Run renders one page to <outputDir>/<page>.html. The template executes
// into a buffer first so a template error never leaves a truncated file.
func (r *Renderer) Run(page string, title string, entries []database.Entry) error {
	data := PageData{
		Title:       title,
		Entries:     entries,
		GeneratedAt: time.Now().In(r.location),
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, pageTemplate, data); err != nil {
		return fmt.Errorf("failed to render page %s: %w", page, err)
	}

	outputPath := filepath.Join(r.outputDir, page+".html")
	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write page %s: %w", page, err)
	}

	slog.Debug("Page rendered", "page", page, "entries", len(entries), "path", outputPath)

	return nil
}

package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gilliek/go-opml/opml"
	"gopkg.in/yaml.v3"
)

// Loader reads the feed-list file supplied at startup. The list is loaded
// once per batch run; there is no hot reload.
type Loader struct {
	path string
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load parses the feed list and validates every source. OPML files are
// detected by extension; everything else is treated as a YAML list.
func (l *Loader) Load() ([]Source, error) {
	var sources []Source
	var err error

	if strings.EqualFold(filepath.Ext(l.path), ".opml") {
		sources, err = l.loadOPML()
	} else {
		sources, err = l.loadYAML()
	}
	if err != nil {
		return nil, err
	}

	if err := l.validate(sources); err != nil {
		return nil, err
	}

	slog.Debug("Feed list loaded", "file", l.path, "sources", len(sources))

	return sources, nil
}

func (l *Loader) loadYAML() ([]Source, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed list: %w", err)
	}

	var sources []Source
	if err := yaml.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("failed to parse YAML feed list: %w", err)
	}

	return sources, nil
}

func (l *Loader) loadOPML() ([]Source, error) {
	doc, err := opml.NewOPMLFromFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OPML feed list: %w", err)
	}

	var sources []Source
	var walk func(outlines []opml.Outline)
	walk = func(outlines []opml.Outline) {
		for _, outline := range outlines {
			if outline.XMLURL != "" {
				title := outline.Title
				if title == "" {
					title = outline.Text
				}
				sources = append(sources, Source{URL: outline.XMLURL, Title: title})
			}
			walk(outline.Outlines)
		}
	}
	walk(doc.Body.Outlines)

	return sources, nil
}

func (l *Loader) validate(sources []Source) error {
	if len(sources) == 0 {
		return fmt.Errorf("feed list %s contains no sources", l.path)
	}

	for i, source := range sources {
		if source.URL == "" {
			return fmt.Errorf("source at index %d has no URL", i)
		}
		parsed, err := url.Parse(source.URL)
		if err != nil {
			return fmt.Errorf("source at index %d has an invalid URL %q: %w", i, source.URL, err)
		}
		if !parsed.IsAbs() {
			return fmt.Errorf("source at index %d has a non-absolute URL %q", i, source.URL)
		}
	}

	return nil
}

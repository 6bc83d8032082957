package config

import "gopkg.in/yaml.v3"

// Source identifies a single feed to fetch. Title is optional and is used
// as a fallback when the feed itself carries no title.
type Source struct {
	URL   string `yaml:"url"`
	Title string `yaml:"title"`
}

// UnmarshalYAML accepts both plain string entries and {url, title} mappings,
// so a feed list can be a bare list of URLs.
func (s *Source) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&s.URL)
	}

	type rawSource struct {
		URL   string `yaml:"url"`
		Title string `yaml:"title"`
	}

	var raw rawSource
	if err := value.Decode(&raw); err != nil {
		return err
	}

	s.URL = raw.URL
	s.Title = raw.Title
	return nil
}

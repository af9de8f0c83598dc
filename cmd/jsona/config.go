package main

import (
	"os"
	"path/filepath"

	goyaml "github.com/goccy/go-yaml"

	"go.jsona.dev/jsona/format"
)

// Rule is one entry in a .jsona config's `rules` list: an optional name, an
// include/exclude glob pair scoping which files it applies to, a schema
// association (path or url), and a formatting override.
type Rule struct {
	Name       string          `yaml:"name"`
	Include    string          `yaml:"include"`
	Exclude    string          `yaml:"exclude"`
	Path       string          `yaml:"path"`
	URL        string          `yaml:"url"`
	Formatting *format.Options `yaml:"formatting"`
}

// matches reports whether path falls within this rule's include/exclude
// scope. A rule with neither set matches every path.
func (r Rule) matches(path string) bool {
	if r.Include != "" {
		ok, _ := filepath.Match(r.Include, path)
		if !ok {
			return false
		}
	}

	if r.Exclude != "" {
		ok, _ := filepath.Match(r.Exclude, path)
		if ok {
			return false
		}
	}

	return true
}

// Config is the `.jsona` workspace configuration file. Include is a
// pointer so an absent key (include everything) can be told apart from an
// explicitly empty list (include nothing), per the include/exclude
// contract.
type Config struct {
	Include    *[]string       `yaml:"include"`
	Exclude    []string        `yaml:"exclude"`
	Formatting *format.Options `yaml:"formatting"`
	Rules      []Rule          `yaml:"rules"`
}

// loadConfig reads and parses a .jsona file at path. A missing file is not
// an error: it returns a zero Config, equivalent to "include everything,
// no rules".
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}

	if err != nil {
		return nil, err
	}

	var cfg Config

	if err := goyaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Included reports whether path is in scope under c's include/exclude
// globs. Exclude always wins over include.
func (c *Config) Included(path string) bool {
	if c.Include != nil {
		if len(*c.Include) == 0 {
			return false
		}

		if !matchAny(*c.Include, path) {
			return false
		}
	}

	return !matchAny(c.Exclude, path)
}

func matchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, path); ok {
			return true
		}
	}

	return false
}

// ResolveFormatting builds the effective format.Options for path: the
// config's top-level Formatting, then every matching rule's Formatting in
// declaration order, last match wins.
func (c *Config) ResolveFormatting(path string) format.Options {
	var opts format.Options

	if c.Formatting != nil {
		opts = *c.Formatting
	}

	for _, r := range c.Rules {
		if r.matches(path) && r.Formatting != nil {
			opts = *r.Formatting
		}
	}

	return opts
}

// ResolveSchema implements the schema association precedence from the
// host contract for the slice of it a standalone CLI can decide: an
// explicit --schema flag outranks the document's own @jsonaschema
// annotation, which outranks the config's rules[] (last match wins). The
// remaining two tiers (extension-contributed association, catalog lookup)
// have no meaning without an editor/LSP host and are not implemented here.
func (c *Config) ResolveSchema(path, manual, docAnnotationURL string) string {
	if manual != "" {
		return manual
	}

	if docAnnotationURL != "" {
		return docAnnotationURL
	}

	var picked string

	for _, r := range c.Rules {
		if !r.matches(path) {
			continue
		}

		if r.URL != "" {
			picked = r.URL
		} else if r.Path != "" {
			picked = r.Path
		}
	}

	return picked
}

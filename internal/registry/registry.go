// Package registry holds the category to symbol table driving bulk sweeps.
package registry

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var defaultTable []byte

// Category is a named, ordered set of symbols.
type Category struct {
	Name    string
	Symbols []string
	// Duplicates counts repeated symbols dropped while loading.
	Duplicates int
}

// Registry is an immutable, ordered list of categories.
type Registry struct {
	categories []Category
}

type fileFormat struct {
	Categories []struct {
		Name    string   `yaml:"name"`
		Symbols []string `yaml:"symbols"`
	} `yaml:"categories"`
}

// Default returns the built-in registry.
func Default() (*Registry, error) {
	return Parse(defaultTable)
}

// Load reads a registry from a YAML file; an empty path returns the built-in one.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from YAML. Category order follows the document;
// repeated symbols within a category keep their first position only.
func Parse(data []byte) (*Registry, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("registry has no categories")
	}

	r := &Registry{}
	names := make(map[string]bool)
	for i, c := range f.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("category %d: name is required", i)
		}
		if names[name] {
			return nil, fmt.Errorf("category %q listed twice", name)
		}
		names[name] = true

		cat := Category{Name: name}
		seen := make(map[string]bool, len(c.Symbols))
		for _, s := range c.Symbols {
			s = strings.TrimSpace(s)
			if s == "" {
				return nil, fmt.Errorf("category %q: empty symbol", name)
			}
			if seen[s] {
				cat.Duplicates++
				continue
			}
			seen[s] = true
			cat.Symbols = append(cat.Symbols, s)
		}
		r.categories = append(r.categories, cat)
	}
	return r, nil
}

// Categories returns a copy of the categories in registry order.
func (r *Registry) Categories() []Category {
	out := make([]Category, len(r.categories))
	for i, c := range r.categories {
		c.Symbols = append([]string(nil), c.Symbols...)
		out[i] = c
	}
	return out
}

// Lookup returns a category by name.
func (r *Registry) Lookup(name string) (Category, bool) {
	for _, c := range r.categories {
		if c.Name == name {
			c.Symbols = append([]string(nil), c.Symbols...)
			return c, true
		}
	}
	return Category{}, false
}

// Only returns a registry restricted to the named categories, in registry order.
// No names returns r itself.
func (r *Registry) Only(names ...string) (*Registry, error) {
	if len(names) == 0 {
		return r, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := r.Lookup(n); !ok {
			return nil, fmt.Errorf("unknown category %q", n)
		}
		want[n] = true
	}
	out := &Registry{}
	for _, c := range r.categories {
		if want[c.Name] {
			out.categories = append(out.categories, c)
		}
	}
	return out, nil
}

// Len returns the number of distinct symbols across all categories. A
// symbol listed in two categories counts once.
func (r *Registry) Len() int {
	seen := make(map[string]struct{})
	for _, c := range r.categories {
		for _, sym := range c.Symbols {
			seen[sym] = struct{}{}
		}
	}
	return len(seen)
}

// Package genre maps free-text category and subject strings onto a fixed
// taxonomy of standard genre labels.
package genre

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var defaultTaxonomy []byte

// Category is one standard label and the lowercase keywords that select it.
type Category struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// CompositeRule emits Label when the combined input mentions any Primary term
// and any Secondary term, or any Literal term. Once emitted, the labels in
// Suppress are skipped by the keyword pass.
type CompositeRule struct {
	Label     string   `yaml:"label"`
	Primary   []string `yaml:"primary"`
	Secondary []string `yaml:"secondary"`
	Literal   []string `yaml:"literal"`
	Suppress  []string `yaml:"suppress"`
}

type Taxonomy struct {
	Version    int           `yaml:"version"`
	Composite  CompositeRule `yaml:"composite"`
	Categories []Category    `yaml:"categories"`
}

// Parse decodes and validates a YAML taxonomy.
func Parse(data []byte) (Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Taxonomy{}, fmt.Errorf("genre: decode taxonomy: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Taxonomy{}, err
	}
	return t, nil
}

func (t Taxonomy) Validate() error {
	if len(t.Categories) == 0 {
		return errors.New("genre: taxonomy has no categories")
	}
	seen := make(map[string]bool, len(t.Categories))
	for i, c := range t.Categories {
		if strings.TrimSpace(c.Label) == "" {
			return fmt.Errorf("genre: category %d has no label", i)
		}
		if seen[c.Label] {
			return fmt.Errorf("genre: duplicate label %q", c.Label)
		}
		seen[c.Label] = true
		for _, kw := range c.Keywords {
			if kw == "" || kw != strings.ToLower(kw) {
				return fmt.Errorf("genre: %q keyword %q must be non-empty lowercase", c.Label, kw)
			}
		}
	}
	return nil
}

// Labels lists every label in declaration order.
func (t Taxonomy) Labels() []string {
	out := make([]string, 0, len(t.Categories))
	for _, c := range t.Categories {
		out = append(out, c.Label)
	}
	return out
}

var std = mustDefault()

func mustDefault() *Classifier {
	t, err := Parse(defaultTaxonomy)
	if err != nil {
		panic(err)
	}
	return New(t)
}

// Default returns the classifier built from the embedded taxonomy.
func Default() *Classifier { return std }

type Classifier struct {
	tax      Taxonomy
	suppress map[string]bool
}

func New(t Taxonomy) *Classifier {
	suppress := make(map[string]bool, len(t.Composite.Suppress))
	for _, l := range t.Composite.Suppress {
		suppress[l] = true
	}
	return &Classifier{tax: t, suppress: suppress}
}

func (c *Classifier) Taxonomy() Taxonomy { return c.tax }

// Classify returns the labels matched by inputs in taxonomy order. The result
// has set semantics; no input yields an empty slice.
func (c *Classifier) Classify(inputs []string) []string {
	if len(inputs) == 0 {
		return []string{}
	}

	lowered := make([]string, len(inputs))
	for i, in := range inputs {
		lowered[i] = strings.ToLower(in)
	}
	blob := strings.Join(lowered, " ")

	found := make(map[string]bool)
	composite := c.tax.Composite
	if composite.Label != "" {
		if (containsAny(blob, composite.Primary) && containsAny(blob, composite.Secondary)) || containsAny(blob, composite.Literal) {
			found[composite.Label] = true
		}
	}

	for _, cat := range c.tax.Categories {
		if found[cat.Label] {
			continue
		}
		if composite.Label != "" && found[composite.Label] && c.suppress[cat.Label] {
			continue
		}
		if matchesAny(lowered, cat.Keywords) {
			found[cat.Label] = true
		}
	}

	out := make([]string, 0, len(found))
	if found[composite.Label] && !c.declared(composite.Label) {
		out = append(out, composite.Label)
	}
	for _, cat := range c.tax.Categories {
		if found[cat.Label] {
			out = append(out, cat.Label)
		}
	}
	return out
}

func (c *Classifier) declared(label string) bool {
	for _, cat := range c.tax.Categories {
		if cat.Label == label {
			return true
		}
	}
	return false
}

// Classify runs the default classifier.
func Classify(inputs []string) []string {
	return std.Classify(inputs)
}

// Join renders labels the way they are stored on a book.
func Join(labels []string) string {
	return strings.Join(labels, ", ")
}

// Split is the inverse of Join. Blank parts are dropped.
func Split(genre string) []string {
	var out []string
	for _, part := range strings.Split(genre, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func matchesAny(inputs []string, keywords []string) bool {
	for _, kw := range keywords {
		for _, in := range inputs {
			if strings.Contains(in, kw) {
				return true
			}
		}
	}
	return false
}

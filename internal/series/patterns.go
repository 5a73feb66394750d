package series

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed patterns.yaml
var defaultPatterns []byte

type patternFile struct {
	Version   int      `yaml:"version"`
	Position  []string `yaml:"position"`
	Hydration []string `yaml:"hydration"`
	// HydrationDescription applies to free-text blurbs.
	HydrationDescription []string `yaml:"hydration_description"`
	Omnibus              struct {
		Keywords          []string `yaml:"keywords"`
		QualifiedKeywords []string `yaml:"qualified_keywords"`
		SingleVolume      string   `yaml:"single_volume"`
		Range             string   `yaml:"range"`
		VolumeWords       string   `yaml:"volume_words"`
		Prefixes          []string `yaml:"prefixes"`
	} `yaml:"omnibus"`
}

// Patterns holds the compiled title heuristics.
type Patterns struct {
	Version int

	position     []*regexp.Regexp
	hydration    []*regexp.Regexp
	hydrationDoc []*regexp.Regexp
	keywords     []string
	qualified    []string
	singleVolume *regexp.Regexp
	rangeRe      *regexp.Regexp
	volumeWords  *regexp.Regexp
	prefixes     []string
}

// ParsePatterns compiles a pattern table. Every regexp must carry exactly one
// capture group for the number.
func ParsePatterns(data []byte) (*Patterns, error) {
	var f patternFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("series patterns: %w", err)
	}
	if len(f.Position) == 0 {
		return nil, errors.New("series patterns: no position patterns")
	}

	p := &Patterns{Version: f.Version}
	var err error
	if p.position, err = compileNumbered(f.Position); err != nil {
		return nil, err
	}
	if p.hydration, err = compileNumbered(f.Hydration); err != nil {
		return nil, err
	}
	if p.hydrationDoc, err = compileNumbered(f.HydrationDescription); err != nil {
		return nil, err
	}
	if f.Omnibus.SingleVolume != "" {
		if p.singleVolume, err = regexp.Compile(f.Omnibus.SingleVolume); err != nil {
			return nil, fmt.Errorf("series patterns: single volume: %w", err)
		}
	}
	if f.Omnibus.Range != "" {
		if p.rangeRe, err = regexp.Compile(f.Omnibus.Range); err != nil {
			return nil, fmt.Errorf("series patterns: range: %w", err)
		}
	}
	if f.Omnibus.VolumeWords != "" {
		if p.volumeWords, err = regexp.Compile(f.Omnibus.VolumeWords); err != nil {
			return nil, fmt.Errorf("series patterns: volume words: %w", err)
		}
	}
	for _, k := range f.Omnibus.Keywords {
		p.keywords = append(p.keywords, strings.ToLower(k))
	}
	for _, k := range f.Omnibus.QualifiedKeywords {
		p.qualified = append(p.qualified, strings.ToLower(k))
	}
	for _, k := range f.Omnibus.Prefixes {
		p.prefixes = append(p.prefixes, strings.ToLower(k))
	}
	return p, nil
}

func compileNumbered(exprs []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("series patterns: %q: %w", expr, err)
		}
		if re.NumSubexp() != 1 {
			return nil, fmt.Errorf("series patterns: %q: want one capture group, got %d", expr, re.NumSubexp())
		}
		out = append(out, re)
	}
	return out, nil
}

var stdPatterns = mustPatterns()

func mustPatterns() *Patterns {
	p, err := ParsePatterns(defaultPatterns)
	if err != nil {
		panic(err)
	}
	return p
}

// DefaultPatterns returns the embedded pattern table.
func DefaultPatterns() *Patterns { return stdPatterns }

// Position infers a series position from a title. Zero means none found.
func (p *Patterns) Position(title string) int {
	return firstNumber(p.position, title)
}

// HydratedPosition reads a position from a secondary source's title, then
// from its description.
func (p *Patterns) HydratedPosition(title, description string) int {
	if n := firstNumber(p.hydration, title); n > 0 {
		return n
	}
	return firstNumber(p.hydrationDoc, description)
}

func firstNumber(res []*regexp.Regexp, s string) int {
	for _, re := range res {
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 0
}

// IsOmnibus reports whether a title looks like a box set, anthology or a
// numbered range of volumes.
func (p *Patterns) IsOmnibus(title string) bool {
	lower := strings.ToLower(title)
	for _, k := range p.keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	if p.rangeRe != nil && p.volumeWords != nil && p.rangeRe.MatchString(title) && p.volumeWords.MatchString(title) {
		return true
	}
	trimmed := strings.TrimSpace(lower)
	for _, prefix := range p.prefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	for _, k := range p.qualified {
		if strings.Contains(lower, k) {
			return p.singleVolume == nil || !p.singleVolume.MatchString(title)
		}
	}
	return false
}

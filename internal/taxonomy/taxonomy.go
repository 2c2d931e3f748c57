// Package taxonomy holds the static skill taxonomy: an ordered set of
// categories, each an ordered list of canonical skill strings. The taxonomy
// is loaded once at startup and passed explicitly into the extraction and
// matching entry points; it is never mutated afterwards.
package taxonomy

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed data/taxonomy.json
var dataFS embed.FS

// Category is one named group of canonical skills. Skill order is
// significant: it is the display and tie-break order used downstream.
type Category struct {
	Name   string   `json:"category"`
	Skills []string `json:"skills"`
}

// Entry is a single canonical skill with its category provenance.
type Entry struct {
	Skill    string
	Category string
}

// Taxonomy is an immutable, ordered skill catalog.
type Taxonomy struct {
	categories []Category
	flat       []Entry
	categoryOf map[string]string // lower-cased skill -> category (last category wins)
}

// New builds a Taxonomy from ordered categories.
//
// A skill is expected to live in at most one category, but the source data
// does repeat a handful of strings (e.g. "Swift" under both programming
// languages and mobile development). When that happens the LAST category in
// iteration order wins for category lookup. The flattened entry list keeps
// every occurrence so downstream iteration order stays stable.
func New(categories []Category) *Taxonomy {
	t := &Taxonomy{
		categories: categories,
		categoryOf: make(map[string]string),
	}
	for _, c := range categories {
		for _, s := range c.Skills {
			t.flat = append(t.flat, Entry{Skill: s, Category: c.Name})
			t.categoryOf[strings.ToLower(s)] = c.Name
		}
	}
	return t
}

var (
	defaultOnce sync.Once
	defaultTax  *Taxonomy
	defaultErr  error
)

// Default returns the embedded taxonomy, parsed once per process.
func Default() (*Taxonomy, error) {
	defaultOnce.Do(func() {
		raw, err := dataFS.ReadFile("data/taxonomy.json")
		if err != nil {
			defaultErr = fmt.Errorf("reading embedded taxonomy: %w", err)
			return
		}
		var categories []Category
		if err := json.Unmarshal(raw, &categories); err != nil {
			defaultErr = fmt.Errorf("parsing embedded taxonomy: %w", err)
			return
		}
		defaultTax = New(categories)
	})
	return defaultTax, defaultErr
}

// Categories returns the ordered category list.
func (t *Taxonomy) Categories() []Category {
	return t.categories
}

// Flatten returns every canonical skill with its category, in category order
// then skill order. Duplicated skills appear once per category they occur in.
func (t *Taxonomy) Flatten() []Entry {
	return t.flat
}

// CategoryOf returns the category a canonical skill belongs to
// (case-insensitive). For skills present in more than one category the last
// category in iteration order is returned.
func (t *Taxonomy) CategoryOf(skill string) (string, bool) {
	c, ok := t.categoryOf[strings.ToLower(skill)]
	return c, ok
}

// minContainedSkillLen keeps very short canonicals like "R", "Go" and "C#"
// from matching inside arbitrary candidate text. They still resolve by
// exact equality or when the candidate is a fragment of the canonical.
const minContainedSkillLen = 3

// Resolve maps a free-text candidate onto a canonical skill. A candidate
// resolves by exact case-insensitive equality first, then by containment in
// either direction. The containment pass picks the longest canonical match,
// ties broken by taxonomy order. Returns the canonical spelling.
func (t *Taxonomy) Resolve(candidate string) (string, bool) {
	c := strings.ToLower(strings.TrimSpace(candidate))
	if c == "" {
		return "", false
	}
	for _, e := range t.flat {
		if strings.ToLower(e.Skill) == c {
			return e.Skill, true
		}
	}
	best := ""
	for _, e := range t.flat {
		lower := strings.ToLower(e.Skill)
		hit := strings.Contains(lower, c) ||
			(len(lower) >= minContainedSkillLen && strings.Contains(c, lower))
		if hit && len(e.Skill) > len(best) {
			best = e.Skill
		}
	}
	return best, best != ""
}

// Suggest returns up to limit canonical skills containing query
// (case-insensitive), skipping anything in exclude (exact match). Used for
// autocomplete; an empty query matches everything.
func (t *Taxonomy) Suggest(query string, exclude []string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	excluded := make(map[string]struct{}, len(exclude))
	for _, s := range exclude {
		excluded[s] = struct{}{}
	}
	q := strings.ToLower(query)

	var out []string
	seen := make(map[string]struct{})
	for _, e := range t.flat {
		if _, dup := seen[e.Skill]; dup {
			continue
		}
		if _, skip := excluded[e.Skill]; skip {
			continue
		}
		if !strings.Contains(strings.ToLower(e.Skill), q) {
			continue
		}
		seen[e.Skill] = struct{}{}
		out = append(out, e.Skill)
		if len(out) >= limit {
			break
		}
	}
	return out
}

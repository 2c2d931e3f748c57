// Package extract derives a confidence-ranked skill set from unstructured
// resume text. Two independent producers feed one deduplicating reducer:
// a whole-word scan over every canonical taxonomy skill, then a structural
// scan over labeled lists and bullet points. The first writer wins, so the
// higher-confidence direct scan always takes precedence.
package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/kalambet/careersync/internal/taxonomy"
)

// Skill is one extracted skill with its taxonomy category and a heuristic
// confidence in [0,1]. Never mutated after creation.
type Skill struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

const (
	baseConfidence    = 0.7
	phraseBonus       = 0.1
	patternConfidence = 0.6

	// Pattern-scan candidates must be strictly between these lengths
	// after trimming; anything shorter is noise, anything longer is prose.
	minCandidateLen = 2
	maxCandidateLen = 50
)

// contextPhrases are the templates that raise confidence when found around a
// skill mention. All matching is done on lower-cased text.
var contextPhrases = []string{
	"experienced in %s",
	"proficient in %s",
	"skilled in %s",
	"expertise in %s",
	"knowledge of %s",
	"%s developer",
	"%s engineer",
	"years of %s",
	"%s certification",
	"certified in %s",
}

// structuralPatterns capture list-like or labeled segments of resume text.
var structuralPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:skills?|technologies?|tools?|languages?)[:\s]*([^\n.]+)`),
	regexp.MustCompile(`(?i)(?:experienced in|skilled in|proficient in|knowledge of|familiar with)[:\s]*([^\n.]+)`),
	regexp.MustCompile(`•\s*([^•\n]+)`),
	regexp.MustCompile(`-\s*([^-\n]+)`),
}

var listDelimiter = regexp.MustCompile(`[,;|&]`)

// Extractor scans text against a fixed taxonomy. Word-boundary patterns are
// compiled once at construction; an Extractor is safe for concurrent use.
type Extractor struct {
	tax     *taxonomy.Taxonomy
	wordRes []*regexp.Regexp // parallel to tax.Flatten()
}

// New builds an Extractor for the given taxonomy.
func New(tax *taxonomy.Taxonomy) *Extractor {
	flat := tax.Flatten()
	res := make([]*regexp.Regexp, len(flat))
	for i, e := range flat {
		// Word boundaries on both ends so "R" never matches inside
		// "React"; special characters in skills like "C++" are escaped.
		res[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(e.Skill) + `\b`)
	}
	return &Extractor{tax: tax, wordRes: res}
}

// Extract returns the deduplicated skills found in text, sorted by
// confidence descending with ties kept in taxonomy order. Skills listed in
// alreadyOwned (exact canonical names) are never re-extracted.
// Empty text yields an empty result, never an error.
func (e *Extractor) Extract(text string, alreadyOwned []string) []Skill {
	if strings.TrimSpace(text) == "" {
		return []Skill{}
	}

	lower := strings.ToLower(text)
	var out []Skill

	// Owned skills count as already claimed so neither producer re-adds
	// them and extraction stays idempotent.
	seen := make(map[string]struct{}, len(alreadyOwned))
	for _, s := range alreadyOwned {
		seen[s] = struct{}{}
	}

	// Producer 1: whole-word scan over every canonical skill.
	for i, entry := range e.tax.Flatten() {
		if _, dup := seen[entry.Skill]; dup {
			continue
		}
		if !e.wordRes[i].MatchString(text) {
			continue
		}

		conf := baseConfidence
		skillLower := strings.ToLower(entry.Skill)
		for _, tmpl := range contextPhrases {
			phrase := strings.Replace(tmpl, "%s", skillLower, 1)
			if strings.Contains(lower, phrase) {
				conf += phraseBonus
			}
		}
		if conf > 1.0 {
			conf = 1.0
		}

		category := entry.Category
		if c, ok := e.tax.CategoryOf(entry.Skill); ok {
			category = c
		}

		seen[entry.Skill] = struct{}{}
		out = append(out, Skill{Name: entry.Skill, Category: category, Confidence: conf})
	}

	// Producer 2: structural pattern scan; only adds skills the direct
	// scan did not already claim.
	for _, candidate := range structuralCandidates(text) {
		name, ok := e.tax.Resolve(candidate)
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		category, _ := e.tax.CategoryOf(name)
		seen[name] = struct{}{}
		out = append(out, Skill{Name: name, Category: category, Confidence: patternConfidence})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	if out == nil {
		out = []Skill{}
	}
	return out
}

// structuralCandidates collects trimmed list items from labeled segments and
// bullet lines. Items outside the (minCandidateLen, maxCandidateLen) length
// bounds are dropped.
func structuralCandidates(text string) []string {
	var out []string
	for _, re := range structuralPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			for _, item := range listDelimiter.Split(m[1], -1) {
				c := strings.TrimSpace(item)
				c = strings.TrimLeft(c, "•-– ")
				c = strings.TrimSpace(c)
				if len(c) <= minCandidateLen || len(c) >= maxCandidateLen {
					continue
				}
				out = append(out, c)
			}
		}
	}
	return out
}

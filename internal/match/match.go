// Package match scores a user's skill set against the occupation
// catalog and reports per-occupation fit, matched and missing skills.
package match

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kalambet/careersync/internal/similarity"
)

// Category weights of the composite score.
const (
	weightSkills     = 0.30
	weightAbilities  = 0.20
	weightKnowledge  = 0.20
	weightTechnology = 0.30
)

// qualifyThreshold is a calibration constant tuned against the catalog.
// Comparison is inclusive.
const qualifyThreshold = 34.62

const (
	minSimilarity = 0.20
	minScore      = 15.0
	maxMatches    = 5
)

// ErrUnknownOccupation is returned when an occupation ID is not in the catalog.
var ErrUnknownOccupation = errors.New("match: unknown occupation")

// Occupation is a single profile from the occupation catalog.
type Occupation struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Skills           []string `json:"skills"`
	Abilities        []string `json:"abilities"`
	Knowledge        []string `json:"knowledge"`
	TechnologySkills []string `json:"technology_skills"`
	SalaryRange      string   `json:"salary_range"`
	GrowthRate       string   `json:"growth_rate"`
}

// MissingSkills groups unmet requirements by profile category.
type MissingSkills struct {
	Skills           []string `json:"skills"`
	Abilities        []string `json:"abilities"`
	Knowledge        []string `json:"knowledge"`
	TechnologySkills []string `json:"technology_skills"`
}

// Match is the scored fit of a user skill set against one occupation.
type Match struct {
	Occupation    Occupation    `json:"occupation"`
	Similarity    float64       `json:"similarity"`
	Score         float64       `json:"score"`
	MatchedSkills []string      `json:"matched_skills"`
	MissingSkills MissingSkills `json:"missing_skills"`
	Qualifies     bool          `json:"qualifies"`
}

//go:embed data/occupations.json
var occupationData []byte

var (
	defaultOnce    sync.Once
	defaultMatcher *Matcher
	defaultErr     error
)

// Matcher evaluates skill sets against a fixed occupation catalog.
type Matcher struct {
	occupations []Occupation
}

// New builds a matcher over the given catalog.
func New(occupations []Occupation) *Matcher {
	return &Matcher{occupations: occupations}
}

// Default returns the matcher over the embedded occupation catalog.
func Default() (*Matcher, error) {
	defaultOnce.Do(func() {
		var occs []Occupation
		if err := json.Unmarshal(occupationData, &occs); err != nil {
			defaultErr = fmt.Errorf("decode occupation catalog: %w", err)
			return
		}
		defaultMatcher = New(occs)
	})
	return defaultMatcher, defaultErr
}

// Occupations returns the catalog in its stored order.
func (m *Matcher) Occupations() []Occupation {
	return m.occupations
}

// Occupation looks up a profile by its catalog ID.
func (m *Matcher) Occupation(id string) (Occupation, error) {
	for _, occ := range m.occupations {
		if occ.ID == id {
			return occ, nil
		}
	}
	return Occupation{}, fmt.Errorf("%w: %s", ErrUnknownOccupation, id)
}

// Match scores userSkills against every occupation in the catalog and
// returns the top matches, best first. Occupations score below both the
// similarity and score floors are dropped.
func (m *Matcher) Match(userSkills []string) []Match {
	matches := make([]Match, 0, len(m.occupations))
	for _, occ := range m.occupations {
		sim := similarity.Ratio(userSkills, combinedPool(occ))
		score := m.score(userSkills, occ)
		if sim < minSimilarity && score < minScore {
			continue
		}
		matched := matchedSkills(userSkills, occ)
		matches = append(matches, Match{
			Occupation:    occ,
			Similarity:    sim * 100,
			Score:         score,
			MatchedSkills: matched,
			MissingSkills: missingSkills(userSkills, occ, matched),
			Qualifies:     score >= qualifyThreshold,
		})
	}
	// Stable keeps catalog order between equally ranked occupations.
	sortMatches(matches)
	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}
	return matches
}

// Gap reports the missing skills for one occupation without applying
// the inclusion filter, so a gap can be shown even for poor fits.
func (m *Matcher) Gap(occupationID string, userSkills []string) (Match, error) {
	occ, err := m.Occupation(occupationID)
	if err != nil {
		return Match{}, err
	}
	sim := similarity.Ratio(userSkills, combinedPool(occ))
	score := m.score(userSkills, occ)
	matched := matchedSkills(userSkills, occ)
	return Match{
		Occupation:    occ,
		Similarity:    sim * 100,
		Score:         score,
		MatchedSkills: matched,
		MissingSkills: missingSkills(userSkills, occ, matched),
		Qualifies:     score >= qualifyThreshold,
	}, nil
}

func (m *Matcher) score(userSkills []string, occ Occupation) float64 {
	score := similarity.Ratio(userSkills, occ.Skills)*weightSkills +
		similarity.Ratio(userSkills, occ.Abilities)*weightAbilities +
		similarity.Ratio(userSkills, occ.Knowledge)*weightKnowledge +
		similarity.Ratio(userSkills, occ.TechnologySkills)*weightTechnology
	return score * 100
}

func combinedPool(occ Occupation) []string {
	pool := make([]string, 0, len(occ.Skills)+len(occ.TechnologySkills))
	pool = append(pool, occ.Skills...)
	pool = append(pool, occ.TechnologySkills...)
	return pool
}

// matchedSkills reports the combined-pool entries some user skill
// substring-matches, in profile order.
func matchedSkills(userSkills []string, occ Occupation) []string {
	matched := make([]string, 0, len(userSkills))
	for _, skill := range combinedPool(occ) {
		if similarity.Matches(skill, userSkills) {
			matched = append(matched, skill)
		}
	}
	return matched
}

func missingSkills(userSkills []string, occ Occupation, matched []string) MissingSkills {
	matchedSet := make(map[string]struct{}, len(matched))
	for _, s := range matched {
		matchedSet[strings.ToLower(s)] = struct{}{}
	}
	notMatched := func(list []string) []string {
		missing := make([]string, 0, len(list))
		for _, s := range list {
			if _, ok := matchedSet[strings.ToLower(s)]; !ok {
				missing = append(missing, s)
			}
		}
		return missing
	}
	uncovered := func(list []string) []string {
		missing := make([]string, 0, len(list))
		for _, s := range list {
			if !similarity.Matches(s, userSkills) {
				missing = append(missing, s)
			}
		}
		return missing
	}
	return MissingSkills{
		Skills:           notMatched(occ.Skills),
		Abilities:        uncovered(occ.Abilities),
		Knowledge:        uncovered(occ.Knowledge),
		TechnologySkills: notMatched(occ.TechnologySkills),
	}
}

// sortMatches orders descending by score plus similarity, both on the
// 0-100 scale.
func sortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score+matches[i].Similarity > matches[j].Score+matches[j].Similarity
	})
}

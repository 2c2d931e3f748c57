package match

import (
	"errors"
	"math"
	"testing"
)

func testOccupation() Occupation {
	return Occupation{
		ID:               "00-0000.00",
		Title:            "Test Occupation",
		Skills:           []string{"Python", "Java", "SQL"},
		Abilities:        []string{"Communication"},
		Knowledge:        []string{"Computer Science"},
		TechnologySkills: []string{"React", "Angular"},
	}
}

func TestMatchScoring(t *testing.T) {
	m := New([]Occupation{testOccupation()})

	matches := m.Match([]string{"Python", "React", "SQL"})
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	got := matches[0]

	// Combined pool is 5 entries and the user covers 3 of them. The score
	// ratios each category list against the user set on its own:
	// skills 2/4 x 0.30, abilities 0, knowledge 0, technology 1/4 x 0.30.
	if math.Abs(got.Similarity-60.0) > 1e-9 {
		t.Errorf("similarity = %v, want 60.0", got.Similarity)
	}
	if math.Abs(got.Score-22.5) > 1e-9 {
		t.Errorf("score = %v, want 22.5", got.Score)
	}
	if got.Qualifies {
		t.Errorf("qualifies = true for score %v, want false", got.Score)
	}

	wantMatched := []string{"Python", "SQL", "React"}
	if len(got.MatchedSkills) != len(wantMatched) {
		t.Fatalf("matched skills = %v, want %v", got.MatchedSkills, wantMatched)
	}
	for i, s := range wantMatched {
		if got.MatchedSkills[i] != s {
			t.Errorf("matched skills[%d] = %q, want %q", i, got.MatchedSkills[i], s)
		}
	}

	if len(got.MissingSkills.Skills) != 1 || got.MissingSkills.Skills[0] != "Java" {
		t.Errorf("missing skills = %v, want [Java]", got.MissingSkills.Skills)
	}
	if len(got.MissingSkills.TechnologySkills) != 1 || got.MissingSkills.TechnologySkills[0] != "Angular" {
		t.Errorf("missing technology skills = %v, want [Angular]", got.MissingSkills.TechnologySkills)
	}
	if len(got.MissingSkills.Abilities) != 1 || got.MissingSkills.Abilities[0] != "Communication" {
		t.Errorf("missing abilities = %v, want [Communication]", got.MissingSkills.Abilities)
	}
	if len(got.MissingSkills.Knowledge) != 1 || got.MissingSkills.Knowledge[0] != "Computer Science" {
		t.Errorf("missing knowledge = %v, want [Computer Science]", got.MissingSkills.Knowledge)
	}
}

func TestMatchEmptySkills(t *testing.T) {
	m, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	if got := m.Match(nil); len(got) != 0 {
		t.Errorf("Match(nil) returned %d matches, want 0", len(got))
	}
	if got := m.Match([]string{}); len(got) != 0 {
		t.Errorf("Match(empty) returned %d matches, want 0", len(got))
	}
}

func TestMatchQualifyBoundary(t *testing.T) {
	// A single-category profile scores similarity x 0.30 x 100, so a
	// qualifying fit needs the full pool covered plus nothing extra.
	occ := Occupation{
		ID:     "00-0000.01",
		Title:  "Narrow Fit",
		Skills: []string{"Python", "SQL"},
	}
	m := New([]Occupation{occ})

	matches := m.Match([]string{"Python", "SQL"})
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].Score != 30.0 {
		t.Errorf("score = %v, want 30.0", matches[0].Score)
	}
	if matches[0].Qualifies {
		t.Error("qualifies = true at score 30.0, want false")
	}
}

func TestQualifyThresholdInclusive(t *testing.T) {
	scores := []struct {
		score float64
		want  bool
	}{
		{34.61, false},
		{34.62, true},
		{34.63, true},
	}
	for _, tt := range scores {
		if got := tt.score >= qualifyThreshold; got != tt.want {
			t.Errorf("score %v qualifies = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestMatchOrderingAndTruncation(t *testing.T) {
	m, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	skills := []string{
		"Python", "JavaScript", "React", "SQL", "Machine Learning",
		"Statistics", "AWS", "Docker", "Git", "Communication",
		"Excel", "Marketing Strategy", "Financial Analysis", "Testing",
	}
	matches := m.Match(skills)
	if len(matches) > 5 {
		t.Fatalf("got %d matches, want at most 5", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		prev := matches[i-1].Score + matches[i-1].Similarity
		cur := matches[i].Score + matches[i].Similarity
		if prev < cur {
			t.Errorf("matches out of order at %d: %v before %v", i, prev, cur)
		}
	}
}

func TestMatchInclusionFilter(t *testing.T) {
	m, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	// A single niche skill should not clear either threshold for
	// occupations with large requirement lists.
	matches := m.Match([]string{"COBOL"})
	if len(matches) != 0 {
		t.Errorf("Match([COBOL]) returned %d matches, want 0", len(matches))
	}
}

func TestGap(t *testing.T) {
	m, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}

	gap, err := m.Gap("15-1132.00", []string{"COBOL"})
	if err != nil {
		t.Fatalf("Gap() error: %v", err)
	}
	if gap.Occupation.Title != "Software Developer" {
		t.Errorf("occupation title = %q, want %q", gap.Occupation.Title, "Software Developer")
	}
	// The gap is reported even when the fit is too poor to list.
	if len(gap.MissingSkills.Skills) == 0 {
		t.Error("missing skills empty for a poor fit")
	}

	if _, err := m.Gap("99-9999.99", nil); !errors.Is(err, ErrUnknownOccupation) {
		t.Errorf("Gap(unknown) error = %v, want ErrUnknownOccupation", err)
	}
}

func TestMatchedSkillsSubsetOfPool(t *testing.T) {
	m, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	matches := m.Match([]string{"Python", "SQL", "Machine Learning"})
	for _, match := range matches {
		pool := make(map[string]bool)
		for _, s := range combinedPool(match.Occupation) {
			pool[s] = true
		}
		for _, s := range match.MatchedSkills {
			if !pool[s] {
				t.Errorf("%s: matched skill %q not in combined pool", match.Occupation.Title, s)
			}
		}
		for _, s := range match.MissingSkills.Skills {
			for _, matched := range match.MatchedSkills {
				if s == matched {
					t.Errorf("%s: %q both matched and missing", match.Occupation.Title, s)
				}
			}
		}
	}
}

func TestDefaultCatalog(t *testing.T) {
	m, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	if got := len(m.Occupations()); got != 5 {
		t.Errorf("catalog size = %d, want 5", got)
	}
	occ, err := m.Occupation("15-1121.00")
	if err != nil {
		t.Fatalf("Occupation() error: %v", err)
	}
	if occ.Title != "Data Scientist" {
		t.Errorf("title = %q, want %q", occ.Title, "Data Scientist")
	}
	if occ.SalaryRange == "" || occ.GrowthRate == "" {
		t.Error("salary range or growth rate missing from catalog entry")
	}
}

package extract

import (
	"math"
	"strings"
	"testing"

	"github.com/kalambet/careersync/internal/taxonomy"
)

func newExtractor(t *testing.T) *Extractor {
	t.Helper()
	tax, err := taxonomy.Default()
	if err != nil {
		t.Fatalf("taxonomy.Default() error: %v", err)
	}
	return New(tax)
}

func findSkill(skills []Skill, name string) (Skill, bool) {
	for _, s := range skills {
		if s.Name == name {
			return s, true
		}
	}
	return Skill{}, false
}

func TestExtractDirect(t *testing.T) {
	e := newExtractor(t)

	skills := e.Extract("Built services in Python and React backed by SQL.", nil)

	for _, name := range []string{"Python", "React", "SQL"} {
		s, ok := findSkill(skills, name)
		if !ok {
			t.Errorf("skill %q not extracted", name)
			continue
		}
		if s.Confidence != 0.7 {
			t.Errorf("%s confidence = %v, want 0.7", name, s.Confidence)
		}
		if s.Category == "" {
			t.Errorf("%s has no category", name)
		}
	}
}

func TestExtractContextBonus(t *testing.T) {
	e := newExtractor(t)

	skills := e.Extract("I am proficient in python and have knowledge of python.", nil)
	s, ok := findSkill(skills, "Python")
	if !ok {
		t.Fatal("Python not extracted")
	}
	// Base 0.7 plus one bonus per matched phrase.
	if math.Abs(s.Confidence-0.9) > 1e-9 {
		t.Errorf("confidence = %v, want 0.9", s.Confidence)
	}
}

func TestExtractConfidenceCap(t *testing.T) {
	e := newExtractor(t)

	text := "Experienced in python. Proficient in python. Skilled in python. " +
		"Expertise in python. Knowledge of python. Years of python experience."
	skills := e.Extract(text, nil)
	s, ok := findSkill(skills, "Python")
	if !ok {
		t.Fatal("Python not extracted")
	}
	if s.Confidence != 1.0 {
		t.Errorf("confidence = %v, want capped at 1.0", s.Confidence)
	}
}

func TestExtractWordBoundaries(t *testing.T) {
	e := newExtractor(t)

	skills := e.Extract("Rewrote the frontend in TypeScript.", nil)
	// "R" must not match inside "Rewrote", "Go" must not match anywhere here.
	if _, ok := findSkill(skills, "R"); ok {
		t.Error("extracted R from a word that merely contains it")
	}
	if _, ok := findSkill(skills, "Go"); ok {
		t.Error("extracted Go from text that never mentions it")
	}
	if _, ok := findSkill(skills, "TypeScript"); !ok {
		t.Error("TypeScript not extracted")
	}
}

func TestExtractStructuralPatterns(t *testing.T) {
	e := newExtractor(t)

	text := "Skills: reactjs, machine learn\n• Dockerr\nUnrelated prose."
	skills := e.Extract(text, nil)

	tests := []struct {
		name string
		want float64
	}{
		{"React", 0.6},
		{"Machine Learning", 0.6},
		{"Docker", 0.6},
	}
	for _, tt := range tests {
		s, ok := findSkill(skills, tt.name)
		if !ok {
			t.Errorf("skill %q not resolved from pattern scan", tt.name)
			continue
		}
		if s.Confidence != tt.want {
			t.Errorf("%s confidence = %v, want %v", tt.name, s.Confidence, tt.want)
		}
	}
}

func TestExtractDirectScanWinsOverPattern(t *testing.T) {
	e := newExtractor(t)

	// "Python" hits both the direct scan and the labeled list; the direct
	// scan's confidence must survive.
	skills := e.Extract("Languages: Python", nil)
	s, ok := findSkill(skills, "Python")
	if !ok {
		t.Fatal("Python not extracted")
	}
	if s.Confidence != 0.7 {
		t.Errorf("confidence = %v, want 0.7 from the direct scan", s.Confidence)
	}

	count := 0
	for _, got := range skills {
		if got.Name == "Python" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Python extracted %d times, want 1", count)
	}
}

func TestExtractSkipsOwned(t *testing.T) {
	e := newExtractor(t)

	skills := e.Extract("Python and SQL all day.", []string{"Python"})
	if _, ok := findSkill(skills, "Python"); ok {
		t.Error("extracted a skill the caller already owns")
	}
	if _, ok := findSkill(skills, "SQL"); !ok {
		t.Error("SQL not extracted")
	}
}

func TestExtractEmptyText(t *testing.T) {
	e := newExtractor(t)

	for _, text := range []string{"", "   ", "\n\t"} {
		got := e.Extract(text, nil)
		if got == nil {
			t.Errorf("Extract(%q) = nil, want empty slice", text)
		}
		if len(got) != 0 {
			t.Errorf("Extract(%q) returned %d skills, want 0", text, len(got))
		}
	}
}

func TestExtractSortedByConfidence(t *testing.T) {
	e := newExtractor(t)

	text := "Proficient in python. Also used Git.\nSkills: reactjs"
	skills := e.Extract(text, nil)
	for i := 1; i < len(skills); i++ {
		if skills[i-1].Confidence < skills[i].Confidence {
			t.Fatalf("skills out of order: %v", skills)
		}
	}
}

func TestExtractIdempotent(t *testing.T) {
	e := newExtractor(t)

	text := "Experienced in Python, React and SQL."
	first := e.Extract(text, nil)

	var names []string
	for _, s := range first {
		names = append(names, s.Name)
	}
	second := e.Extract(text, names)
	if len(second) != 0 {
		t.Errorf("re-extraction with owned skills returned %d skills, want 0", len(second))
	}
}

func TestExtractRoundTrip(t *testing.T) {
	e := newExtractor(t)

	first := e.Extract("Experienced in Python, React and SQL.", nil)
	if len(first) == 0 {
		t.Fatal("no skills extracted from seed text")
	}

	var names []string
	for _, s := range first {
		names = append(names, s.Name)
	}

	// Feeding the extracted names back as plain text reproduces the
	// same skill set.
	second := e.Extract(strings.Join(names, ", "), nil)
	got := map[string]bool{}
	for _, s := range second {
		got[s.Name] = true
	}
	if len(got) != len(names) {
		t.Fatalf("round trip extracted %d skills, want %d: %v", len(got), len(names), second)
	}
	for _, name := range names {
		if !got[name] {
			t.Errorf("round trip lost %q", name)
		}
	}
}

func TestStructuralCandidates(t *testing.T) {
	text := "Skills: Go, a, " + strings.Repeat("x", 60) + "\n• Terraform"
	got := structuralCandidates(text)

	want := map[string]bool{}
	for _, c := range got {
		want[c] = true
	}
	if want["a"] {
		t.Error("kept a candidate at or below the minimum length")
	}
	if want[strings.Repeat("x", 60)] {
		t.Error("kept a candidate above the maximum length")
	}
	if !want["Terraform"] {
		t.Errorf("bullet candidate missing, got %v", got)
	}
}

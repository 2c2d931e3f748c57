package profile

import (
	"errors"
	"testing"
	"time"

	"github.com/kalambet/careersync/internal/extract"
	"github.com/kalambet/careersync/internal/storage"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

// countingStore wraps storage.Store to observe read traffic.
type countingStore struct {
	*storage.Store
	reads int
}

func (c *countingStore) GetProfileSkills() ([]storage.ProfileSkill, error) {
	c.reads++
	return c.Store.GetProfileSkills()
}

func newTestManager(t *testing.T) (*Manager, *countingStore, *fakeClock) {
	t.Helper()
	s, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("storage.Open(:memory:) error: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	cs := &countingStore{Store: s}
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewManagerWithClock(cs, clock, time.Minute), cs, clock
}

func skillNames(t *testing.T, m *Manager) []string {
	t.Helper()
	names, err := m.SkillNames()
	if err != nil {
		t.Fatalf("SkillNames() error: %v", err)
	}
	return names
}

func TestAddSkillPreservesOrder(t *testing.T) {
	m, _, _ := newTestManager(t)

	for _, name := range []string{"Python", "React", "SQL"} {
		if err := m.AddSkill(extract.Skill{Name: name, Confidence: 0.7}); err != nil {
			t.Fatalf("AddSkill(%s) error: %v", name, err)
		}
	}

	got := skillNames(t, m)
	want := []string{"Python", "React", "SQL"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("skill[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAddSkillDuplicateIsNoop(t *testing.T) {
	m, _, _ := newTestManager(t)

	first := extract.Skill{Name: "Python", Category: "programming_languages", Confidence: 0.9}
	if err := m.AddSkill(first); err != nil {
		t.Fatalf("AddSkill() error: %v", err)
	}
	// Same name again, different confidence: must not replace or error.
	if err := m.AddSkill(extract.Skill{Name: "Python", Confidence: 0.6}); err != nil {
		t.Fatalf("duplicate AddSkill() error: %v", err)
	}

	skills, err := m.Skills()
	if err != nil {
		t.Fatalf("Skills() error: %v", err)
	}
	if len(skills) != 1 {
		t.Fatalf("got %d skills, want 1", len(skills))
	}
	if skills[0].Confidence != 0.9 {
		t.Errorf("confidence = %v, want the original 0.9", skills[0].Confidence)
	}
}

func TestAddSkillEmptyName(t *testing.T) {
	m, _, _ := newTestManager(t)
	if err := m.AddSkill(extract.Skill{Name: "   "}); err == nil {
		t.Error("AddSkill with blank name succeeded, want error")
	}
}

func TestAddSkillsMerge(t *testing.T) {
	m, _, _ := newTestManager(t)

	if err := m.AddSkill(extract.Skill{Name: "Python", Confidence: 0.7}); err != nil {
		t.Fatalf("AddSkill() error: %v", err)
	}

	added, err := m.AddSkills([]extract.Skill{
		{Name: "Python", Confidence: 0.6},
		{Name: "React", Confidence: 0.6},
		{Name: "SQL", Confidence: 0.7},
	})
	if err != nil {
		t.Fatalf("AddSkills() error: %v", err)
	}
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}

	got := skillNames(t, m)
	if len(got) != 3 || got[0] != "Python" || got[1] != "React" || got[2] != "SQL" {
		t.Errorf("skills = %v, want [Python React SQL]", got)
	}
}

func TestRemoveSkill(t *testing.T) {
	m, _, _ := newTestManager(t)

	for _, name := range []string{"Python", "React"} {
		if err := m.AddSkill(extract.Skill{Name: name}); err != nil {
			t.Fatalf("AddSkill(%s) error: %v", name, err)
		}
	}
	if err := m.RemoveSkill("Python"); err != nil {
		t.Fatalf("RemoveSkill() error: %v", err)
	}

	got := skillNames(t, m)
	if len(got) != 1 || got[0] != "React" {
		t.Errorf("skills = %v, want [React]", got)
	}

	if err := m.RemoveSkill("Python"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("RemoveSkill(missing) error = %v, want ErrNotFound", err)
	}
}

func TestClearSkills(t *testing.T) {
	m, _, _ := newTestManager(t)

	if err := m.AddSkill(extract.Skill{Name: "Python"}); err != nil {
		t.Fatalf("AddSkill() error: %v", err)
	}
	if err := m.ClearSkills(); err != nil {
		t.Fatalf("ClearSkills() error: %v", err)
	}
	if got := skillNames(t, m); len(got) != 0 {
		t.Errorf("skills after clear = %v, want none", got)
	}
}

func TestSkillsCache(t *testing.T) {
	m, cs, clock := newTestManager(t)

	if err := m.AddSkill(extract.Skill{Name: "Python"}); err != nil {
		t.Fatalf("AddSkill() error: %v", err)
	}

	reads := cs.reads
	if _, err := m.Skills(); err != nil {
		t.Fatalf("Skills() error: %v", err)
	}
	if _, err := m.Skills(); err != nil {
		t.Fatalf("Skills() error: %v", err)
	}
	if cs.reads != reads {
		t.Errorf("cached reads hit the store %d extra times", cs.reads-reads)
	}

	clock.advance(2 * time.Minute)
	if _, err := m.Skills(); err != nil {
		t.Fatalf("Skills() after TTL error: %v", err)
	}
	if cs.reads != reads+1 {
		t.Errorf("expired cache did not reload from the store")
	}
}

func TestJobPreference(t *testing.T) {
	m, _, _ := newTestManager(t)

	got, err := m.JobPreference()
	if err != nil {
		t.Fatalf("JobPreference() error: %v", err)
	}
	if got != "" {
		t.Errorf("unset preference = %q, want empty", got)
	}

	if err := m.SetJobPreference("backend"); err != nil {
		t.Fatalf("SetJobPreference() error: %v", err)
	}
	got, err = m.JobPreference()
	if err != nil {
		t.Fatalf("JobPreference() error: %v", err)
	}
	if got != "backend" {
		t.Errorf("preference = %q, want %q", got, "backend")
	}
}

func TestSkillsReturnsCopy(t *testing.T) {
	m, _, _ := newTestManager(t)

	if err := m.AddSkill(extract.Skill{Name: "Python"}); err != nil {
		t.Fatalf("AddSkill() error: %v", err)
	}
	skills, err := m.Skills()
	if err != nil {
		t.Fatalf("Skills() error: %v", err)
	}
	skills[0].Name = "mutated"

	got := skillNames(t, m)
	if got[0] != "Python" {
		t.Error("mutating the returned slice leaked into the cache")
	}
}

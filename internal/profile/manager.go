// Package profile manages the persisted user skill set and job
// preference that feed occupation matching.
package profile

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kalambet/careersync/internal/extract"
	"github.com/kalambet/careersync/internal/storage"
)

// ProfileStore defines the storage operations the Manager needs.
// Implemented by storage.Store.
type ProfileStore interface {
	ReplaceProfileSkills(skills []storage.ProfileSkill) error
	GetProfileSkills() ([]storage.ProfileSkill, error)
	SetProfileKey(key, value string) error
	GetProfileKey(key string) (string, error)
}

const jobPreferenceKey = "job_preference"

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Manager provides cached, ordered access to the user skill set stored
// in SQLite. Skill order is insertion order; it survives restarts.
type Manager struct {
	store ProfileStore
	clock Clock
	ttl   time.Duration

	mu       sync.RWMutex
	cached   []extract.Skill
	cachedAt time.Time
}

// NewManager creates a Manager with a 60-second cache TTL.
func NewManager(store ProfileStore) *Manager {
	return &Manager{
		store: store,
		clock: realClock{},
		ttl:   60 * time.Second,
	}
}

// NewManagerWithClock creates a Manager with a custom clock (for testing).
func NewManagerWithClock(store ProfileStore, clock Clock, ttl time.Duration) *Manager {
	return &Manager{
		store: store,
		clock: clock,
		ttl:   ttl,
	}
}

// Skills returns the persisted skill list in insertion order.
func (m *Manager) Skills() ([]extract.Skill, error) {
	m.mu.RLock()
	if m.cached != nil && m.clock.Now().Before(m.cachedAt.Add(m.ttl)) {
		skills := copySkills(m.cached)
		m.mu.RUnlock()
		return skills, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.skillsLocked()
}

// SkillNames returns just the names, in the same order as Skills.
func (m *Manager) SkillNames() ([]string, error) {
	skills, err := m.Skills()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(skills))
	for i, s := range skills {
		names[i] = s.Name
	}
	return names, nil
}

// AddSkill appends a skill to the profile. Adding a name that is
// already present (exact match) is a no-op and not an error.
func (m *Manager) AddSkill(skill extract.Skill) error {
	if strings.TrimSpace(skill.Name) == "" {
		return fmt.Errorf("adding profile skill: empty name")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	skills, err := m.skillsLocked()
	if err != nil {
		return err
	}
	for _, s := range skills {
		if s.Name == skill.Name {
			return nil
		}
	}
	return m.replaceLocked(append(skills, skill))
}

// AddSkills merges extracted skills into the profile in one store
// round-trip, skipping names already present. Returns how many were
// actually added.
func (m *Manager) AddSkills(skills []extract.Skill) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, err := m.skillsLocked()
	if err != nil {
		return 0, err
	}
	have := make(map[string]struct{}, len(current))
	for _, s := range current {
		have[s.Name] = struct{}{}
	}

	added := 0
	for _, skill := range skills {
		if strings.TrimSpace(skill.Name) == "" {
			continue
		}
		if _, ok := have[skill.Name]; ok {
			continue
		}
		have[skill.Name] = struct{}{}
		current = append(current, skill)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	if err := m.replaceLocked(current); err != nil {
		return 0, err
	}
	return added, nil
}

// RemoveSkill removes a skill by exact name.
func (m *Manager) RemoveSkill(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	skills, err := m.skillsLocked()
	if err != nil {
		return err
	}
	kept := skills[:0]
	found := false
	for _, s := range skills {
		if s.Name == name {
			found = true
			continue
		}
		kept = append(kept, s)
	}
	if !found {
		return fmt.Errorf("removing profile skill %q: %w", name, storage.ErrNotFound)
	}
	return m.replaceLocked(kept)
}

// ClearSkills removes every persisted skill.
func (m *Manager) ClearSkills() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replaceLocked(nil)
}

// JobPreference returns the stored job preference, or "" when none is set.
func (m *Manager) JobPreference() (string, error) {
	v, err := m.store.GetProfileKey(jobPreferenceKey)
	if err == storage.ErrNotFound {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading job preference: %w", err)
	}
	return v, nil
}

// SetJobPreference persists the job preference string.
func (m *Manager) SetJobPreference(pref string) error {
	if err := m.store.SetProfileKey(jobPreferenceKey, pref); err != nil {
		return fmt.Errorf("setting job preference: %w", err)
	}
	return nil
}

// skillsLocked loads skills through the cache. Callers hold mu.
func (m *Manager) skillsLocked() ([]extract.Skill, error) {
	if m.cached != nil && m.clock.Now().Before(m.cachedAt.Add(m.ttl)) {
		return copySkills(m.cached), nil
	}
	rows, err := m.store.GetProfileSkills()
	if err != nil {
		return nil, fmt.Errorf("loading profile skills: %w", err)
	}
	skills := make([]extract.Skill, len(rows))
	for i, r := range rows {
		skills[i] = extract.Skill{Name: r.Name, Category: r.Category, Confidence: r.Confidence}
	}
	m.cached = skills
	m.cachedAt = m.clock.Now()
	return copySkills(skills), nil
}

// replaceLocked persists the full list and refreshes the cache.
// Callers hold mu.
func (m *Manager) replaceLocked(skills []extract.Skill) error {
	rows := make([]storage.ProfileSkill, len(skills))
	for i, s := range skills {
		rows[i] = storage.ProfileSkill{Position: i, Name: s.Name, Category: s.Category, Confidence: s.Confidence}
	}
	if err := m.store.ReplaceProfileSkills(rows); err != nil {
		return fmt.Errorf("persisting profile skills: %w", err)
	}
	m.cached = copySkills(skills)
	m.cachedAt = m.clock.Now()
	return nil
}

func copySkills(skills []extract.Skill) []extract.Skill {
	out := make([]extract.Skill, len(skills))
	copy(out, skills)
	return out
}

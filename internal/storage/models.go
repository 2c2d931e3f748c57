package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Session is one matching run: the skills that went in and the matches
// that came out, kept so results can be revisited without rescoring.
type Session struct {
	ID            string
	CreatedAt     time.Time
	JobPreference string
	SkillsJSON    string // JSON array of extracted skills stored as text
	MatchesJSON   string // JSON array of occupation matches stored as text
}

// ProfileSkill is one persisted user skill. Position preserves the
// order skills were added in.
type ProfileSkill struct {
	Position   int
	Name       string
	Category   string
	Confidence float64
}

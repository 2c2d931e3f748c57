// Package recommend maps missing skills to courses from a
// keyword-indexed catalog.
package recommend

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

const (
	maxRecommendations = 6
	fallbackCount      = 4
)

// Course is a single catalog entry.
type Course struct {
	Title       string  `json:"title"`
	Provider    string  `json:"provider"`
	Rating      float64 `json:"rating"`
	Students    int     `json:"students"`
	Duration    string  `json:"duration"`
	Level       string  `json:"level"`
	URL         string  `json:"url"`
	Price       string  `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image,omitempty"`
}

// CatalogEntry holds the courses registered under one lookup keyword.
type CatalogEntry struct {
	Keyword string   `json:"keyword"`
	Courses []Course `json:"courses"`
}

//go:embed data/courses.json
var courseData []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Catalog is an ordered keyword index of courses.
type Catalog struct {
	entries []CatalogEntry
}

// New builds a catalog over the given entries, keeping their order.
func New(entries []CatalogEntry) *Catalog {
	return &Catalog{entries: entries}
}

// Default returns the embedded course catalog.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		var entries []CatalogEntry
		if err := json.Unmarshal(courseData, &entries); err != nil {
			defaultErr = fmt.Errorf("decode course catalog: %w", err)
			return
		}
		defaultCatalog = New(entries)
	})
	return defaultCatalog, defaultErr
}

// Entries returns the catalog in its stored order.
func (c *Catalog) Entries() []CatalogEntry {
	return c.entries
}

// Recommend maps missing skills to courses. A skill hits a keyword when
// either contains the other, case-insensitive; every course under a hit
// keyword is appended, duplicates included. When nothing hits, the
// first courses of the catalog are returned instead. The result is
// capped at six courses.
func (c *Catalog) Recommend(missingSkills []string) []Course {
	courses := make([]Course, 0, maxRecommendations)
	for _, skill := range missingSkills {
		needle := strings.ToLower(skill)
		for _, entry := range c.entries {
			if strings.Contains(needle, entry.Keyword) || strings.Contains(entry.Keyword, needle) {
				courses = append(courses, entry.Courses...)
			}
		}
	}
	if len(courses) == 0 {
		for _, entry := range c.entries {
			courses = append(courses, entry.Courses...)
			if len(courses) >= fallbackCount {
				break
			}
		}
		if len(courses) > fallbackCount {
			courses = courses[:fallbackCount]
		}
	}
	if len(courses) > maxRecommendations {
		courses = courses[:maxRecommendations]
	}
	return courses
}

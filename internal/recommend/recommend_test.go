package recommend

import (
	"strings"
	"testing"
)

func TestRecommendExactKeyword(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}

	got := c.Recommend([]string{"react"})
	if len(got) == 0 {
		t.Fatal("no recommendations for react")
	}
	if !strings.Contains(got[0].Title, "React") {
		t.Errorf("first course = %q, want a React course", got[0].Title)
	}
}

func TestRecommendSubstringKeyword(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}

	exact := c.Recommend([]string{"react"})
	fuzzy := c.Recommend([]string{"reactjs"})
	if len(fuzzy) != len(exact) {
		t.Fatalf("reactjs returned %d courses, react returned %d", len(fuzzy), len(exact))
	}
	for i := range exact {
		if fuzzy[i].Title != exact[i].Title {
			t.Errorf("course %d: %q vs %q", i, fuzzy[i].Title, exact[i].Title)
		}
	}
}

func TestRecommendKeepsDuplicates(t *testing.T) {
	c := New([]CatalogEntry{
		{Keyword: "python", Courses: []Course{{Title: "Python 101"}}},
	})

	// Two missing skills that both hit the same keyword; the course is
	// appended once per hit.
	got := c.Recommend([]string{"Python", "python scripting"})
	if len(got) != 2 {
		t.Fatalf("got %d courses, want 2", len(got))
	}
	if got[0].Title != got[1].Title {
		t.Errorf("expected the same course twice, got %q and %q", got[0].Title, got[1].Title)
	}
}

func TestRecommendFallback(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}

	got := c.Recommend([]string{"underwater basket weaving"})
	if len(got) != 4 {
		t.Fatalf("fallback returned %d courses, want 4", len(got))
	}

	var firstFour []Course
	for _, entry := range c.Entries() {
		firstFour = append(firstFour, entry.Courses...)
		if len(firstFour) >= 4 {
			break
		}
	}
	for i := 0; i < 4; i++ {
		if got[i].Title != firstFour[i].Title {
			t.Errorf("fallback course %d = %q, want %q", i, got[i].Title, firstFour[i].Title)
		}
	}
}

func TestRecommendEmptyMissing(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	if got := c.Recommend(nil); len(got) != 4 {
		t.Errorf("Recommend(nil) returned %d courses, want the 4 fallback courses", len(got))
	}
}

func TestRecommendCap(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}

	// Plenty of hits across many keywords; result must stay capped.
	missing := []string{"python", "javascript", "react", "sql", "aws", "docker", "kubernetes", "machine learning"}
	got := c.Recommend(missing)
	if len(got) != 6 {
		t.Errorf("got %d courses, want 6", len(got))
	}
}

func TestRecommendCatalogIntegrity(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	for _, entry := range c.Entries() {
		if entry.Keyword != strings.ToLower(entry.Keyword) {
			t.Errorf("keyword %q is not lower-case", entry.Keyword)
		}
		if len(entry.Courses) == 0 {
			t.Errorf("keyword %q has no courses", entry.Keyword)
		}
		for _, course := range entry.Courses {
			if course.Title == "" || course.Provider == "" || course.URL == "" {
				t.Errorf("incomplete course under %q: %+v", entry.Keyword, course)
			}
		}
	}
}

package taxonomy

import "testing"

func TestDefault(t *testing.T) {
	tax, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	if got := len(tax.Categories()); got != 12 {
		t.Errorf("got %d categories, want 12", got)
	}
	if got := len(tax.Flatten()); got == 0 {
		t.Fatal("flattened taxonomy is empty")
	}

	again, err := Default()
	if err != nil {
		t.Fatalf("second Default() error: %v", err)
	}
	if again != tax {
		t.Error("Default() did not return the same instance")
	}
}

func TestCategoryOf(t *testing.T) {
	tax := New([]Category{
		{Name: "programming_languages", Skills: []string{"Python", "Swift"}},
		{Name: "mobile_development", Skills: []string{"Swift", "Flutter"}},
	})

	tests := []struct {
		skill    string
		want     string
		wantOK   bool
	}{
		{"Python", "programming_languages", true},
		{"python", "programming_languages", true},
		{"Swift", "mobile_development", true}, // last category wins
		{"Flutter", "mobile_development", true},
		{"Cooking", "", false},
	}
	for _, tt := range tests {
		got, ok := tax.CategoryOf(tt.skill)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("CategoryOf(%q) = (%q, %v), want (%q, %v)", tt.skill, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFlattenKeepsDuplicates(t *testing.T) {
	tax := New([]Category{
		{Name: "a", Skills: []string{"Swift"}},
		{Name: "b", Skills: []string{"Swift"}},
	})
	if got := len(tax.Flatten()); got != 2 {
		t.Errorf("Flatten() length = %d, want 2", got)
	}
}

func TestResolve(t *testing.T) {
	tax, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}

	tests := []struct {
		candidate string
		want      string
		wantOK    bool
	}{
		{"python", "Python", true},
		{"  Python  ", "Python", true},
		{"reactjs", "React", true},      // candidate contains canonical
		{"Machine Lear", "Machine Learning", true}, // canonical contains candidate
		{"go", "Go", true},              // short canonicals still resolve exactly
		{"underwater basket weaving", "", false}, // "r" inside prose is not a hit
		{"delivered quarterly reports", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := tax.Resolve(tt.candidate)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Resolve(%q) = (%q, %v), want (%q, %v)", tt.candidate, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSuggest(t *testing.T) {
	tax, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}

	got := tax.Suggest("java", nil, 8)
	if len(got) == 0 || len(got) > 8 {
		t.Fatalf("Suggest(java) returned %d results, want 1..8", len(got))
	}
	for _, s := range got {
		if s != "Java" && s != "JavaScript" {
			t.Errorf("Suggest(java) returned %q", s)
		}
	}

	excluded := tax.Suggest("java", []string{"Java"}, 8)
	for _, s := range excluded {
		if s == "Java" {
			t.Error("Suggest did not honor exclude list")
		}
	}

	if got := tax.Suggest("python", nil, 0); got != nil {
		t.Errorf("Suggest with limit 0 = %v, want nil", got)
	}

	all := tax.Suggest("", nil, 8)
	if len(all) != 8 {
		t.Errorf("Suggest with empty query returned %d results, want 8", len(all))
	}
}

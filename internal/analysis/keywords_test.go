package analysis

import (
	"os"
	"path/filepath"
	"testing"
)

func TestContainsAnySubstringMatch(t *testing.T) {
	// Matching is plain substring containment: "fix" matches inside
	// "prefix". This keeps the detector simple and errs toward flagging.
	keywords := []string{"fix"}

	if !containsAny("add url prefix handling", keywords) {
		t.Error("expected substring match inside 'prefix'")
	}
	if !containsAny("fix the parser", keywords) {
		t.Error("expected direct match")
	}
	if containsAny("rework the parser", keywords) {
		t.Error("unexpected match")
	}
}

func TestDefaultKeywords(t *testing.T) {
	keywords := DefaultKeywords()

	if len(keywords.Minimizing) == 0 || len(keywords.Defensive) == 0 ||
		len(keywords.Perfectionist) == 0 || len(keywords.Vague) == 0 {
		t.Fatal("default keyword sets must all be non-empty")
	}
	if !containsAny("just a tweak", keywords.Minimizing) {
		t.Error("'just' should be a minimizing keyword")
	}
	if !containsAny("update stuff", keywords.Vague) {
		t.Error("'update' should be a vague keyword")
	}
}

func TestLoadKeywordsOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keywords.yaml")

	content := []byte("minimizing:\n  - trivial\n  - nothingburger\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write keywords file: %v", err)
	}

	keywords, err := LoadKeywords(path)
	if err != nil {
		t.Fatalf("LoadKeywords failed: %v", err)
	}

	if len(keywords.Minimizing) != 2 || keywords.Minimizing[0] != "trivial" {
		t.Errorf("override not applied: %v", keywords.Minimizing)
	}
	// Categories absent from the file keep their defaults.
	if len(keywords.Vague) == 0 {
		t.Error("unspecified categories should fall back to defaults")
	}
}

func TestLoadKeywordsMissingFile(t *testing.T) {
	if _, err := LoadKeywords(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

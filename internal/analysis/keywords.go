package analysis

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// KeywordSets holds the fixed vocabulary the language detectors match
// against. Matching is case-insensitive substring matching, not tokenized:
// "fix" matches inside "prefix". That imprecision is deliberate and kept;
// switching to token matching would change detection results.
type KeywordSets struct {
	Minimizing    []string `yaml:"minimizing"`
	Defensive     []string `yaml:"defensive"`
	Perfectionist []string `yaml:"perfectionist"`
	Vague         []string `yaml:"vague"`
}

// DefaultKeywords returns the built-in keyword sets.
func DefaultKeywords() KeywordSets {
	return KeywordSets{
		Minimizing:    []string{"just", "quick", "small", "minor", "tiny", "little"},
		Defensive:     []string{"fix", "oops", "my bad", "sorry", "mistake", "bug"},
		Perfectionist: []string{"perfect", "complete", "final", "done", "finished"},
		Vague:         []string{"update", "change", "stuff", "things", "misc"},
	}
}

// LoadKeywords reads keyword-set overrides from a YAML file. Categories
// missing from the file keep their defaults.
func LoadKeywords(path string) (KeywordSets, error) {
	sets := DefaultKeywords()
	if path == "" {
		return sets, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return sets, fmt.Errorf("failed to read keywords file: %w", err)
	}

	var override KeywordSets
	if err := yaml.Unmarshal(data, &override); err != nil {
		return sets, fmt.Errorf("failed to parse keywords file: %w", err)
	}

	if len(override.Minimizing) > 0 {
		sets.Minimizing = override.Minimizing
	}
	if len(override.Defensive) > 0 {
		sets.Defensive = override.Defensive
	}
	if len(override.Perfectionist) > 0 {
		sets.Perfectionist = override.Perfectionist
	}
	if len(override.Vague) > 0 {
		sets.Vague = override.Vague
	}
	return sets, nil
}

// containsAny reports whether any keyword occurs as a substring of msg.
// msg must already be lowercased.
func containsAny(msg string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

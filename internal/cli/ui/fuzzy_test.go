package ui

import (
	"reflect"
	"strings"
	"testing"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1       string
		s2       string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"Person", "Prson", 1},
		{"Sensor", "Censor", 1},
		{"flaw", "lawn", 2},
		// Distances count runes, not bytes.
		{"café", "cafe", 1},
		{"héllo", "hello", 1},
	}

	for _, tt := range tests {
		t.Run(tt.s1+"_"+tt.s2, func(t *testing.T) {
			result := LevenshteinDistance(tt.s1, tt.s2)
			if result != tt.expected {
				t.Errorf("LevenshteinDistance(%q, %q) = %d; want %d", tt.s1, tt.s2, result, tt.expected)
			}
		})
	}
}

func TestLevenshteinDistanceSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"Person", "Prson"},
		{"Address", "Adress"},
		{"a", "abcdef"},
	}
	for _, pair := range pairs {
		forward := LevenshteinDistance(pair[0], pair[1])
		backward := LevenshteinDistance(pair[1], pair[0])
		if forward != backward {
			t.Errorf("Distance not symmetric for %q/%q: %d vs %d", pair[0], pair[1], forward, backward)
		}
	}
}

func TestFindSimilar(t *testing.T) {
	candidates := []string{"Person", "Address", "Company", "Contact"}

	tests := []struct {
		name     string
		target   string
		opts     *FuzzyMatchOptions
		expected []string
	}{
		{
			name:     "exact match",
			target:   "Person",
			expected: []string{"Person"},
		},
		{
			name:     "one character off",
			target:   "Prson",
			expected: []string{"Person"},
		},
		{
			name:     "case insensitive by default",
			target:   "person",
			expected: []string{"Person"},
		},
		{
			name:   "case sensitive",
			target: "person",
			opts: &FuzzyMatchOptions{
				MaxDistance:    1,
				MaxSuggestions: 3,
				CaseSensitive:  true,
			},
			expected: []string{"Person"},
		},
		{
			name:     "nothing close enough",
			target:   "XYZ",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindSimilar(tt.target, candidates, tt.opts)
			if len(result) != len(tt.expected) {
				t.Fatalf("FindSimilar(%q) = %v; want %v", tt.target, result, tt.expected)
			}
			if len(result) > 0 && !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("FindSimilar(%q) = %v; want %v", tt.target, result, tt.expected)
			}
		})
	}
}

func TestFindSimilarOrdersByDistance(t *testing.T) {
	// Reading is 1 edit away, Heading is 2, the rest further.
	candidates := []string{"Display", "Heading", "Reading", "Updated"}

	result := FindSimilar("Readng", candidates, &FuzzyMatchOptions{
		MaxDistance:    2,
		MaxSuggestions: 5,
	})

	if len(result) != 2 {
		t.Fatalf("Expected 2 matches, got %v", result)
	}
	if result[0] != "Reading" || result[1] != "Heading" {
		t.Errorf("Expected closest-first ordering [Reading Heading], got %v", result)
	}
}

func TestFindSimilarKeepsGivenOrderOnTies(t *testing.T) {
	// Both candidates are one substitution away from the target.
	candidates := []string{"Sent", "Bend"}

	result := FindSimilar("Send", candidates, &FuzzyMatchOptions{
		MaxDistance:    1,
		MaxSuggestions: 2,
	})

	if !reflect.DeepEqual(result, []string{"Sent", "Bend"}) {
		t.Errorf("Tied candidates should keep their given order, got %v", result)
	}
}

func TestFindSimilarMaxSuggestions(t *testing.T) {
	candidates := []string{"Person", "Address", "Company", "Contact"}

	// A generous distance matches everything; the limit still applies and
	// the exact match sorts first.
	result := FindSimilar("Person", candidates, &FuzzyMatchOptions{
		MaxDistance:    10,
		MaxSuggestions: 2,
	})

	if len(result) != 2 {
		t.Fatalf("Expected 2 suggestions, got %d: %v", len(result), result)
	}
	if result[0] != "Person" {
		t.Errorf("Expected closest match 'Person' first, got %q", result[0])
	}
}

func TestFindSimilarSkipsFarLengths(t *testing.T) {
	candidates := []string{"X", strings.Repeat("Observable", 4)}

	result := FindSimilar("Xy", candidates, &FuzzyMatchOptions{
		MaxDistance:    2,
		MaxSuggestions: 3,
	})

	if !reflect.DeepEqual(result, []string{"X"}) {
		t.Errorf("Expected only the short candidate, got %v", result)
	}
}

func TestFindSimilarEmptyCandidates(t *testing.T) {
	if result := FindSimilar("test", nil, nil); len(result) != 0 {
		t.Errorf("Expected no matches for empty candidates, got %v", result)
	}
}

func TestFindSimilarEmptyTarget(t *testing.T) {
	// An empty target is one deletion per rune away from each candidate.
	result := FindSimilar("", []string{"AB", "Beacon"}, &FuzzyMatchOptions{
		MaxDistance:    2,
		MaxSuggestions: 3,
	})

	if !reflect.DeepEqual(result, []string{"AB"}) {
		t.Errorf("Expected only the two-rune candidate, got %v", result)
	}
}

func TestFindBestMatch(t *testing.T) {
	candidates := []string{"Person", "Address", "Company", "Contact"}

	tests := []struct {
		target   string
		expected string
	}{
		{"Prson", "Person"},
		{"Adress", "Address"},
		{"Cmpany", "Company"},
		{"XYZ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			result := FindBestMatch(tt.target, candidates, nil)
			if result != tt.expected {
				t.Errorf("FindBestMatch(%q) = %q; want %q", tt.target, result, tt.expected)
			}
		})
	}
}

package ui

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxDistance bounds how many edits away a candidate may be
	DefaultMaxDistance = 3
	// DefaultMaxSuggestions bounds how many candidates FindSimilar returns
	DefaultMaxSuggestions = 3
)

// FuzzyMatchOptions configures FindSimilar
type FuzzyMatchOptions struct {
	MaxDistance    int  // Maximum edit distance to accept (default: 3)
	MaxSuggestions int  // Maximum number of results (default: 3)
	CaseSensitive  bool // Whether matching is case-sensitive (default: false)
}

func (o *FuzzyMatchOptions) withDefaults() FuzzyMatchOptions {
	var cfg FuzzyMatchOptions
	if o != nil {
		cfg = *o
	}
	if cfg.MaxDistance <= 0 {
		cfg.MaxDistance = DefaultMaxDistance
	}
	if cfg.MaxSuggestions <= 0 {
		cfg.MaxSuggestions = DefaultMaxSuggestions
	}
	return cfg
}

// FindSimilar returns the candidates within edit distance of target, closest
// first. Ties keep the candidates' given order. This backs the "did you
// mean" hint when a model name does not resolve.
//
// Example:
//
//	FindSimilar("Prson", []string{"Person", "Address"}, nil)
//	// Returns: ["Person"]
func FindSimilar(target string, candidates []string, opts *FuzzyMatchOptions) []string {
	cfg := opts.withDefaults()

	needle := target
	if !cfg.CaseSensitive {
		needle = strings.ToLower(target)
	}
	needleLen := utf8.RuneCountInString(needle)

	type scored struct {
		name     string
		distance int
	}
	var hits []scored

	for _, candidate := range candidates {
		hay := candidate
		if !cfg.CaseSensitive {
			hay = strings.ToLower(candidate)
		}

		// The length difference is a lower bound on the edit distance.
		if diff := utf8.RuneCountInString(hay) - needleLen; diff > cfg.MaxDistance || -diff > cfg.MaxDistance {
			continue
		}
		if d := LevenshteinDistance(needle, hay); d <= cfg.MaxDistance {
			hits = append(hits, scored{name: candidate, distance: d})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].distance < hits[j].distance
	})
	if len(hits) > cfg.MaxSuggestions {
		hits = hits[:cfg.MaxSuggestions]
	}

	result := make([]string, len(hits))
	for i, hit := range hits {
		result[i] = hit.name
	}
	return result
}

// FindBestMatch returns the closest candidate, or an empty string when none
// is within the distance bound.
func FindBestMatch(target string, candidates []string, opts *FuzzyMatchOptions) string {
	if hits := FindSimilar(target, candidates, opts); len(hits) > 0 {
		return hits[0]
	}
	return ""
}

// LevenshteinDistance returns the minimum number of single-rune insertions,
// deletions, and substitutions needed to turn s1 into s2.
//
// Example:
//
//	LevenshteinDistance("kitten", "sitting") // Returns: 3
func LevenshteinDistance(s1, s2 string) int {
	return editDistance([]rune(s1), []rune(s2))
}

// editDistance runs the two-row dynamic program, keeping the shorter input
// on the row axis so memory stays proportional to the shorter string.
func editDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	if len(b) < len(a) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = j
		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[i] = min(
				prev[i]+1,      // deletion
				curr[i-1]+1,    // insertion
				prev[i-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(a)]
}

package tools

import "strings"

// MatchPolicy picks one index from the candidates a fuzzy lookup produced.
// The source system's "first match wins" was observed behavior, not a stated
// ranking decision, so the tie-break is a policy point rather than a
// hardcoded rule.
type MatchPolicy func(descriptors []string, candidates []int) int

// MatchFirst keeps the original behavior: the first candidate encountered.
var MatchFirst MatchPolicy = func(_ []string, candidates []int) int {
	return candidates[0]
}

// MatchShortest prefers the candidate whose descriptor is shortest, on the
// theory that a tighter descriptor is the closer match.
var MatchShortest MatchPolicy = func(descriptors []string, candidates []int) int {
	best := candidates[0]
	for _, i := range candidates[1:] {
		if len(descriptors[i]) < len(descriptors[best]) {
			best = i
		}
	}
	return best
}

// fuzzyIndex finds the item whose descriptor contains query,
// case-insensitively. Returns -1 when nothing matches; ties go to policy.
func fuzzyIndex(descriptors []string, query string, policy MatchPolicy) int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return -1
	}
	var candidates []int
	for i, d := range descriptors {
		if strings.Contains(strings.ToLower(d), q) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return -1
	}
	return policy(descriptors, candidates)
}

package tool

import "strings"

// TitleSimilarity is the Jaccard index of the lowercase whitespace-separated word sets.
// Two empty titles are identical; one empty title shares nothing.
func TitleSimilarity(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)

	switch {
	case len(setA) == 0 && len(setB) == 0:
		return 1.0
	case len(setA) == 0 || len(setB) == 0:
		return 0.0
	}

	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

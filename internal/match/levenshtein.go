package match

// Levenshtein computes the Levenshtein distance (edit distance) between two strings.
// The distance is the minimum number of single-character edits (insertions, deletions,
// or substitutions) required to transform one string into the other.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	if len(a) == 0 {
		return len(b)
	}

	if len(b) == 0 {
		return len(a)
	}

	if len(a) > len(b) {
		a, b = b, a
	}

	// two rows instead of the full matrix
	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)

	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = j

		for i := 1; i <= len(a); i++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
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

// LevenshteinNormalized computes a similarity score between 0 and 1.
// 1.0 means identical strings, 0.0 means completely different.
func LevenshteinNormalized(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}

	maxLen := max(len(b), len(a))

	return 1.0 - float64(Levenshtein(a, b))/float64(maxLen)
}

// NormalizedLevenshteinScore computes the similarity of two identifiers
// after normalizing them.
func NormalizedLevenshteinScore(a, b string) float64 {
	return LevenshteinNormalized(NormalizeIdent(a), NormalizeIdent(b))
}

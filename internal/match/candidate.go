package match

import (
	"sort"
)

// DefaultMinScore is the lowest name score Suggest accepts.
const DefaultMinScore = 0.5

// Candidate is one known name scored against an unknown one.
type Candidate struct {
	Name string
	// NameScore is the normalized Levenshtein similarity (0-1).
	NameScore      float64
	NormalizedName string
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

func (c CandidateList) Len() int      { return len(c) }
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less sorts by score descending, then by name for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].NameScore != c[j].NameScore {
		return c[i].NameScore > c[j].NameScore
	}

	return c[i].Name < c[j].Name
}

// Names returns the candidate names in order.
func (c CandidateList) Names() []string {
	out := make([]string, 0, len(c))
	for _, cand := range c {
		out = append(out, cand.Name)
	}

	return out
}

// RankCandidates scores every known name against target and returns them
// best first.
func RankCandidates(target string, known []string) CandidateList {
	targetNorm := NormalizeIdent(target)
	candidates := make(CandidateList, 0, len(known))

	for _, name := range known {
		norm := NormalizeIdent(name)
		candidates = append(candidates, Candidate{
			Name:           name,
			NameScore:      LevenshteinNormalized(norm, targetNorm),
			NormalizedName: norm,
		})
	}

	sort.Sort(candidates)

	return candidates
}

// Suggest returns up to limit known names similar to target, best first.
// Exact matches are not suggestions and are left out.
func Suggest(target string, known []string, limit int) []string {
	var out []string

	for _, c := range RankCandidates(target, known) {
		if len(out) == limit || c.NameScore < DefaultMinScore {
			break
		}

		if c.Name == target {
			continue
		}

		out = append(out, c.Name)
	}

	return out
}

// Package match provides identifier tokenizing, case conversion for
// generated names, Levenshtein distance, and ranked name suggestions.
//
// Key functions:
//   - NormalizeIdent: normalizes identifiers for fuzzy matching
//   - Snake, Pascal, Kebab: target-language naming
//   - Levenshtein: computes edit distance between strings
//   - RankCandidates, Suggest: "did you mean" candidates for unknown names
package match

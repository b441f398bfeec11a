package common

// IsEmpty returns true if the slice is empty.
func IsEmpty[S ~[]E, E any](s S) bool {
	return len(s) == 0
}

// First returns the first element of the slice and true, or the zero value and false if empty.
func First[S ~[]E, E any](s S) (E, bool) {
	if len(s) == 0 {
		var zero E
		return zero, false
	}

	return s[0], true
}

// Dedupe returns s with later duplicates removed, keeping first-seen order.
func Dedupe[S ~[]E, E comparable](s S) S {
	if len(s) < 2 {
		return s
	}

	seen := make(map[E]struct{}, len(s))
	out := make(S, 0, len(s))

	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}

		seen[v] = struct{}{}
		out = append(out, v)
	}

	return out
}

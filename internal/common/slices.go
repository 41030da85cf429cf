package common

// First returns the first element of s, if any.
func First[S ~[]E, E any](s S) (first E, ok bool) {
	if len(s) > 0 {
		first, ok = s[0], true
	}

	return first, ok
}

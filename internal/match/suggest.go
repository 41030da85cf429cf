package match

// MinSimilarity is the lowest score Suggest accepts.
const MinSimilarity = 0.6

// Suggest returns the candidate most similar to name, provided it scores at
// least MinSimilarity. Ties go to the earlier candidate.
func Suggest(name string, candidates []string) (string, bool) {
	var (
		best  string
		score = MinSimilarity
		found bool
	)

	for _, c := range candidates {
		s := Similarity(name, c)
		if s > score || (!found && s == score) {
			best, score, found = c, s, true
		}
	}

	return best, found
}

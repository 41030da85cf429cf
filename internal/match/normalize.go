package match

import (
	"strings"
	"unicode"
)

// Normalize folds an identifier for fuzzy comparison. Separators are dropped
// and letters lower-cased, so "order_id", "OrderID" and "order-id" agree.
func Normalize(s string) string {
	var sb strings.Builder

	sb.Grow(len(s))

	for _, r := range s {
		if isSeparator(r) {
			continue
		}

		sb.WriteRune(unicode.ToLower(r))
	}

	return sb.String()
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}

package common

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// UnknownStr is the String form of out-of-range enum values.
const UnknownStr = "unknown"

// commonInitialisms are rendered fully upper-case by ExportedName.
var commonInitialisms = map[string]bool{
	"ID": true, "UUID": true, "ULID": true, "URL": true, "URI": true,
	"API": true, "HTTP": true, "JSON": true, "SKU": true, "IP": true,
}

// ExportedName converts a schema property name such as "order_id" or
// "customerId" into an exported Go identifier ("OrderID", "CustomerID").
func ExportedName(s string) string {
	var words []string

	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	prev := rune(0)
	for _, r := range s {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.':
			flush()
		case unicode.IsUpper(r) && prev != 0 && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}

		prev = r
	}

	flush()

	var sb strings.Builder

	for _, w := range words {
		upper := strings.ToUpper(w)
		if commonInitialisms[upper] {
			sb.WriteString(upper)
			continue
		}

		first, size := utf8.DecodeRuneInString(w)
		sb.WriteRune(unicode.ToUpper(first))
		sb.WriteString(w[size:])
	}

	return sb.String()
}

// ReceiverName returns the conventional receiver identifier for a type:
// its first letter, lower-cased.
func ReceiverName(typeName string) string {
	first, _ := utf8.DecodeRuneInString(typeName)
	if first == utf8.RuneError || !unicode.IsLetter(first) {
		return "v"
	}

	return string(unicode.ToLower(first))
}

// Package str contains the case conversions used to derive names from Go identifiers.
package str

import "strings"

// Words splits an identifier into its words, acronyms and digit runs are kept together.
// Underscores, dashes and spaces are separators.
func Words(in string) []string {
	var (
		words   []string
		current []byte
	)
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	for i := 0; i < len(in); i++ {
		b := in[i]
		if b == '_' || b == '-' || b == ' ' {
			flush()
			continue
		}
		if len(current) > 0 {
			prev := current[len(current)-1]
			switch {
			case isUpper(b) && (isLower(prev) || isDigit(prev)):
				flush()
			case isUpper(b) && isUpper(prev) && i+1 < len(in) && isLower(in[i+1]):
				// end of an acronym: "XMLHttp" -> "XML", "Http"
				flush()
			case isDigit(b) && !isDigit(prev):
				flush()
			}
		}
		current = append(current, b)
	}
	flush()

	return words
}

// ToScreamingSnakeCase transforms a given string into screaming snake case format
func ToScreamingSnakeCase(in string) string {
	return strings.ToUpper(strings.Join(Words(in), "_"))
}

func isUpper(b byte) bool {
	return 'A' <= b && b <= 'Z'
}

func isLower(b byte) bool {
	return 'a' <= b && b <= 'z'
}

func isDigit(b byte) bool {
	return '0' <= b && b <= '9'
}

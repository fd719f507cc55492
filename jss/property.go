package jss

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormatProperty returns property name as it should appear in the output
// tree: verbatim when dashes is set, camelCased otherwise.
func FormatProperty(prop string, dashes bool) string {
	if dashes {
		return prop
	}
	return CamelCase(prop)
}

// CamelCase joins words of s lowercasing the first one and title casing the
// rest, so "background-color" becomes "backgroundColor" and
// "-webkit-transition" becomes "webkitTransition". Words are separated by
// anything that is not a letter or digit, by lower to upper case transitions
// and by letter/digit boundaries. When s has no words it is returned as is.
func CamelCase(s string) string {
	words := splitWords(s)
	if len(words) == 0 {
		return s
	}

	// casers keep state, they are not shared between calls
	lower, title := cases.Lower(language.Und), cases.Title(language.Und)

	var sb strings.Builder
	sb.Grow(len(s))
	sb.WriteString(lower.String(words[0]))
	for _, w := range words[1:] {
		sb.WriteString(title.String(w))
	}
	return sb.String()
}

func splitWords(s string) []string {
	var (
		words []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(cur) > 0 {
			prev := cur[len(cur)-1]
			switch {
			case unicode.IsDigit(r) != unicode.IsDigit(prev):
				flush()
			case unicode.IsUpper(r) && unicode.IsLower(prev):
				flush()
			case unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				// "XMLHttp" -> "XML", "Http"
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

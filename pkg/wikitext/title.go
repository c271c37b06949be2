package wikitext

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeTitle canonicalizes a page title or link target: underscores
// become spaces, surrounding whitespace is trimmed, inner runs of spaces
// collapse, and the first rune is upper-cased to match title conventions.
func NormalizeTitle(title string) string {
	t := strings.ReplaceAll(title, "_", " ")
	t = strings.Join(strings.Fields(t), " ")
	return upperFirst(t)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

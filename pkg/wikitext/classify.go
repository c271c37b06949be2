package wikitext

import (
	"strings"
	"unicode"

	"github.com/multilgraphwiki/wikigraph/pkg/dump"
	"github.com/multilgraphwiki/wikigraph/pkg/lang"
)

// Class is the classification of one page record.
type Class int

const (
	// ClassContent marks a regular article that contributes text and edges.
	ClassContent Class = iota
	// ClassRedirect marks an alias page pointing at another title.
	ClassRedirect
	// ClassExcluded marks a page filtered out by title pattern
	// (namespace pages, disambiguation pages, listing pages).
	ClassExcluded
)

// Classification carries the class of a record and, for redirects, the
// normalized raw target title.
type Classification struct {
	Class          Class
	RedirectTarget string
}

// Classify decides whether a record is in-scope content, a redirect, or
// excluded. Exclusion is checked before redirect detection: exclusion
// patterns may also match alias pages that must never enter the graph.
func Classify(rec *dump.PageRecord, profile *lang.Profile) Classification {
	if profile.MatchesFilter(rec.Title) {
		return Classification{Class: ClassExcluded}
	}

	body := strings.TrimLeft(rec.Body, " \t\r\n")
	for _, kw := range profile.RedirectKeywords {
		rest, ok := trimKeyword(body, kw)
		if !ok {
			continue
		}
		target := redirectTarget(rest)
		if target == "" {
			target = rec.RedirectHint
		}
		return Classification{
			Class:          ClassRedirect,
			RedirectTarget: NormalizeTitle(target),
		}
	}

	// Some dumps mark redirects with a <redirect/> element even when the
	// body keyword is localized in a form the profile does not list.
	if rec.RedirectHint != "" {
		return Classification{
			Class:          ClassRedirect,
			RedirectTarget: NormalizeTitle(rec.RedirectHint),
		}
	}

	return Classification{Class: ClassContent}
}

// trimKeyword reports whether body starts with the lowercased keyword kw,
// ignoring case, and returns the remainder of body after the matched
// prefix. Lowercasing can change a rune's encoded length (U+0130 maps to
// a one-byte 'i'), so the matched prefix is measured rune by rune against
// body instead of slicing body at len(kw).
func trimKeyword(body, kw string) (string, bool) {
	matched := 0
	for i, r := range body {
		if matched == len(kw) {
			return body[i:], true
		}
		low := string(unicode.ToLower(r))
		if !strings.HasPrefix(kw[matched:], low) {
			return "", false
		}
		matched += len(low)
	}
	if matched == len(kw) {
		return "", true
	}
	return "", false
}

// redirectTarget parses the first wikilink target on the remainder of the
// redirect line.
func redirectTarget(rest string) string {
	if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
		rest = rest[:idx]
	}
	links := ExtractLinks(rest)
	if len(links) == 0 {
		return ""
	}
	return links[0]
}

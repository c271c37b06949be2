package wikitext

import (
	"regexp"
	"strings"

	"github.com/multilgraphwiki/wikigraph/pkg/lang"
)

var (
	refsRe     = regexp.MustCompile(`(?is)<\s*ref\b[^>]*/\s*>|<\s*ref\b[^>]*>.*?<\s*/\s*ref\s*>`)
	commentRe  = regexp.MustCompile(`(?s)<!--.*?-->`)
	extLinkRe  = regexp.MustCompile(`\[(?:https?|ftp)://[^\]]*\]`)
	htmlTagRe  = regexp.MustCompile(`<[^>]+>`)
	headingRe  = regexp.MustCompile(`(?m)^={2,}.*$`)
	listMarkRe = regexp.MustCompile(`(?m)^[*#:;]+\s*`)
	spaceRunRe = regexp.MustCompile(`[ \t]+`)
	blankRunRe = regexp.MustCompile(`\n{3,}`)
)

// Clean turns raw wikitext into plain prose. It never fails: malformed
// markup degrades to literal text, because dumps routinely contain
// unbalanced or tool-generated markup.
func Clean(body string, profile *lang.Profile) string {
	text := StripTemplates(body)
	text = refsRe.ReplaceAllString(text, "")
	text = commentRe.ReplaceAllString(text, "")

	// Lead sections often start with the article name in bold; everything
	// before it is leftover infobox and hatnote debris.
	if idx := strings.Index(text, "'''"); idx > 0 {
		text = text[idx:]
	}

	text = TruncateAtSection(text, profile)

	text = collapseWikiLinks(text)
	text = extLinkRe.ReplaceAllString(text, "")
	text = htmlTagRe.ReplaceAllString(text, "")
	text = headingRe.ReplaceAllString(text, "")
	text = listMarkRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "'''", "")
	text = strings.ReplaceAll(text, "''", "")

	text = spaceRunRe.ReplaceAllString(text, " ")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// TruncateAtSection cuts the body at the first trailing-section heading
// (See also, References, ... localized per language).
func TruncateAtSection(body string, profile *lang.Profile) string {
	if loc := profile.SectionBoundary.FindStringIndex(body); loc != nil {
		return body[:loc[0]]
	}
	return body
}

// StripTemplates removes {{...}} template invocations, including nested
// ones, with a depth-counting scan. A template containing another template
// is removed as one unit. An opening delimiter without a matching close is
// kept as literal text from that point onward.
func StripTemplates(s string) string {
	if !strings.Contains(s, "{{") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	i := 0
	for i < len(s) {
		if strings.HasPrefix(s[i:], "{{") {
			end, ok := matchTemplateEnd(s, i)
			if ok {
				i = end
				continue
			}
			b.WriteString(s[i:])
			break
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// matchTemplateEnd finds the index just past the "}}" closing the template
// opened at start, accounting for nesting.
func matchTemplateEnd(s string, start int) (int, bool) {
	depth := 0
	i := start
	for i+1 < len(s) {
		switch {
		case s[i] == '{' && s[i+1] == '{':
			depth++
			i += 2
		case s[i] == '}' && s[i+1] == '}':
			depth--
			i += 2
			if depth == 0 {
				return i, true
			}
		default:
			i++
		}
	}
	return 0, false
}

// collapseWikiLinks reduces link markup to visible text: [[a|b]] becomes b,
// [[a]] becomes a. Namespace links ([[Category:X]], [[File:X]], interwiki
// links) and bare section links disappear entirely, labels included.
func collapseWikiLinks(text string) string {
	return wikiLinkRe.ReplaceAllStringFunc(text, func(m string) string {
		inner := m[2 : len(m)-2]
		target, label, hasLabel := strings.Cut(inner, "|")
		if strings.Contains(target, ":") {
			return ""
		}
		if hasLabel {
			// Multiple separators leave the visible label last.
			if idx := strings.LastIndexByte(label, '|'); idx >= 0 {
				label = label[idx+1:]
			}
			return label
		}
		if strings.HasPrefix(target, "#") {
			return ""
		}
		return target
	})
}

package wikitext

import (
	"regexp"
	"strings"
)

var wikiLinkRe = regexp.MustCompile(`\[\[([^\[\]]+)\]\]`)

// ExtractLinks scans raw wikitext for internal link markup and returns the
// normalized raw target titles, in order of appearance. It runs over the
// original body, independent of cleaning: links inside sections the cleaner
// truncates are still part of the edge set.
//
// Targets pointing at non-article namespaces are returned as-is; namespace
// filtering happens later, at edge-resolution time.
func ExtractLinks(body string) []string {
	matches := wikiLinkRe.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	targets := make([]string, 0, len(matches))
	for _, m := range matches {
		target := linkTarget(m[1])
		if target == "" {
			continue
		}
		targets = append(targets, target)
	}
	return targets
}

// linkTarget reduces the inside of a [[...]] to its target title: the text
// before any label separator, without a section fragment. Links that point
// only at a section of the same page ("[[#History]]") carry no edge and
// yield "".
func linkTarget(inner string) string {
	if idx := strings.IndexByte(inner, '|'); idx >= 0 {
		inner = inner[:idx]
	}
	if idx := strings.IndexByte(inner, '#'); idx >= 0 {
		inner = inner[:idx]
	}
	return NormalizeTitle(inner)
}

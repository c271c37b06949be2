package graph

import (
	"github.com/multilgraphwiki/wikigraph/pkg/common"
)

// DefaultHopLimit bounds redirect chain walks. Legitimate chains are
// short (double redirects are routinely fixed by bots); anything deeper
// is treated as a cycle.
const DefaultHopLimit = 16

// RedirectMap maps alias titles to their canonical targets. It is total
// and idempotent: every title resolves to exactly one canonical title,
// and resolving twice equals resolving once.
type RedirectMap map[string]string

// Resolve returns the canonical title for the given title, or the title
// itself when it is not a known alias.
func (m RedirectMap) Resolve(title string) string {
	if canonical, ok := m[title]; ok {
		return canonical
	}
	return title
}

// ResolveRedirects turns the accumulated redirect declarations into a
// RedirectMap. Chains are followed up to hopLimit hops with per-walk cycle
// detection; an alias on a cycle (or past the bound) resolves to itself,
// so downstream edge resolution degrades gracefully instead of dropping
// the edge. The cycle count is reported through stats.
func ResolveRedirects(decls []common.RedirectDeclaration, hopLimit int, stats *common.Stats) RedirectMap {
	if hopLimit <= 0 {
		hopLimit = DefaultHopLimit
	}

	hop := make(map[string]string, len(decls))
	for _, d := range decls {
		if d.Alias == "" || d.Target == "" || d.Alias == d.Target {
			continue
		}
		hop[d.Alias] = d.Target
	}

	resolved := make(RedirectMap, len(hop))
	for alias := range hop {
		canonical, cyclic := walk(alias, hop, hopLimit)
		if cyclic {
			canonical = alias
			if stats != nil {
				stats.RedirectCycles++
			}
		}
		resolved[alias] = canonical
	}
	return resolved
}

// walk follows the alias chain starting at alias. It returns the first
// title with no further hop, or cyclic=true when a title repeats within
// the walk or the hop bound is exceeded.
func walk(alias string, hop map[string]string, hopLimit int) (string, bool) {
	visited := map[string]bool{alias: true}
	current := alias
	for i := 0; i < hopLimit; i++ {
		next, ok := hop[current]
		if !ok {
			return current, false
		}
		if visited[next] {
			return "", true
		}
		visited[next] = true
		current = next
	}
	if _, ok := hop[current]; !ok {
		return current, false
	}
	return "", true
}

package graph

import (
	"regexp"

	"github.com/multilgraphwiki/wikigraph/pkg/common"
	"github.com/multilgraphwiki/wikigraph/pkg/lang"
)

// Interlanguage link prefixes ("en:", "de:", ...) point at other wikis,
// never at articles of this dump.
var interLangRe = regexp.MustCompile(`^[a-zA-Z]{2,3}:`)

// Assemble resolves raw edges through the redirect map and produces the
// final graph. An edge survives only when its resolved target is a known
// content title that no filter-out pattern matches; surviving titles get
// dense integer ids in first-appearance order, self-loops are dropped and
// duplicate pairs collapse to one edge. By construction the result has no
// dangling references.
func Assemble(
	contentTitles map[string]bool,
	rawEdges []common.RawEdge,
	redirects RedirectMap,
	profile *lang.Profile,
	stats *common.Stats,
) *common.Graph {
	graph := &common.Graph{
		Nodes: []common.Node{},
		Edges: []common.Edge{},
	}

	ids := make(map[string]int)
	idOf := func(title string) int {
		if id, ok := ids[title]; ok {
			return id
		}
		id := len(graph.Nodes)
		ids[title] = id
		graph.Nodes = append(graph.Nodes, common.Node{ID: id, Title: title})
		return id
	}

	seen := make(map[common.Edge]bool)
	for _, raw := range rawEdges {
		target := redirects.Resolve(raw.Target)

		if interLangRe.MatchString(target) || profile.MatchesFilter(target) {
			stats.EdgesFiltered++
			continue
		}
		if !contentTitles[target] {
			stats.EdgesUnresolved++
			continue
		}

		if raw.Source == target {
			stats.EdgesSelfLoop++
			continue
		}

		edge := common.Edge{Source: idOf(raw.Source), Target: idOf(target)}
		if seen[edge] {
			stats.EdgesDuplicate++
			continue
		}
		seen[edge] = true
		graph.Edges = append(graph.Edges, edge)
		stats.EdgesKept++
	}

	return graph
}

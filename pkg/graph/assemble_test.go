package graph

import (
	"reflect"
	"testing"

	"github.com/multilgraphwiki/wikigraph/pkg/common"
	"github.com/multilgraphwiki/wikigraph/pkg/lang"
)

func enProfile(t *testing.T) *lang.Profile {
	t.Helper()
	settings, err := lang.DefaultSettings()
	if err != nil {
		t.Fatalf("failed to load settings: %v", err)
	}
	profile, err := settings.Profile("EN")
	if err != nil {
		t.Fatalf("failed to load profile: %v", err)
	}
	return profile
}

func titles(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func edges(pairs ...string) []common.RawEdge {
	var out []common.RawEdge
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, common.RawEdge{Source: pairs[i], Target: pairs[i+1]})
	}
	return out
}

func TestAssemble_Basic(t *testing.T) {
	var stats common.Stats
	g := Assemble(
		titles("A", "B", "C"),
		edges("A", "B", "B", "C"),
		RedirectMap{},
		enProfile(t),
		&stats,
	)

	wantNodes := []common.Node{
		{ID: 0, Title: "A"},
		{ID: 1, Title: "B"},
		{ID: 2, Title: "C"},
	}
	if !reflect.DeepEqual(g.Nodes, wantNodes) {
		t.Fatalf("unexpected nodes: %+v", g.Nodes)
	}
	wantEdges := []common.Edge{{Source: 0, Target: 1}, {Source: 1, Target: 2}}
	if !reflect.DeepEqual(g.Edges, wantEdges) {
		t.Fatalf("unexpected edges: %+v", g.Edges)
	}
	if stats.EdgesKept != 2 {
		t.Fatalf("expected 2 edges kept, got %d", stats.EdgesKept)
	}
}

func TestAssemble_ResolvesThroughRedirects(t *testing.T) {
	var stats common.Stats
	g := Assemble(
		titles("A", "New York City"),
		edges("A", "NYC"),
		RedirectMap{"NYC": "New York City"},
		enProfile(t),
		&stats,
	)

	if len(g.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(g.Edges))
	}
	if g.Nodes[g.Edges[0].Target].Title != "New York City" {
		t.Fatalf("expected edge to resolved title, got %q", g.Nodes[g.Edges[0].Target].Title)
	}
}

func TestAssemble_DropsDanglingTargets(t *testing.T) {
	var stats common.Stats
	g := Assemble(
		titles("A"),
		edges("A", "Missing"),
		RedirectMap{},
		enProfile(t),
		&stats,
	)

	if len(g.Edges) != 0 || len(g.Nodes) != 0 {
		t.Fatalf("expected empty graph, got %+v", g)
	}
	if stats.EdgesUnresolved != 1 {
		t.Fatalf("expected 1 unresolved edge, got %d", stats.EdgesUnresolved)
	}
}

func TestAssemble_DropsSelfLoops(t *testing.T) {
	var stats common.Stats
	g := Assemble(
		titles("A", "B"),
		edges("A", "A", "A", "B"),
		RedirectMap{},
		enProfile(t),
		&stats,
	)

	if len(g.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(g.Edges))
	}
	if stats.EdgesSelfLoop != 1 {
		t.Fatalf("expected 1 self-loop dropped, got %d", stats.EdgesSelfLoop)
	}
}

func TestAssemble_SelfLoopViaRedirect(t *testing.T) {
	// A links to an alias of itself; after resolution the edge is a
	// self-loop and must not survive.
	var stats common.Stats
	g := Assemble(
		titles("A", "B"),
		edges("A", "A (alias)", "A", "B"),
		RedirectMap{"A (alias)": "A"},
		enProfile(t),
		&stats,
	)

	if len(g.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(g.Edges))
	}
	if stats.EdgesSelfLoop != 1 {
		t.Fatalf("expected 1 self-loop dropped, got %d", stats.EdgesSelfLoop)
	}
}

func TestAssemble_DeduplicatesEdges(t *testing.T) {
	var stats common.Stats
	g := Assemble(
		titles("A", "B"),
		edges("A", "B", "A", "B", "A", "Alias"),
		RedirectMap{"Alias": "B"},
		enProfile(t),
		&stats,
	)

	if len(g.Edges) != 1 {
		t.Fatalf("expected 1 edge after dedup, got %d", len(g.Edges))
	}
	if stats.EdgesDuplicate != 2 {
		t.Fatalf("expected 2 duplicates dropped, got %d", stats.EdgesDuplicate)
	}
}

func TestAssemble_FiltersInterlanguageTargets(t *testing.T) {
	var stats common.Stats
	g := Assemble(
		titles("A", "B"),
		edges("A", "Fr:Physique", "A", "B"),
		RedirectMap{},
		enProfile(t),
		&stats,
	)

	if len(g.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(g.Edges))
	}
	if stats.EdgesFiltered != 1 {
		t.Fatalf("expected 1 filtered edge, got %d", stats.EdgesFiltered)
	}
}

func TestAssemble_FiltersExcludedTargets(t *testing.T) {
	var stats common.Stats
	g := Assemble(
		titles("A", "List of things"),
		edges("A", "List of things"),
		RedirectMap{},
		enProfile(t),
		&stats,
	)

	if len(g.Edges) != 0 {
		t.Fatalf("expected no edges, got %d", len(g.Edges))
	}
	if stats.EdgesFiltered != 1 {
		t.Fatalf("expected 1 filtered edge, got %d", stats.EdgesFiltered)
	}
}

func TestAssemble_NodeIDsDense(t *testing.T) {
	var stats common.Stats
	g := Assemble(
		titles("A", "B", "C", "Unlinked"),
		edges("B", "C", "A", "B"),
		RedirectMap{},
		enProfile(t),
		&stats,
	)

	// Only titles incident to surviving edges become nodes, numbered in
	// first-appearance order.
	wantNodes := []common.Node{
		{ID: 0, Title: "B"},
		{ID: 1, Title: "C"},
		{ID: 2, Title: "A"},
	}
	if !reflect.DeepEqual(g.Nodes, wantNodes) {
		t.Fatalf("unexpected nodes: %+v", g.Nodes)
	}
	for i, node := range g.Nodes {
		if node.ID != i {
			t.Fatalf("node ids not dense: %+v", g.Nodes)
		}
	}
}

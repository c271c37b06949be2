package common

// Graph is the final article link graph produced by a run. It pairs a
// dense node table with a deduplicated edge list.
//
// A graph contains:
//   - Nodes: canonical article titles with dense integer identifiers
//   - Edges: directed (source id, target id) pairs, unique, no self-loops
//
// Identifiers are assigned in first-appearance order and are only stable
// within a single run.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a canonical article title with its integer identifier.
type Node struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// Edge is a directed link between two nodes, referencing node IDs.
// Source and Target are always distinct and both present in the node table.
type Edge struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// RawEdge is an extracted wikilink before redirect resolution and
// filtering: the linking article's title and the raw link target.
type RawEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// RedirectDeclaration records that an alias page designates another page
// as its target. Declarations are accumulated during the streaming pass
// and consumed by redirect resolution.
type RedirectDeclaration struct {
	Alias  string `json:"alias"`
	Target string `json:"target"`
}

// TextRecord is one corpus entry: an article title with its cleaned
// prose text. Redirect pages contribute a stub entry with empty text.
type TextRecord struct {
	Title      string `json:"title"`
	Text       string `json:"text"`
	IsRedirect bool   `json:"is_redirect"`
}

// Stats holds the aggregate counters reported at the end of a run so the
// effect of large-scale filtering stays auditable.
type Stats struct {
	RecordsSeen      int `json:"records_seen"`
	RecordsMalformed int `json:"records_malformed"`
	Excluded         int `json:"excluded"`
	Redirects        int `json:"redirects"`
	Content          int `json:"content"`
	RawEdges         int `json:"raw_edges"`
	EdgesUnresolved  int `json:"edges_unresolved"`
	EdgesFiltered    int `json:"edges_filtered"`
	EdgesSelfLoop    int `json:"edges_self_loop"`
	EdgesDuplicate   int `json:"edges_duplicate"`
	EdgesKept        int `json:"edges_kept"`
	RedirectCycles   int `json:"redirect_cycles"`
}

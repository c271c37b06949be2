// Package sink persists the in-memory results of a run. The core pipeline
// is sink-agnostic: the CLI picks gzip CSV files, Postgres tables, or both.
package sink

import (
	"context"

	"github.com/multilgraphwiki/wikigraph/pkg/common"
)

// Sink stores the output artifacts of one run.
type Sink interface {
	// SaveCorpus stores the text corpus (title, clean text, is_redirect).
	SaveCorpus(ctx context.Context, records []common.TextRecord) error
	// SaveRedirects stores the resolved alias→canonical mapping, suitable
	// for reapplication. Self-mappings are not included.
	SaveRedirects(ctx context.Context, redirects map[string]string) error
	// SaveGraph stores the node table and edge list.
	SaveGraph(ctx context.Context, graph *common.Graph) error
}

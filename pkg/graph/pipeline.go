package graph

import (
	"context"
	"errors"
	"io"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/multilgraphwiki/wikigraph/pkg/common"
	"github.com/multilgraphwiki/wikigraph/pkg/dump"
	"github.com/multilgraphwiki/wikigraph/pkg/lang"
	"github.com/multilgraphwiki/wikigraph/pkg/logger"
	"github.com/multilgraphwiki/wikigraph/pkg/wikitext"
)

// Pipeline runs the two-pass transformation: stream and classify records,
// clean text and extract links per content record (pass 1), then resolve
// redirects and assemble the graph over the accumulated data (pass 2).
type Pipeline struct {
	profile            *lang.Profile
	workers            int
	hopLimit           int
	skipTruncatedLinks bool
}

// PipelineParams configures a Pipeline. Zero values select the defaults:
// one worker per CPU, DefaultHopLimit hops, links from truncated sections
// included.
type PipelineParams struct {
	Profile *lang.Profile
	Workers int
	// HopLimit bounds redirect chain resolution.
	HopLimit int
	// SkipTruncatedLinks restricts link extraction to the body before the
	// section boundary instead of the full raw body.
	SkipTruncatedLinks bool
}

// NewPipeline creates a Pipeline for one language profile.
func NewPipeline(params PipelineParams) *Pipeline {
	workers := params.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	hopLimit := params.HopLimit
	if hopLimit <= 0 {
		hopLimit = DefaultHopLimit
	}
	return &Pipeline{
		profile:            params.Profile,
		workers:            workers,
		hopLimit:           hopLimit,
		skipTruncatedLinks: params.SkipTruncatedLinks,
	}
}

// Result carries everything a run produces: the text corpus, the resolved
// alias mapping, the assembled graph (nil when assembly was not requested)
// and the aggregate counters.
type Result struct {
	Corpus    []common.TextRecord
	Redirects RedirectMap
	Graph     *common.Graph
	Stats     common.Stats
}

// Run consumes the reader to exhaustion. Per-record problems never abort
// the run; only a broken input stream or context cancellation does.
// Redirect resolution and graph assembly are whole-input operations and
// start only after the last record has been classified.
func (p *Pipeline) Run(ctx context.Context, reader *dump.Reader, buildGraph bool) (*Result, error) {
	result := &Result{}

	var (
		mu            sync.Mutex
		decls         []common.RedirectDeclaration
		rawEdges      []common.RawEdge
		contentTitles = make(map[string]bool)
	)

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(p.workers)

	logger.Info("[Pipeline] Streaming dump", "language", p.profile.Code, "workers", p.workers)

	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := gCtx.Err(); err != nil {
			break
		}

		title := wikitext.NormalizeTitle(rec.Title)
		cls := wikitext.Classify(rec, p.profile)

		switch cls.Class {
		case wikitext.ClassExcluded:
			result.Stats.Excluded++

		case wikitext.ClassRedirect:
			result.Stats.Redirects++
			mu.Lock()
			result.Corpus = append(result.Corpus, common.TextRecord{Title: title, IsRedirect: true})
			if cls.RedirectTarget != "" {
				decls = append(decls, common.RedirectDeclaration{Alias: title, Target: cls.RedirectTarget})
			}
			mu.Unlock()

		case wikitext.ClassContent:
			result.Stats.Content++
			contentTitles[title] = true

			body := rec.Body
			eg.Go(func() error {
				select {
				case <-gCtx.Done():
					return gCtx.Err()
				default:
				}

				linksBody := body
				if p.skipTruncatedLinks {
					linksBody = wikitext.TruncateAtSection(body, p.profile)
				}
				links := wikitext.ExtractLinks(linksBody)
				text := wikitext.Clean(body, p.profile)

				mu.Lock()
				defer mu.Unlock()
				result.Corpus = append(result.Corpus, common.TextRecord{Title: title, Text: text})
				for _, target := range links {
					rawEdges = append(rawEdges, common.RawEdge{Source: title, Target: target})
				}
				return nil
			})
		}
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Stats.RecordsSeen = reader.Seen()
	result.Stats.RecordsMalformed = reader.Malformed()
	result.Stats.RawEdges = len(rawEdges)

	logger.Info(
		"[Pipeline] Stream finished",
		"records", result.Stats.RecordsSeen,
		"malformed", result.Stats.RecordsMalformed,
		"excluded", result.Stats.Excluded,
		"redirects", result.Stats.Redirects,
		"content", result.Stats.Content,
		"raw_edges", result.Stats.RawEdges,
	)

	result.Redirects = ResolveRedirects(decls, p.hopLimit, &result.Stats)
	logger.Info("[Pipeline] Redirects resolved", "aliases", len(result.Redirects), "cycles", result.Stats.RedirectCycles)

	if buildGraph {
		result.Graph = Assemble(contentTitles, rawEdges, result.Redirects, p.profile, &result.Stats)
		logger.Info(
			"[Pipeline] Graph assembled",
			"nodes", len(result.Graph.Nodes),
			"edges", result.Stats.EdgesKept,
			"dropped_unresolved", result.Stats.EdgesUnresolved,
			"dropped_filtered", result.Stats.EdgesFiltered,
			"dropped_self", result.Stats.EdgesSelfLoop,
			"dropped_duplicate", result.Stats.EdgesDuplicate,
		)
	}

	return result, nil
}

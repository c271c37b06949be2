// Package csvsink writes run artifacts as gzip-compressed CSV files,
// laid out per language: <base>/<LANG>/output/ for the corpus and
// <base>/<LANG>/graph/ for the graph tables.
package csvsink

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/multilgraphwiki/wikigraph/pkg/common"
)

// CSVSink writes artifacts below a base directory and remembers the
// files it wrote so they can be uploaded afterwards.
type CSVSink struct {
	baseDir string
	lang    string
	written []string
}

// NewCSVSinkParams contains configuration for creating a CSVSink.
type NewCSVSinkParams struct {
	BaseDir  string
	Language string
}

// NewCSVSink creates a sink rooted at params.BaseDir for one language.
func NewCSVSink(params NewCSVSinkParams) *CSVSink {
	return &CSVSink{
		baseDir: params.BaseDir,
		lang:    params.Language,
	}
}

// Files lists the paths written so far.
func (s *CSVSink) Files() []string {
	return s.written
}

// SaveCorpus writes <LANG>_corpus.csv.gz with one row per corpus entry.
func (s *CSVSink) SaveCorpus(ctx context.Context, records []common.TextRecord) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{rec.Title, rec.Text, strconv.FormatBool(rec.IsRedirect)})
	}
	path := filepath.Join(s.baseDir, s.lang, "output", s.lang+"_corpus.csv.gz")
	return s.writeFile(ctx, path, []string{"title", "text", "is_redirect"}, rows)
}

// SaveRedirects writes <LANG>_redirects.csv.gz, alias-sorted for
// reproducible files.
func (s *CSVSink) SaveRedirects(ctx context.Context, redirects map[string]string) error {
	aliases := make([]string, 0, len(redirects))
	for alias := range redirects {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	rows := make([][]string, 0, len(aliases))
	for _, alias := range aliases {
		if redirects[alias] == alias {
			continue
		}
		rows = append(rows, []string{alias, redirects[alias]})
	}
	path := filepath.Join(s.baseDir, s.lang, "graph", s.lang+"_redirects.csv.gz")
	return s.writeFile(ctx, path, []string{"alias", "canonical"}, rows)
}

// SaveGraph writes <LANG>_nodes.csv.gz and <LANG>_edges.csv.gz.
func (s *CSVSink) SaveGraph(ctx context.Context, graph *common.Graph) error {
	nodeRows := make([][]string, 0, len(graph.Nodes))
	for _, node := range graph.Nodes {
		nodeRows = append(nodeRows, []string{strconv.Itoa(node.ID), node.Title})
	}
	nodesPath := filepath.Join(s.baseDir, s.lang, "graph", s.lang+"_nodes.csv.gz")
	if err := s.writeFile(ctx, nodesPath, []string{"id", "title"}, nodeRows); err != nil {
		return err
	}

	edgeRows := make([][]string, 0, len(graph.Edges))
	for _, edge := range graph.Edges {
		edgeRows = append(edgeRows, []string{strconv.Itoa(edge.Source), strconv.Itoa(edge.Target)})
	}
	edgesPath := filepath.Join(s.baseDir, s.lang, "graph", s.lang+"_edges.csv.gz")
	return s.writeFile(ctx, edgesPath, []string{"source", "target"}, edgeRows)
}

func (s *CSVSink) writeFile(ctx context.Context, path string, header []string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	w := csv.NewWriter(gz)

	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to finish %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	s.written = append(s.written, path)
	return nil
}

// Package pgsink stores run artifacts in PostgreSQL. Every run gets a row
// in the runs table; corpus, redirects, nodes and edges reference it, so
// repeated runs over the same dump coexist and cascade-delete together.
package pgsink

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/multilgraphwiki/wikigraph/internal/util"
	"github.com/multilgraphwiki/wikigraph/pkg/common"
	"github.com/multilgraphwiki/wikigraph/pkg/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PGSink writes one run's artifacts through a pgx connection pool.
type PGSink struct {
	pool  *pgxpool.Pool
	runID string
	lang  string
}

// NewPGSinkParams contains configuration for creating a PGSink.
type NewPGSinkParams struct {
	DatabaseURL string
	RunID       string
	Language    string
}

// NewPGSink connects to the database, applies pending migrations and
// registers the run. The caller owns the sink and must Close it.
func NewPGSink(ctx context.Context, params NewPGSinkParams) (*PGSink, error) {
	if err := applyMigrations(params.DatabaseURL); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, params.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO runs (id, language) VALUES ($1, $2)`,
		params.RunID, params.Language,
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to register run: %w", err)
	}

	return &PGSink{
		pool:  pool,
		runID: params.RunID,
		lang:  params.Language,
	}, nil
}

// Close releases the connection pool.
func (s *PGSink) Close() {
	s.pool.Close()
}

func applyMigrations(databaseURL string) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// SaveCorpus bulk-loads the corpus with COPY.
func (s *PGSink) SaveCorpus(ctx context.Context, records []common.TextRecord) error {
	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []any{
			s.runID,
			util.SanitizePostgresText(rec.Title),
			util.SanitizePostgresText(rec.Text),
			rec.IsRedirect,
		})
	}

	count, err := s.pool.CopyFrom(
		ctx,
		pgx.Identifier{"corpus"},
		[]string{"run_id", "title", "body", "is_redirect"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to store corpus: %w", err)
	}
	logger.Debug("[PGSink] Corpus stored", "rows", count)
	return nil
}

// SaveRedirects bulk-loads the alias mapping, skipping self-mappings.
func (s *PGSink) SaveRedirects(ctx context.Context, redirects map[string]string) error {
	rows := make([][]any, 0, len(redirects))
	for alias, canonical := range redirects {
		if alias == canonical {
			continue
		}
		rows = append(rows, []any{
			s.runID,
			util.SanitizePostgresText(alias),
			util.SanitizePostgresText(canonical),
		})
	}

	count, err := s.pool.CopyFrom(
		ctx,
		pgx.Identifier{"redirects"},
		[]string{"run_id", "alias", "canonical"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to store redirects: %w", err)
	}
	logger.Debug("[PGSink] Redirects stored", "rows", count)
	return nil
}

// SaveGraph bulk-loads the node table and edge list.
func (s *PGSink) SaveGraph(ctx context.Context, graph *common.Graph) error {
	nodeRows := make([][]any, 0, len(graph.Nodes))
	for _, node := range graph.Nodes {
		nodeRows = append(nodeRows, []any{
			s.runID,
			int64(node.ID),
			util.SanitizePostgresText(node.Title),
		})
	}
	count, err := s.pool.CopyFrom(
		ctx,
		pgx.Identifier{"nodes"},
		[]string{"run_id", "node_id", "title"},
		pgx.CopyFromRows(nodeRows),
	)
	if err != nil {
		return fmt.Errorf("failed to store nodes: %w", err)
	}
	logger.Debug("[PGSink] Nodes stored", "rows", count)

	edgeRows := make([][]any, 0, len(graph.Edges))
	for _, edge := range graph.Edges {
		edgeRows = append(edgeRows, []any{s.runID, int64(edge.Source), int64(edge.Target)})
	}
	count, err = s.pool.CopyFrom(
		ctx,
		pgx.Identifier{"edges"},
		[]string{"run_id", "source", "target"},
		pgx.CopyFromRows(edgeRows),
	)
	if err != nil {
		return fmt.Errorf("failed to store edges: %w", err)
	}
	logger.Debug("[PGSink] Edges stored", "rows", count)
	return nil
}

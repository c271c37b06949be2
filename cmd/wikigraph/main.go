package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/multilgraphwiki/wikigraph/internal/storage"
	"github.com/multilgraphwiki/wikigraph/internal/util"
	"github.com/multilgraphwiki/wikigraph/pkg/dump"
	"github.com/multilgraphwiki/wikigraph/pkg/graph"
	"github.com/multilgraphwiki/wikigraph/pkg/lang"
	"github.com/multilgraphwiki/wikigraph/pkg/logger"
	"github.com/multilgraphwiki/wikigraph/pkg/logger/console"
	"github.com/multilgraphwiki/wikigraph/pkg/sink"
	"github.com/multilgraphwiki/wikigraph/pkg/sink/csvsink"
	"github.com/multilgraphwiki/wikigraph/pkg/sink/pgsink"
)

func main() {
	util.LoadEnv()

	dumpPath := flag.String("dump", "", "path to the wiki dump (.xml or .xml.bz2)")
	langCode := flag.String("lang", "", "language code of the dump (e.g. EN, DE, ES)")
	outDir := flag.String("out", util.GetEnvString("OUT_DIR", "."), "base directory for output files")
	buildGraph := flag.Bool("graph", true, "assemble the link graph after streaming")
	workers := flag.Int("workers", util.GetEnvInt("WORKERS", 0), "parallel cleaning workers (0 = number of CPUs)")
	hopLimit := flag.Int("hop-limit", graph.DefaultHopLimit, "maximum redirect chain length")
	allLinks := flag.Bool("all-links", true, "extract links from the full body, not just the part before the cutoff section")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	if *dumpPath == "" || *langCode == "" {
		flag.Usage()
		logger.Fatal("Both -dump and -lang are required")
	}

	settings, err := lang.DefaultSettings()
	if err != nil {
		logger.Fatal("Failed to load language settings", "err", err)
	}

	code := strings.ToUpper(*langCode)
	profile, err := settings.Profile(code)
	if err != nil {
		logger.Fatal("Unsupported language", "lang", code, "supported", strings.Join(settings.Languages(), ", "))
	}

	runID, err := gonanoid.New()
	if err != nil {
		logger.Fatal("Failed to generate run id", "err", err)
	}
	logger.Info("Starting run", "run_id", runID, "lang", code, "dump", *dumpPath)

	reader, err := dump.Open(*dumpPath)
	if err != nil {
		logger.Fatal("Failed to open dump", "err", err)
	}
	defer reader.Close()

	pipeline := graph.NewPipeline(graph.PipelineParams{
		Profile:            profile,
		Workers:            *workers,
		HopLimit:           *hopLimit,
		SkipTruncatedLinks: !*allLinks,
	})

	startTime := time.Now()
	result, err := pipeline.Run(ctx, reader, *buildGraph)
	if err != nil {
		logger.Fatal("Run failed", "err", err)
	}

	csv := csvsink.NewCSVSink(csvsink.NewCSVSinkParams{
		BaseDir:  *outDir,
		Language: code,
	})
	sinks := []sink.Sink{csv}

	databaseURL := util.GetEnv("DATABASE_URL")
	if databaseURL != "" {
		pg, err := pgsink.NewPGSink(ctx, pgsink.NewPGSinkParams{
			DatabaseURL: databaseURL,
			RunID:       runID,
			Language:    code,
		})
		if err != nil {
			logger.Fatal("Failed to set up database sink", "err", err)
		}
		defer pg.Close()
		sinks = append(sinks, pg)
	}

	for _, s := range sinks {
		if err := s.SaveCorpus(ctx, result.Corpus); err != nil {
			logger.Fatal("Failed to save corpus", "err", err)
		}
		if err := s.SaveRedirects(ctx, result.Redirects); err != nil {
			logger.Fatal("Failed to save redirects", "err", err)
		}
		if result.Graph != nil {
			if err := s.SaveGraph(ctx, result.Graph); err != nil {
				logger.Fatal("Failed to save graph", "err", err)
			}
		}
	}

	if util.GetEnv("AWS_BUCKET") != "" {
		client := storage.NewS3Client(ctx)
		if client == nil {
			logger.Fatal("Failed to set up S3 client")
		}
		for _, path := range csv.Files() {
			var key string
			err := util.RetryErrWithContext(ctx, 3, func(ctx context.Context) error {
				var uploadErr error
				key, uploadErr = storage.UploadArtifact(ctx, client, runID, path)
				return uploadErr
			})
			if err != nil {
				logger.Fatal("Failed to upload artifact", "path", path, "err", err)
			}
			logger.Info("Artifact uploaded", "key", key)
		}

		keys, err := storage.ListArtifacts(ctx, client, runID)
		if err != nil {
			logger.Warn("Failed to list uploaded artifacts", "err", err)
		} else {
			logger.Info("Upload complete", "run_id", runID, "artifacts", len(keys))
		}
	}

	duration := time.Since(startTime)
	hours := int(duration.Hours())
	minutes := int(duration.Minutes()) % 60
	seconds := int(duration.Seconds()) % 60
	logger.Info(
		"Run finished",
		"run_id", runID,
		"records", result.Stats.RecordsSeen,
		"content", result.Stats.Content,
		"redirects", result.Stats.Redirects,
		"edges_kept", result.Stats.EdgesKept,
		"duration", fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds),
	)
}

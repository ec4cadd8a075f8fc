package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/receipts-extractor/internal/common"
	"github.com/joseph-ayodele/receipts-extractor/internal/export"
	"github.com/joseph-ayodele/receipts-extractor/internal/heuristic"
	"github.com/joseph-ayodele/receipts-extractor/internal/ingest"
	"github.com/joseph-ayodele/receipts-extractor/internal/llm"
	"github.com/joseph-ayodele/receipts-extractor/internal/ocr"
	"github.com/joseph-ayodele/receipts-extractor/internal/pipeline"
	repo "github.com/joseph-ayodele/receipts-extractor/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir   = flag.String("dir", "", "directory to process receipts from (required)")
		inmem = flag.Bool("inmem", false, "use in-memory SQLite database")
		out   = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "extractions.xlsx")
	}

	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, cleanup, err := openDatabase(ctx, cfg, *inmem, logger)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := repo.EnsureSchema(ctx, db); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	filesRepo := repo.NewFileRepository(db, logger)
	extractionsRepo := repo.NewExtractionRepository(db, logger)

	source := ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		DPI:           cfg.OCR.DPI,
	}, logger)

	registry := pipeline.BuildRegistry(cfg.Providers, logger)
	cascade := pipeline.NewCascade(
		heuristic.NewExtractor(logger),
		llm.NewAdapter(cfg.Pipeline.ProviderTimeout, logger),
		logger,
	)
	processor := pipeline.NewProcessor(filesRepo, extractionsRepo, source, cascade, registry, logger)

	// Ingest directory
	logger.Info("starting ingestion", "dir", *dir)
	ingestor := ingest.NewIngestor(filesRepo, logger)
	results, stats, err := ingestor.IngestDirectory(ctx, *dir)
	if err != nil {
		logger.Error("failed to ingest directory", "error", err)
		os.Exit(1)
	}
	logger.Info("ingestion complete",
		"scanned", stats.Scanned,
		"ingested", stats.Ingested,
		"deduplicated", stats.Deduplicated,
		"invalid", stats.Invalid,
		"skipped", stats.Skipped)

	// Process each newly ingested file
	processed := 0
	review := 0
	failures := 0
	start := time.Now()
	for _, r := range results {
		if r.Skipped || r.Deduplicated || r.Reason != "" {
			continue
		}
		outcome, err := processor.ProcessFile(ctx, r.FileID)
		if err != nil {
			logger.Error("failed to process file", "file_id", r.FileID, "error", err)
			failures++
			continue
		}
		processed++
		if outcome.Result.Method.IsFailed() {
			review++
		}
	}
	logger.Info("processing complete",
		"processed", processed,
		"needs_review", review,
		"failures", failures,
		"elapsed_ms", time.Since(start).Milliseconds())

	// Export to XLSX
	logger.Info("exporting to XLSX", "output", *out)
	exportService := export.NewService(extractionsRepo, filesRepo, logger)
	xlsxBytes, err := exportService.ExportExtractionsXLSX(ctx)
	if err != nil {
		logger.Error("failed to export extractions", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files ingested: %d (deduplicated: %d, invalid: %d)\n", stats.Ingested, stats.Deduplicated, stats.Invalid)
	fmt.Printf("- Files processed: %d (needs review: %d, failures: %d)\n", processed, review, failures)
	fmt.Printf("- Output: %s\n", *out)
}

// openDatabase picks SQLite (in-memory) or Postgres based on flags and config.
func openDatabase(ctx context.Context, cfg *common.Config, inmem bool, logger *slog.Logger) (*repo.DB, func(), error) {
	if inmem || cfg.Database.DSN == "" {
		if !inmem {
			logger.Warn("DB_URL not set, falling back to in-memory SQLite")
		}
		db, err := repo.OpenSQLite("file::memory:?cache=shared", logger)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	}

	db, pool, err := repo.OpenPostgres(ctx, repo.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := repo.HealthCheck(ctx, db, time.Second); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return db, func() {
		_ = db.Close()
		pool.Close()
	}, nil
}

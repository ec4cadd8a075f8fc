package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/receipts-extractor/internal/common"
	"github.com/joseph-ayodele/receipts-extractor/internal/heuristic"
	"github.com/joseph-ayodele/receipts-extractor/internal/llm"
	"github.com/joseph-ayodele/receipts-extractor/internal/ocr"
	"github.com/joseph-ayodele/receipts-extractor/internal/pipeline"
	"github.com/joseph-ayodele/receipts-extractor/internal/validation"
)

// extract-file runs the full extraction cascade against a single receipt and
// prints the result as JSON. Nothing is persisted; this is the quickest way
// to eyeball what the pipeline makes of a document.
func main() {
	var (
		path    = flag.String("file", "", "path to a receipt (pdf, jpg, jpeg, png, txt)")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "Error: --file is required")
		os.Exit(1)
	}

	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if v := validation.ValidateFile(*path); !v.Valid {
		logger.Error("file failed validation", "path", *path, "reason", v.Reason)
		os.Exit(1)
	}

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

	acq, err := source.Acquire(ctx, *path)
	if err != nil {
		logger.Error("text acquisition failed", "path", *path, "error", err)
		os.Exit(1)
	}

	res := cascade.Extract(ctx, acq.Doc, acq.RenderedPage, registry)

	out := struct {
		Path   string `json:"path"`
		Method string `json:"method"`
		Origin string `json:"text_origin"`
		Fields any    `json:"fields"`
	}{
		Path:   *path,
		Method: res.Method.String(),
		Origin: string(res.Source.Origin),
		Fields: res.Fields,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("failed to encode result", "error", err)
		os.Exit(1)
	}
}

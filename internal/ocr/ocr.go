package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/receipts-extractor/constants"
	"github.com/joseph-ayodele/receipts-extractor/internal/extract"
)

// PDFs whose embedded text layer is shorter than this are treated as
// scanned and routed through rasterization + OCR.
const minNativeChars = 32

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	PSM           int    // tesseract page segmentation mode, default 6
}

// Extractor turns a file into DocumentText plus, when possible, a rendered
// first page for the vision tier. It implements extract.TextSource.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 6
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Acquire picks a strategy based on file extension.
func (e *Extractor) Acquire(ctx context.Context, path string) (extract.AcquireResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("ocr.acquire.start", "path", path, "ext", ext)

	var (
		res extract.AcquireResult
		err error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err = e.acquirePDF(ctx, path)
	case constants.IMAGE:
		res, err = e.acquireImage(ctx, path)
	case constants.TXT:
		res, err = e.acquirePlainText(path)
	default:
		return extract.AcquireResult{}, fmt.Errorf("unsupported extension: %q", ext)
	}
	res.Duration = time.Since(start)
	return res, err
}

// acquirePDF prefers the embedded text layer; a sparse layer means a scanned
// document, which falls back to rasterize + OCR. The rendered first page is
// kept either way so the cascade's vision tier has something to send.
func (e *Extractor) acquirePDF(ctx context.Context, path string) (extract.AcquireResult, error) {
	var warnings []string

	out, _, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", path, "-")
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("pdftotext: %v", err))
	}
	text := string(out)

	page, renderErr := e.renderFirstPage(ctx, path)
	if renderErr != nil {
		warnings = append(warnings, fmt.Sprintf("render page: %v", renderErr))
	}

	if len(strings.TrimSpace(text)) >= minNativeChars {
		// pdftotext terminates every page, including the last, with a form feed
		pages := strings.Count(text, "\f")
		if pages == 0 {
			pages = 1
		}
		return extract.AcquireResult{
			Doc:          extract.DocumentText{Content: text, Origin: extract.OriginNative},
			RenderedPage: page,
			Method:       "pdf-text",
			Pages:        pages,
			Warnings:     warnings,
		}, nil
	}

	// Scanned PDF: OCR the rendered page.
	if page == nil {
		return extract.AcquireResult{Warnings: warnings},
			fmt.Errorf("pdf has no text layer and no page could be rendered: %w", renderErr)
	}
	ocrText, err := e.recognize(ctx, page)
	if err != nil {
		return extract.AcquireResult{RenderedPage: page, Warnings: warnings}, err
	}
	return extract.AcquireResult{
		Doc:          extract.DocumentText{Content: ocrText, Origin: extract.OriginOCR},
		RenderedPage: page,
		Method:       "pdf-ocr",
		Pages:        1,
		Warnings:     warnings,
	}, nil
}

func (e *Extractor) acquireImage(ctx context.Context, path string) (extract.AcquireResult, error) {
	page, err := os.ReadFile(path)
	if err != nil {
		return extract.AcquireResult{}, fmt.Errorf("read image: %w", err)
	}
	text, err := e.recognize(ctx, page)
	if err != nil {
		// OCR failed but the raster itself is usable; hand the cascade an
		// empty text blob and let the vision tier work on the page.
		e.logger.Warn("ocr.image.recognize_failed", "path", path, "error", err)
		return extract.AcquireResult{
			Doc:          extract.DocumentText{Content: "", Origin: extract.OriginOCR},
			RenderedPage: page,
			Method:       "image-ocr",
			Pages:        1,
			Warnings:     []string{fmt.Sprintf("tesseract: %v", err)},
		}, nil
	}
	return extract.AcquireResult{
		Doc:          extract.DocumentText{Content: text, Origin: extract.OriginOCR},
		RenderedPage: page,
		Method:       "image-ocr",
		Pages:        1,
	}, nil
}

func (e *Extractor) acquirePlainText(path string) (extract.AcquireResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return extract.AcquireResult{}, fmt.Errorf("read text file: %w", err)
	}
	return extract.AcquireResult{
		Doc:    extract.DocumentText{Content: string(b), Origin: extract.OriginNative},
		Method: "plain-text",
		Pages:  1,
	}, nil
}

// renderFirstPage rasterizes page 1 to PNG via pdftoppm.
func (e *Extractor) renderFirstPage(ctx context.Context, path string) ([]byte, error) {
	tmp, err := os.MkdirTemp("", "receipts-render-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmp); rmErr != nil {
			e.logger.Warn("ocr.render.cleanup_failed", "dir", tmp, "error", rmErr)
		}
	}()

	prefix := filepath.Join(tmp, "page")
	_, _, err = e.runner.Run(ctx, e.cfg.Pdftoppm,
		"-png", "-singlefile", "-r", strconv.Itoa(e.cfg.DPI), "-f", "1", "-l", "1",
		path, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w", err)
	}
	return os.ReadFile(prefix + ".png")
}

// recognize runs tesseract over PNG bytes and returns the recognized text.
func (e *Extractor) recognize(ctx context.Context, page []byte) (string, error) {
	tmp, err := os.CreateTemp("", "receipts-ocr-*.png")
	if err != nil {
		return "", err
	}
	defer func() {
		if rmErr := os.Remove(tmp.Name()); rmErr != nil {
			e.logger.Warn("ocr.recognize.cleanup_failed", "file", tmp.Name(), "error", rmErr)
		}
	}()
	if _, err := tmp.Write(page); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	out, _, err := e.runner.Run(ctx, e.cfg.Tesseract,
		tmp.Name(), "stdout", "-l", e.cfg.TesseractLang, "--psm", strconv.Itoa(e.cfg.PSM))
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

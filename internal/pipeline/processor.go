package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipts-extractor/constants"
	"github.com/joseph-ayodele/receipts-extractor/internal/common"
	"github.com/joseph-ayodele/receipts-extractor/internal/extract"
	"github.com/joseph-ayodele/receipts-extractor/internal/llm"
	"github.com/joseph-ayodele/receipts-extractor/internal/repository"
)

// Processor drives one file through acquisition, the cascade, and persistence.
type Processor struct {
	files       repository.FileRepository
	extractions repository.ExtractionRepository
	source      extract.TextSource
	cascade     *Cascade
	registry    *llm.Registry
	logger      *slog.Logger
}

func NewProcessor(
	files repository.FileRepository,
	extractions repository.ExtractionRepository,
	source extract.TextSource,
	cascade *Cascade,
	registry *llm.Registry,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		files:       files,
		extractions: extractions,
		source:      source,
		cascade:     cascade,
		registry:    registry,
		logger:      logger,
	}
}

// ProcessOutcome summarizes one file's trip through the pipeline.
type ProcessOutcome struct {
	FileID       uuid.UUID
	ExtractionID uuid.UUID
	Result       extract.ExtractionResult
	Status       constants.FileStatus
	Elapsed      time.Duration
}

// ProcessFile extracts fields for an already-ingested file and persists the
// outcome. A Failed-tagged result is not an error; the file is flagged for
// review and the heuristic candidate is stored alongside.
func (p *Processor) ProcessFile(ctx context.Context, fileID uuid.UUID) (*ProcessOutcome, error) {
	start := time.Now()

	f, err := p.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if f.Status == constants.FileStatusInvalid {
		return nil, common.NewAppError("INVALID_FILE", "file failed validation and cannot be processed", common.ErrInvalidFile)
	}

	acq, err := p.source.Acquire(ctx, f.SourcePath)
	if err != nil {
		p.logger.Error("process.acquire_failed", "file_id", fileID, "path", f.SourcePath, "error", err)
		if stErr := p.files.SetStatus(ctx, fileID, constants.FileStatusInvalid); stErr != nil {
			p.logger.Error("process.set_status_failed", "file_id", fileID, "error", stErr)
		}
		return nil, common.WrapError(err, "acquire text")
	}
	for _, w := range acq.Warnings {
		p.logger.Warn("process.acquire_warning", "file_id", fileID, "warning", w)
	}
	p.logger.Info("process.acquired",
		"file_id", fileID,
		"method", acq.Method,
		"origin", string(acq.Doc.Origin),
		"pages", acq.Pages,
		"chars", len(acq.Doc.Content),
		"elapsed_ms", acq.Duration.Milliseconds())

	res := p.cascade.Extract(ctx, acq.Doc, acq.RenderedPage, p.registry)

	extractionID, err := p.extractions.Save(ctx, fileID, res)
	if err != nil {
		return nil, err
	}

	status := constants.FileStatusExtracted
	if res.Method.IsFailed() {
		status = constants.FileStatusReview
	}
	if err := p.files.SetStatus(ctx, fileID, status); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	p.logger.Info("process.done",
		"file_id", fileID,
		"extraction_id", extractionID,
		"method", res.Method.String(),
		"status", string(status),
		"elapsed_ms", elapsed.Milliseconds())

	return &ProcessOutcome{
		FileID:       fileID,
		ExtractionID: extractionID,
		Result:       res,
		Status:       status,
		Elapsed:      elapsed,
	}, nil
}

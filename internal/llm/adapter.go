package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/receipts-extractor/internal/extract"
)

// Adapter is the boundary between the cascade and the providers. Every
// provider failure (network error, non-2xx, timeout, unparsable payload)
// is absorbed here and converted to an all-absent candidate, so above this
// layer "call failed" and "no useful fields found" are indistinguishable.
// Providers themselves return explicit errors; the collapse happens in
// exactly one place, on purpose.
type Adapter struct {
	timeout time.Duration // per provider call
	logger  *slog.Logger
}

func NewAdapter(timeout time.Duration, logger *slog.Logger) *Adapter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{timeout: timeout, logger: logger}
}

// ExtractFromText asks one provider for fields from raw document text.
func (a *Adapter) ExtractFromText(ctx context.Context, p Provider, doc extract.DocumentText) extract.FieldCandidate {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	cand, err := p.ExtractFromText(callCtx, doc.Content)
	if err != nil {
		a.logger.Warn("llm.adapter.text_call_failed",
			"provider", p.Name(),
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return extract.FieldCandidate{}
	}
	return cand
}

// ExtractFromImage asks one provider for fields from a rendered page.
func (a *Adapter) ExtractFromImage(ctx context.Context, p Provider, page []byte) extract.FieldCandidate {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	cand, err := p.ExtractFromImage(callCtx, page)
	if err != nil {
		a.logger.Warn("llm.adapter.vision_call_failed",
			"provider", p.Name(),
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return extract.FieldCandidate{}
	}
	return cand
}

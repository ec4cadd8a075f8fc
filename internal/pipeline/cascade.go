package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/receipts-extractor/constants"
	"github.com/joseph-ayodele/receipts-extractor/internal/extract"
	"github.com/joseph-ayodele/receipts-extractor/internal/heuristic"
	"github.com/joseph-ayodele/receipts-extractor/internal/llm"
)

// Cascade is the fallback orchestrator: heuristic extraction first, then
// oracle-by-text across providers in priority order, then oracle-by-vision,
// stopping at the first candidate the quality gate accepts. It holds no
// state between documents and is safe to use concurrently for different
// documents. Later tiers cost money; they only fire on explicit rejection
// of the prior one, strictly in sequence.
type Cascade struct {
	heuristic *heuristic.Extractor
	adapter   *llm.Adapter
	logger    *slog.Logger
}

func NewCascade(h *heuristic.Extractor, a *llm.Adapter, logger *slog.Logger) *Cascade {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cascade{heuristic: h, adapter: a, logger: logger}
}

// Extract runs the cascade for one document. The registry is passed per call
// rather than held by the cascade, so callers control provider priority.
// page may be nil; without a rendered page the whole vision tier is skipped.
// The returned result always retains doc verbatim. Extract never fails:
// exhaustion is a normal outcome tagged Failed, carrying the heuristic
// candidate as the designated fallback payload.
func (c *Cascade) Extract(ctx context.Context, doc extract.DocumentText, page []byte, reg *llm.Registry) extract.ExtractionResult {
	// TryHeuristic
	base := c.heuristic.Extract(doc)
	if extract.IsAcceptable(base) {
		c.logger.Info("cascade.accepted", "method", constants.Heuristic().String())
		return extract.ExtractionResult{Fields: base, Method: constants.Heuristic(), Source: doc}
	}

	// TryOracleText, providers in priority order
	for _, p := range reg.Providers() {
		if ctx.Err() != nil {
			break
		}
		if !p.Capabilities().Text {
			continue
		}
		cand := c.adapter.ExtractFromText(ctx, p, doc)
		if extract.IsAcceptable(cand) {
			method := constants.OracleText(p.Name())
			c.logger.Info("cascade.accepted", "method", method.String())
			return extract.ExtractionResult{Fields: cand, Method: method, Source: doc}
		}
		c.logger.Debug("cascade.rejected", "state", "oracle_text", "provider", p.Name())
	}

	// TryOracleVision, only when a rendered page exists
	if len(page) > 0 {
		for _, p := range reg.Providers() {
			if ctx.Err() != nil {
				break
			}
			if !p.Capabilities().Vision {
				continue
			}
			cand := c.adapter.ExtractFromImage(ctx, p, page)
			if extract.IsAcceptable(cand) {
				method := constants.OracleVision(p.Name())
				c.logger.Info("cascade.accepted", "method", method.String())
				return extract.ExtractionResult{Fields: cand, Method: method, Source: doc}
			}
			c.logger.Debug("cascade.rejected", "state", "oracle_vision", "provider", p.Name())
		}
	}

	// Exhausted: hand back the heuristic candidate, tagged Failed, with the
	// source text retained for audit. Callers branch on the tag, not on an
	// error: this is expected behavior, surfaced as "needs manual review".
	c.logger.Warn("cascade.exhausted", "providers", reg.Len(), "had_page", len(page) > 0)
	return extract.ExtractionResult{Fields: base, Method: constants.Failed(), Source: doc}
}

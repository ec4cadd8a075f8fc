package heuristic

import (
	"log/slog"

	"github.com/joseph-ayodele/receipts-extractor/internal/extract"
)

// Extractor composes the field extractors into one candidate per document.
// It is deterministic and side-effect-free: it never fails and never touches
// the network, so an all-absent candidate is a valid (unaccepted) outcome.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract runs every field extractor over the same text and assembles the
// candidate. Empty or unreadable input still yields a (all-absent) candidate.
func (e *Extractor) Extract(doc extract.DocumentText) extract.FieldCandidate {
	c := extract.FieldCandidate{
		MerchantName:  MerchantName(doc.Content),
		TotalAmount:   TotalAmount(doc.Content),
		TaxAmount:     TaxAmount(doc.Content),
		Subtotal:      Subtotal(doc.Content),
		PurchasedAt:   PurchaseDate(doc.Content),
		PaymentMethod: PaymentMethod(doc.Content),
	}

	e.logger.Debug("heuristic.extract",
		"origin", doc.Origin,
		"text_len", len(doc.Content),
		"has_merchant", c.MerchantName != nil,
		"has_total", c.TotalAmount != nil,
		"has_date", c.PurchasedAt != nil,
	)
	return c
}

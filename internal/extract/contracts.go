package extract

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/receipts-extractor/constants"
)

// TextOrigin tags how a document's text was obtained.
type TextOrigin string

const (
	OriginNative TextOrigin = "native" // embedded text (e.g. pdftotext)
	OriginOCR    TextOrigin = "ocr"    // recognized from a raster image
)

// DocumentText is the immutable text content of one document. It has no
// identity beyond its content; every extractor consumes it as-is.
type DocumentText struct {
	Content string
	Origin  TextOrigin
}

// FieldCandidate is one extraction attempt's view of the receipt. Every field
// is optional; a zero FieldCandidate is valid. Money fields, once set, are
// non-negative, and PurchasedAt, once set, is a real calendar date.
type FieldCandidate struct {
	MerchantName  *string          `json:"merchant_name,omitempty"`
	TotalAmount   *decimal.Decimal `json:"total_amount,omitempty"`
	TaxAmount     *decimal.Decimal `json:"tax_amount,omitempty"`
	Subtotal      *decimal.Decimal `json:"subtotal,omitempty"`
	PurchasedAt   *time.Time       `json:"purchased_at,omitempty"`
	PaymentMethod *string          `json:"payment_method,omitempty"`
}

// IsEmpty reports whether no field was extracted at all.
func (c FieldCandidate) IsEmpty() bool {
	return c.MerchantName == nil &&
		c.TotalAmount == nil &&
		c.TaxAmount == nil &&
		c.Subtotal == nil &&
		c.PurchasedAt == nil &&
		c.PaymentMethod == nil
}

// ExtractionResult is the final outcome of the cascade for one document:
// the winning candidate, the method that produced it, and the source text it
// was derived from. The source is retained for audit even on success.
type ExtractionResult struct {
	Fields FieldCandidate
	Method constants.ExtractionMethod
	Source DocumentText
}

// AcquireResult is what the text-acquisition stage hands to the cascade.
// RenderedPage is a single-page raster (PNG) when one could be produced;
// the vision tier is skipped when it is empty.
type AcquireResult struct {
	Doc          DocumentText
	RenderedPage []byte
	Method       string // "pdf-text" | "pdf-ocr" | "image-ocr" | "plain-text"
	Pages        int
	Duration     time.Duration
	Warnings     []string
}

// TextSource is the file → text boundary (implemented by internal/ocr,
// stubbed in pipeline tests).
type TextSource interface {
	Acquire(ctx context.Context, path string) (AcquireResult, error)
}

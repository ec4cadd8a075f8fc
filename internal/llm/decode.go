package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/receipts-extractor/internal/extract"
)

// StripVendorWrapping removes vendor-specific response dressing (fenced code
// blocks and surrounding whitespace) so that every provider's reply reaches
// the decoder as bare JSON.
func StripVendorWrapping(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	return s
}

// DecodeCandidate turns a raw provider reply into a FieldCandidate.
// The reply must be a JSON object whose known keys match the candidate
// schema; any other shape is an error (the adapter converts errors into
// all-absent candidates). Field-level noise is handled leniently:
// nulls and unknown keys are dropped, amounts may be numbers or numeric
// strings, negative amounts are discarded, and an unparsable date is treated
// as absent.
func DecodeCandidate(raw []byte) (extract.FieldCandidate, error) {
	cleaned := []byte(StripVendorWrapping(string(raw)))
	if len(cleaned) == 0 {
		return extract.FieldCandidate{}, fmt.Errorf("decode candidate: empty reply")
	}

	if err := ValidateJSONAgainstSchema(BuildCandidateJSONSchema(), cleaned); err != nil {
		return extract.FieldCandidate{}, fmt.Errorf("decode candidate: %w", err)
	}

	var m map[string]any
	if err := json.Unmarshal(cleaned, &m); err != nil {
		return extract.FieldCandidate{}, fmt.Errorf("decode candidate: %w", err)
	}

	var c extract.FieldCandidate
	c.MerchantName = stringField(m, "merchant_name")
	c.TotalAmount = amountField(m, "total_amount")
	c.TaxAmount = amountField(m, "tax_amount")
	c.Subtotal = amountField(m, "subtotal")
	c.PaymentMethod = stringField(m, "payment_method")

	if s := stringField(m, "purchased_at"); s != nil {
		c.PurchasedAt = parseOracleDate(*s)
	}
	return c, nil
}

func stringField(m map[string]any, key string) *string {
	v, ok := m[key].(string)
	if !ok {
		return nil
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// amountField coerces a number or numeric string into a non-negative decimal.
func amountField(m map[string]any, key string) *decimal.Decimal {
	var d decimal.Decimal
	switch t := m[key].(type) {
	case float64:
		d = decimal.NewFromFloat(t)
	case string:
		var err error
		if d, err = decimal.NewFromString(strings.TrimSpace(t)); err != nil {
			return nil
		}
	default:
		return nil
	}
	if d.IsNegative() {
		return nil
	}
	return &d
}

var oracleDateLayouts = []string{"2006-01-02", time.RFC3339}

func parseOracleDate(s string) *time.Time {
	for _, layout := range oracleDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t
		}
	}
	return nil
}

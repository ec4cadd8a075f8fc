package heuristic

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// Field extractors are pure functions DocumentText content -> optional value.
// Each owns its own pattern tiers and never consults another field's result.

var headerStopWords = []string{"receipt", "invoice", "bill", "order"}

// MerchantName scans the first 5 lines and returns the first line longer than
// 3 characters that contains no digit and none of the header stop-words.
func MerchantName(text string) *string {
	lines := strings.Split(text, "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) <= 3 || strings.ContainsFunc(line, unicode.IsDigit) {
			continue
		}
		lower := strings.ToLower(line)
		stopped := false
		for _, w := range headerStopWords {
			if strings.Contains(lower, w) {
				stopped = true
				break
			}
		}
		if !stopped {
			return &line
		}
	}
	return nil
}

// Total-amount pattern tiers, strict priority order. A tier is consulted only
// if every earlier tier yielded nothing.
var (
	// tier 1: domain-specific "billed total" patterns (hotel folios and the like)
	billedTotalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)total\s*billed\s*to\s*suite[:\s]*(\d+,?\d*\.?\d*)`),
		regexp.MustCompile(`(?i)totalbilledtosuite[:\s]*(\d+,?\d*\.?\d*)`),
		regexp.MustCompile(`(?i)total\s*billed[:\s]*(\d+,?\d*\.?\d*)`),
		regexp.MustCompile(`(?i)folio\s*balance[:\s]*(\d+,?\d*\.?\d*)`),
		regexp.MustCompile(`(?i)account\s*balance[:\s]*(\d+,?\d*\.?\d*)`),
	}

	// tier 2: two-decimal amounts within 50 chars of a total-ish keyword
	contextualPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)total[^0-9]{0,50}(\d{1,4}[,.]?\d{2,3}\.\d{2})`),
		regexp.MustCompile(`(?is)billed[^0-9]{0,50}(\d{1,4}[,.]?\d{2,3}\.\d{2})`),
		regexp.MustCompile(`(?is)suite[^0-9]{0,50}(\d{1,4}[,.]?\d{2,3}\.\d{2})`),
	}

	// tier 3: general keyword-adjacent amounts
	generalTotalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)total[:\s]*\$?\s*(\d+,?\d*\.?\d*)`),
		regexp.MustCompile(`(?i)amount\s*due[:\s]*\$?\s*(\d+,?\d*\.?\d*)`),
		regexp.MustCompile(`(?i)grand\s*total[:\s]*\$?\s*(\d+,?\d*\.?\d*)`),
		regexp.MustCompile(`(?i)balance[:\s]*\$?\s*(\d+,?\d*\.?\d*)`),
		regexp.MustCompile(`(?i)amount[:\s]*\$?\s*(\d+,?\d*\.?\d*)`),
	}

	// tiers 4 and 5: any decimal-amount-shaped token
	amountShapePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,4},\d{3}\.\d{2})`),
		regexp.MustCompile(`(\d{1,4}\.\d{2})`),
		regexp.MustCompile(`\$\s*(\d+,?\d*\.\d{2})`),
	}

	oneHundred = decimal.NewFromInt(100)
)

// parseAmount strips thousands separators and parses a decimal amount.
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func firstAmountAbove(text string, patterns []*regexp.Regexp, floor decimal.Decimal) *decimal.Decimal {
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if d, ok := parseAmount(m[1]); ok && d.GreaterThan(floor) {
				return &d
			}
		}
	}
	return nil
}

func collectAmounts(text string, keep func(decimal.Decimal) bool) []decimal.Decimal {
	var out []decimal.Decimal
	for _, re := range amountShapePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if d, ok := parseAmount(m[1]); ok && keep(d) {
				out = append(out, d)
			}
		}
	}
	return out
}

func maxAmount(amounts []decimal.Decimal) *decimal.Decimal {
	if len(amounts) == 0 {
		return nil
	}
	max := amounts[0]
	for _, d := range amounts[1:] {
		if d.GreaterThan(max) {
			max = d
		}
	}
	return &max
}

// TotalAmount applies the five pattern tiers in strict priority order.
// Known weakness, preserved on purpose: the positional fallbacks can pick an
// unrelated large number (a phone-number fragment shaped like a decimal) with
// no sanity bound beyond the per-tier floors.
func TotalAmount(text string) *decimal.Decimal {
	// tier 1: first positive billed-total match
	if d := firstAmountAbove(text, billedTotalPatterns, decimal.Zero); d != nil {
		return d
	}
	// tier 2: contextual matches count only when substantial
	if d := firstAmountAbove(text, contextualPatterns, oneHundred); d != nil {
		return d
	}
	// tier 3: first positive general-keyword match
	if d := firstAmountAbove(text, generalTotalPatterns, decimal.Zero); d != nil {
		return d
	}
	// tier 4: largest amount >= 100 in the last third of the document
	lines := strings.Split(text, "\n")
	lastThird := strings.Join(lines[len(lines)*2/3:], "\n")
	if d := maxAmount(collectAmounts(lastThird, func(d decimal.Decimal) bool {
		return d.GreaterThanOrEqual(oneHundred)
	})); d != nil {
		return d
	}
	// tier 5: largest positive amount anywhere
	return maxAmount(collectAmounts(text, func(d decimal.Decimal) bool {
		return d.GreaterThan(decimal.Zero)
	}))
}

var taxPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)tax[:\s]*\$?(\d+\.?\d*)`),
	regexp.MustCompile(`(?i)gst[:\s]*\$?(\d+\.?\d*)`),
	regexp.MustCompile(`(?i)vat[:\s]*\$?(\d+\.?\d*)`),
}

var subtotalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)subtotal[:\s]*\$?(\d+\.?\d*)`),
	regexp.MustCompile(`(?i)sub total[:\s]*\$?(\d+\.?\d*)`),
	regexp.MustCompile(`(?i)sub-total[:\s]*\$?(\d+\.?\d*)`),
}

func firstKeywordAmount(text string, patterns []*regexp.Regexp) *decimal.Decimal {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if d, ok := parseAmount(m[1]); ok {
				return &d
			}
		}
	}
	return nil
}

// TaxAmount is a single-tier keyword-adjacent match; no positional fallback.
func TaxAmount(text string) *decimal.Decimal {
	return firstKeywordAmount(text, taxPatterns)
}

// Subtotal is a single-tier keyword-adjacent match; no positional fallback.
func Subtotal(text string) *decimal.Decimal {
	return firstKeywordAmount(text, subtotalPatterns)
}

// Date-shaped substrings, tried in order.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),            // MM/DD/YYYY, DD/MM/YYYY
	regexp.MustCompile(`(\d{2,4}[/-]\d{1,2}[/-]\d{1,2})`),            // YYYY/MM/DD
	regexp.MustCompile(`(?i)([A-Za-z]+ \d{1,2}, \d{4})`),             // Month DD, YYYY
	regexp.MustCompile(`(?i)(\d{1,2} [A-Za-z]+ \d{4})`),              // DD Month YYYY
	regexp.MustCompile(`(?i)(\d{1,2}-[A-Za-z]{3}-\d{4})`),            // DD-MMM-YYYY
	regexp.MustCompile(`(?i)([A-Za-z]{3} \d{1,2}, \d{4})`),           // MMM DD, YYYY
	regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`),                        // ISO
	regexp.MustCompile(`(\d{2}\.\d{2}\.\d{4})`),                      // DD.MM.YYYY
	regexp.MustCompile(`(?i)date[:\s]*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`), // "Date: MM/DD/YYYY"
	regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{2})`),              // MM/DD/YY
}

// Calendar layouts tried against each matched substring, in order. The first
// successful parse wins; there is no validation beyond the parse itself.
var dateLayouts = []string{
	"01/02/2006", "02/01/2006", "2006/01/02",
	"01/02/06", "02/01/06", "06/01/02",
	"January 2, 2006", "2 January 2006", "Jan 2, 2006",
	"2-Jan-2006", "2006-01-02", "02.01.2006",
}

// PurchaseDate returns the first date-shaped substring that parses under any
// known layout, as a UTC midnight timestamp.
func PurchaseDate(text string) *time.Time {
	for _, re := range datePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			for _, layout := range dateLayouts {
				if t, err := time.ParseInLocation(layout, m[1], time.UTC); err == nil {
					return &t
				}
			}
		}
	}
	return nil
}

var paymentVocabulary = []string{"cash", "credit", "debit", "visa", "mastercard", "amex", "paypal"}

// PaymentMethod is a case-insensitive substring search over a fixed
// vocabulary; the first term found is returned capitalized.
func PaymentMethod(text string) *string {
	lower := strings.ToLower(text)
	for _, method := range paymentVocabulary {
		if strings.Contains(lower, method) {
			capitalized := strings.ToUpper(method[:1]) + method[1:]
			return &capitalized
		}
	}
	return nil
}

package extract

// IsAcceptable is the single acceptance policy shared by every extraction
// method in the cascade: a candidate is good enough iff it names the merchant
// and carries at least one of total amount or purchase date. Heuristic and
// oracle output are judged by the same bar.
func IsAcceptable(c FieldCandidate) bool {
	if c.MerchantName == nil {
		return false
	}
	return c.TotalAmount != nil || c.PurchasedAt != nil
}

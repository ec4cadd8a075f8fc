package extract

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIsAcceptable(t *testing.T) {
	merchant := "WALMART"
	total := decimal.NewFromFloat(52.25)
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	payment := "Visa"

	cases := []struct {
		name string
		c    FieldCandidate
		want bool
	}{
		{"empty candidate", FieldCandidate{}, false},
		{"merchant only", FieldCandidate{MerchantName: &merchant}, false},
		{"total only", FieldCandidate{TotalAmount: &total}, false},
		{"date only", FieldCandidate{PurchasedAt: &date}, false},
		{"total and date without merchant", FieldCandidate{TotalAmount: &total, PurchasedAt: &date}, false},
		{"merchant and total", FieldCandidate{MerchantName: &merchant, TotalAmount: &total}, true},
		{"merchant and date", FieldCandidate{MerchantName: &merchant, PurchasedAt: &date}, true},
		{"merchant, total and date", FieldCandidate{MerchantName: &merchant, TotalAmount: &total, PurchasedAt: &date}, true},
		{"merchant with only secondary fields", FieldCandidate{MerchantName: &merchant, PaymentMethod: &payment}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsAcceptable(tc.c))
		})
	}
}

func TestFieldCandidateIsEmpty(t *testing.T) {
	assert.True(t, FieldCandidate{}.IsEmpty())

	payment := "Cash"
	assert.False(t, FieldCandidate{PaymentMethod: &payment}.IsEmpty())
}

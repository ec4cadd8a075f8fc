package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripVendorWrapping(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"a":1}`, `{"a":1}`},
		{"fenced json block", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced without language", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n{\"a\":1}\n  ", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripVendorWrapping(tc.in))
		})
	}
}

func TestDecodeCandidate(t *testing.T) {
	t.Run("full reply", func(t *testing.T) {
		raw := []byte(`{
			"merchant_name": "WALMART",
			"total_amount": 52.25,
			"tax_amount": "4.25",
			"subtotal": 48.00,
			"purchased_at": "2024-03-15",
			"payment_method": "Visa"
		}`)
		c, err := DecodeCandidate(raw)
		require.NoError(t, err)
		require.NotNil(t, c.MerchantName)
		assert.Equal(t, "WALMART", *c.MerchantName)
		require.NotNil(t, c.TotalAmount)
		assert.Equal(t, "52.25", c.TotalAmount.String())
		require.NotNil(t, c.TaxAmount)
		assert.Equal(t, "4.25", c.TaxAmount.String())
		require.NotNil(t, c.Subtotal)
		assert.Equal(t, "48", c.Subtotal.String())
		require.NotNil(t, c.PurchasedAt)
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *c.PurchasedAt)
		require.NotNil(t, c.PaymentMethod)
		assert.Equal(t, "Visa", *c.PaymentMethod)
	})

	t.Run("fenced reply decodes like bare json", func(t *testing.T) {
		raw := []byte("```json\n{\"merchant_name\": \"TARGET\"}\n```")
		c, err := DecodeCandidate(raw)
		require.NoError(t, err)
		require.NotNil(t, c.MerchantName)
		assert.Equal(t, "TARGET", *c.MerchantName)
	})

	t.Run("nulls and unknown keys are dropped", func(t *testing.T) {
		raw := []byte(`{"merchant_name": null, "total_amount": null, "items": ["coffee"], "confidence": 0.9}`)
		c, err := DecodeCandidate(raw)
		require.NoError(t, err)
		assert.True(t, c.IsEmpty())
	})

	t.Run("negative amounts are discarded", func(t *testing.T) {
		raw := []byte(`{"total_amount": -5.00, "tax_amount": "-1.00"}`)
		c, err := DecodeCandidate(raw)
		require.NoError(t, err)
		assert.Nil(t, c.TotalAmount)
		assert.Nil(t, c.TaxAmount)
	})

	t.Run("unparsable date is treated as absent", func(t *testing.T) {
		raw := []byte(`{"merchant_name": "X Y", "purchased_at": "mid-March 2024"}`)
		c, err := DecodeCandidate(raw)
		require.NoError(t, err)
		assert.Nil(t, c.PurchasedAt)
	})

	t.Run("rfc3339 timestamp is accepted", func(t *testing.T) {
		raw := []byte(`{"purchased_at": "2024-03-15T00:00:00Z"}`)
		c, err := DecodeCandidate(raw)
		require.NoError(t, err)
		require.NotNil(t, c.PurchasedAt)
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *c.PurchasedAt)
	})

	t.Run("empty reply is an error", func(t *testing.T) {
		_, err := DecodeCandidate([]byte("   "))
		assert.Error(t, err)
	})

	t.Run("non-json reply is an error", func(t *testing.T) {
		_, err := DecodeCandidate([]byte("Sorry, I cannot read this receipt."))
		assert.Error(t, err)
	})

	t.Run("wrong field shape is an error", func(t *testing.T) {
		_, err := DecodeCandidate([]byte(`{"merchant_name": 42}`))
		assert.Error(t, err)
	})

	t.Run("amount with currency symbol fails the schema", func(t *testing.T) {
		_, err := DecodeCandidate([]byte(`{"total_amount": "$52.25"}`))
		assert.Error(t, err)
	})
}

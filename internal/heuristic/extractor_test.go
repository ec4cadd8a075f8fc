package heuristic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipts-extractor/internal/extract"
)

func TestExtractor_Extract(t *testing.T) {
	e := NewExtractor(nil)

	t.Run("assembles all fields from a clean receipt", func(t *testing.T) {
		doc := extract.DocumentText{
			Origin: extract.OriginNative,
			Content: "APPLEBEE'S\n" +
				"123 Main St\n" +
				"Date: 03/15/2024\n" +
				"Tax: 4.25\n" +
				"Total: 52.25\n" +
				"Paid with VISA\n",
		}
		c := e.Extract(doc)

		require.NotNil(t, c.MerchantName)
		assert.Equal(t, "APPLEBEE'S", *c.MerchantName)
		require.NotNil(t, c.TotalAmount)
		assert.Equal(t, "52.25", c.TotalAmount.String())
		require.NotNil(t, c.TaxAmount)
		assert.Equal(t, "4.25", c.TaxAmount.String())
		require.NotNil(t, c.PurchasedAt)
		assert.Equal(t, "2024-03-15", c.PurchasedAt.Format("2006-01-02"))
		require.NotNil(t, c.PaymentMethod)
		assert.Equal(t, "Visa", *c.PaymentMethod)

		assert.True(t, extract.IsAcceptable(c))
	})

	t.Run("subtotal label shadows the total keyword", func(t *testing.T) {
		// "Subtotal" contains "total", and keyword matches are first-wins.
		doc := extract.DocumentText{Content: "Subtotal: 48.00\nTotal: 52.25\n"}
		c := e.Extract(doc)
		require.NotNil(t, c.TotalAmount)
		assert.Equal(t, "48", c.TotalAmount.String())
		require.NotNil(t, c.Subtotal)
		assert.Equal(t, "48", c.Subtotal.String())
	})

	t.Run("never fails on useless input", func(t *testing.T) {
		for _, content := range []string{"", "   \n\n  ", "garbage with no structure"} {
			c := e.Extract(extract.DocumentText{Content: content, Origin: extract.OriginOCR})
			assert.False(t, extract.IsAcceptable(c))
		}
	})

	t.Run("empty input yields all-absent candidate", func(t *testing.T) {
		c := e.Extract(extract.DocumentText{})
		assert.True(t, c.IsEmpty())
	})

	t.Run("fields are extracted independently", func(t *testing.T) {
		// No merchant in the header, but amounts still come through.
		doc := extract.DocumentText{Content: "12\n34\nTotal: 19.99\n"}
		c := e.Extract(doc)
		assert.Nil(t, c.MerchantName)
		require.NotNil(t, c.TotalAmount)
		assert.Equal(t, "19.99", c.TotalAmount.String())
		assert.False(t, extract.IsAcceptable(c))
	})
}

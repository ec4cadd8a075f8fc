package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/receipts-extractor/constants"
	"github.com/joseph-ayodele/receipts-extractor/internal/entity"
	"github.com/joseph-ayodele/receipts-extractor/internal/extract"
	"github.com/joseph-ayodele/receipts-extractor/internal/repository"
)

func TestExportExtractionsXLSX(t *testing.T) {
	ctx := context.Background()

	db, err := repository.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repository.EnsureSchema(ctx, db))

	files := repository.NewFileRepository(db, nil)
	extractions := repository.NewExtractionRepository(db, nil)

	f := &entity.ReceiptFile{
		SourcePath:  "/receipts/dinner.pdf",
		Filename:    "dinner.pdf",
		FileExt:     "pdf",
		FileSize:    1024,
		ContentHash: "hash-export",
		Status:      constants.FileStatusExtracted,
	}
	require.NoError(t, files.Create(ctx, f))

	merchant := "APPLEBEE'S"
	total := decimal.RequireFromString("52.25")
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	payment := "Visa"
	_, err = extractions.Save(ctx, f.ID, extract.ExtractionResult{
		Fields: extract.FieldCandidate{
			MerchantName:  &merchant,
			TotalAmount:   &total,
			PurchasedAt:   &date,
			PaymentMethod: &payment,
		},
		Method: constants.Heuristic(),
		Source: extract.DocumentText{Content: "APPLEBEE'S\nTotal: 52.25\n", Origin: extract.OriginNative},
	})
	require.NoError(t, err)

	// A failed extraction must show up too.
	g := &entity.ReceiptFile{
		SourcePath:  "/receipts/blurry.jpg",
		Filename:    "blurry.jpg",
		FileExt:     "jpg",
		FileSize:    2048,
		ContentHash: "hash-export-2",
		Status:      constants.FileStatusReview,
	}
	require.NoError(t, files.Create(ctx, g))
	_, err = extractions.Save(ctx, g.ID, extract.ExtractionResult{
		Method: constants.Failed(),
		Source: extract.DocumentText{Content: "???", Origin: extract.OriginOCR},
	})
	require.NoError(t, err)

	svc := NewService(extractions, files, nil)
	b, err := svc.ExportExtractionsXLSX(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, b)

	wb, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { _ = wb.Close() })

	rows, err := wb.GetRows("Extractions")
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per extraction")

	assert.Equal(t, "Purchase Date", rows[0][0])
	assert.Equal(t, "Extraction Method", rows[0][6])

	// Rows saved within the same second have no stable order; find by method.
	byMethod := map[string][]string{}
	for _, r := range rows[1:] {
		byMethod[r[6]] = r
	}

	ok := byMethod["Heuristic"]
	require.NotNil(t, ok)
	assert.Equal(t, "2024-03-15", ok[0])
	assert.Equal(t, "APPLEBEE'S", ok[1])
	assert.Equal(t, "52.25", ok[2])
	assert.Equal(t, "Visa", ok[5])
	assert.Equal(t, "native", ok[7])
	assert.Equal(t, "/receipts/dinner.pdf", ok[8])

	failed := byMethod["Failed"]
	require.NotNil(t, failed)
	assert.Equal(t, "ocr", failed[7])
}

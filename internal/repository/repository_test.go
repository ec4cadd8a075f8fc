package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipts-extractor/constants"
	"github.com/joseph-ayodele/receipts-extractor/internal/common"
	"github.com/joseph-ayodele/receipts-extractor/internal/entity"
	"github.com/joseph-ayodele/receipts-extractor/internal/extract"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, EnsureSchema(context.Background(), db))
	return db
}

func testFile(hash string) *entity.ReceiptFile {
	return &entity.ReceiptFile{
		SourcePath:  "/receipts/2024/dinner.pdf",
		Filename:    "dinner.pdf",
		FileExt:     "pdf",
		FileSize:    2048,
		ContentHash: hash,
		Status:      constants.FileStatusUploaded,
	}
}

func TestFileRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	files := NewFileRepository(db, nil)

	t.Run("create and get by id", func(t *testing.T) {
		f := testFile("hash-a")
		require.NoError(t, files.Create(ctx, f))
		require.NotEqual(t, uuid.Nil, f.ID)

		got, err := files.GetByID(ctx, f.ID)
		require.NoError(t, err)
		assert.Equal(t, f.SourcePath, got.SourcePath)
		assert.Equal(t, f.ContentHash, got.ContentHash)
		assert.Equal(t, constants.FileStatusUploaded, got.Status)
		assert.False(t, got.UploadedAt.IsZero())
	})

	t.Run("get by id not found", func(t *testing.T) {
		_, err := files.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("upsert deduplicates by content hash", func(t *testing.T) {
		first := testFile("hash-b")
		stored, dedup, err := files.UpsertByHash(ctx, first)
		require.NoError(t, err)
		assert.False(t, dedup)

		second := testFile("hash-b")
		second.SourcePath = "/receipts/copy/dinner.pdf"
		again, dedup, err := files.UpsertByHash(ctx, second)
		require.NoError(t, err)
		assert.True(t, dedup)
		assert.Equal(t, stored.ID, again.ID)
		assert.Equal(t, first.SourcePath, again.SourcePath, "original row wins")
	})

	t.Run("set status", func(t *testing.T) {
		f := testFile("hash-c")
		require.NoError(t, files.Create(ctx, f))
		require.NoError(t, files.SetStatus(ctx, f.ID, constants.FileStatusReview))

		got, err := files.GetByID(ctx, f.ID)
		require.NoError(t, err)
		assert.Equal(t, constants.FileStatusReview, got.Status)
	})
}

func TestExtractionRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	files := NewFileRepository(db, nil)
	extractions := NewExtractionRepository(db, nil)

	f := testFile("hash-x")
	require.NoError(t, files.Create(ctx, f))

	merchant := "HILTON"
	total := decimal.RequireFromString("2174.62")
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	full := extract.ExtractionResult{
		Fields: extract.FieldCandidate{
			MerchantName: &merchant,
			TotalAmount:  &total,
			PurchasedAt:  &date,
		},
		Method: constants.OracleText("openai"),
		Source: extract.DocumentText{Content: "HILTON\nTOTAL BILLED TO SUITE: 2174.62\n", Origin: extract.OriginNative},
	}

	t.Run("save and load round trip", func(t *testing.T) {
		id, err := extractions.Save(ctx, f.ID, full)
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, id)

		got, err := extractions.GetLatestByFileID(ctx, f.ID)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, constants.OracleText("openai"), got.Method)
		require.NotNil(t, got.Fields.MerchantName)
		assert.Equal(t, "HILTON", *got.Fields.MerchantName)
		require.NotNil(t, got.Fields.TotalAmount)
		assert.True(t, total.Equal(*got.Fields.TotalAmount))
		require.NotNil(t, got.Fields.PurchasedAt)
		assert.Equal(t, date, *got.Fields.PurchasedAt)
		assert.Nil(t, got.Fields.TaxAmount)
		assert.Equal(t, extract.OriginNative, got.Origin)
		assert.Equal(t, full.Source.Content, got.RawText)
	})

	t.Run("failed results are stored like any other", func(t *testing.T) {
		g := testFile("hash-y")
		require.NoError(t, files.Create(ctx, g))

		res := extract.ExtractionResult{
			Fields: extract.FieldCandidate{},
			Method: constants.Failed(),
			Source: extract.DocumentText{Content: "unreadable scan", Origin: extract.OriginOCR},
		}
		_, err := extractions.Save(ctx, g.ID, res)
		require.NoError(t, err)

		got, err := extractions.GetLatestByFileID(ctx, g.ID)
		require.NoError(t, err)
		assert.True(t, got.Method.IsFailed())
		assert.True(t, got.Fields.IsEmpty())
		assert.Equal(t, "unreadable scan", got.RawText)
	})

	t.Run("latest wins when a file has several extractions", func(t *testing.T) {
		h := testFile("hash-z")
		require.NoError(t, files.Create(ctx, h))

		old := full
		old.Method = constants.Heuristic()
		old.Fields = extract.FieldCandidate{}
		_, err := extractions.Save(ctx, h.ID, old)
		require.NoError(t, err)

		time.Sleep(1100 * time.Millisecond) // created_at has second resolution

		_, err = extractions.Save(ctx, h.ID, full)
		require.NoError(t, err)

		got, err := extractions.GetLatestByFileID(ctx, h.ID)
		require.NoError(t, err)
		assert.Equal(t, constants.OracleText("openai"), got.Method)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := extractions.GetLatestByFileID(ctx, uuid.New())
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("list returns every stored extraction", func(t *testing.T) {
		all, err := extractions.List(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(all), 4)
	})
}

func TestRebind(t *testing.T) {
	sqlite := &DB{}
	assert.Equal(t, "SELECT * FROM t WHERE a = ? AND b = ?", sqlite.Rebind("SELECT * FROM t WHERE a = ? AND b = ?"))

	pg := &DB{postgres: true}
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", pg.Rebind("SELECT * FROM t WHERE a = ? AND b = ?"))
}

package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipts-extractor/constants"
	"github.com/joseph-ayodele/receipts-extractor/internal/common"
	"github.com/joseph-ayodele/receipts-extractor/internal/entity"
	"github.com/joseph-ayodele/receipts-extractor/internal/extract"
	"github.com/joseph-ayodele/receipts-extractor/internal/heuristic"
	"github.com/joseph-ayodele/receipts-extractor/internal/llm"
	"github.com/joseph-ayodele/receipts-extractor/internal/repository"
)

// fakeSource serves canned text instead of shelling out to OCR binaries.
type fakeSource struct {
	res extract.AcquireResult
	err error
}

func (f *fakeSource) Acquire(ctx context.Context, path string) (extract.AcquireResult, error) {
	return f.res, f.err
}

type processorEnv struct {
	files       repository.FileRepository
	extractions repository.ExtractionRepository
	source      *fakeSource
}

func newProcessorEnv(t *testing.T) (*Processor, *processorEnv) {
	t.Helper()
	db, err := repository.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repository.EnsureSchema(context.Background(), db))

	env := &processorEnv{
		files:       repository.NewFileRepository(db, nil),
		extractions: repository.NewExtractionRepository(db, nil),
		source:      &fakeSource{},
	}
	cascade := NewCascade(heuristic.NewExtractor(nil), llm.NewAdapter(time.Second, nil), nil)
	p := NewProcessor(env.files, env.extractions, env.source, cascade, llm.NewRegistry(), nil)
	return p, env
}

func seedUploadedFile(t *testing.T, files repository.FileRepository, hash string) uuid.UUID {
	t.Helper()
	f := &entity.ReceiptFile{
		SourcePath:  "/receipts/" + hash + ".txt",
		Filename:    hash + ".txt",
		FileExt:     "txt",
		FileSize:    64,
		ContentHash: hash,
		Status:      constants.FileStatusUploaded,
	}
	require.NoError(t, files.Create(context.Background(), f))
	return f.ID
}

func TestProcessor_ProcessFile(t *testing.T) {
	ctx := context.Background()

	t.Run("accepted extraction marks file extracted", func(t *testing.T) {
		p, env := newProcessorEnv(t)
		id := seedUploadedFile(t, env.files, "good")
		env.source.res = extract.AcquireResult{
			Doc: extract.DocumentText{
				Content: "APPLEBEE'S\n123 Main St\nTotal: 52.25\n",
				Origin:  extract.OriginNative,
			},
			Method: "plain-text",
			Pages:  1,
		}

		out, err := p.ProcessFile(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, constants.Heuristic(), out.Result.Method)
		assert.Equal(t, constants.FileStatusExtracted, out.Status)

		f, err := env.files.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, constants.FileStatusExtracted, f.Status)

		stored, err := env.extractions.GetLatestByFileID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, out.ExtractionID, stored.ID)
		require.NotNil(t, stored.Fields.MerchantName)
		assert.Equal(t, "APPLEBEE'S", *stored.Fields.MerchantName)
	})

	t.Run("exhausted cascade marks file for review", func(t *testing.T) {
		p, env := newProcessorEnv(t)
		id := seedUploadedFile(t, env.files, "bad")
		env.source.res = extract.AcquireResult{
			Doc:    extract.DocumentText{Content: "1\n2\n3\n", Origin: extract.OriginOCR},
			Method: "image-ocr",
			Pages:  1,
		}

		out, err := p.ProcessFile(ctx, id)
		require.NoError(t, err)
		assert.True(t, out.Result.Method.IsFailed())
		assert.Equal(t, constants.FileStatusReview, out.Status)

		stored, err := env.extractions.GetLatestByFileID(ctx, id)
		require.NoError(t, err)
		assert.True(t, stored.Method.IsFailed(), "failed outcome is persisted, not raised")
	})

	t.Run("acquisition failure invalidates the file", func(t *testing.T) {
		p, env := newProcessorEnv(t)
		id := seedUploadedFile(t, env.files, "unreadable")
		env.source.err = errors.New("pdftoppm: exit status 1")

		_, err := p.ProcessFile(ctx, id)
		require.Error(t, err)

		f, err := env.files.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, constants.FileStatusInvalid, f.Status)
	})

	t.Run("invalid file is refused up front", func(t *testing.T) {
		p, env := newProcessorEnv(t)
		id := seedUploadedFile(t, env.files, "rejected")
		require.NoError(t, env.files.SetStatus(ctx, id, constants.FileStatusInvalid))

		_, err := p.ProcessFile(ctx, id)
		assert.ErrorIs(t, err, common.ErrInvalidFile)
	})

	t.Run("unknown file id", func(t *testing.T) {
		p, _ := newProcessorEnv(t)
		_, err := p.ProcessFile(ctx, uuid.New())
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

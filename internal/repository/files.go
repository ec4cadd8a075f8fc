package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipts-extractor/constants"
	"github.com/joseph-ayodele/receipts-extractor/internal/common"
	"github.com/joseph-ayodele/receipts-extractor/internal/entity"
)

type FileRepository interface {
	Create(ctx context.Context, f *entity.ReceiptFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ReceiptFile, error)
	GetByHash(ctx context.Context, hash string) (*entity.ReceiptFile, error)
	// UpsertByHash returns the existing row (deduplicated=true) when a file
	// with the same content hash was ingested before.
	UpsertByHash(ctx context.Context, f *entity.ReceiptFile) (*entity.ReceiptFile, bool, error)
	SetStatus(ctx context.Context, id uuid.UUID, status constants.FileStatus) error
}

type fileRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewFileRepository(db *DB, logger *slog.Logger) FileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &fileRepo{db: db, logger: logger}
}

func (r *fileRepo) Create(ctx context.Context, f *entity.ReceiptFile) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now().UTC()
	}
	q := r.db.Rebind(`INSERT INTO receipt_files
		(id, source_path, filename, file_ext, file_size, content_hash, status, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, q,
		f.ID.String(), f.SourcePath, f.Filename, f.FileExt, f.FileSize,
		f.ContentHash, string(f.Status), f.UploadedAt.Format(time.RFC3339))
	if err != nil {
		r.logger.Error("failed to create receipt file", "source_path", f.SourcePath, "error", err)
		return common.WrapError(err, "create receipt file")
	}
	return nil
}

const fileColumns = `id, source_path, filename, file_ext, file_size, content_hash, status, uploaded_at`

func (r *fileRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.ReceiptFile, error) {
	q := r.db.Rebind(`SELECT ` + fileColumns + ` FROM receipt_files WHERE id = ?`)
	return r.scanFile(r.db.QueryRowContext(ctx, q, id.String()))
}

func (r *fileRepo) GetByHash(ctx context.Context, hash string) (*entity.ReceiptFile, error) {
	q := r.db.Rebind(`SELECT ` + fileColumns + ` FROM receipt_files WHERE content_hash = ?`)
	return r.scanFile(r.db.QueryRowContext(ctx, q, hash))
}

func (r *fileRepo) UpsertByHash(ctx context.Context, f *entity.ReceiptFile) (*entity.ReceiptFile, bool, error) {
	existing, err := r.GetByHash(ctx, f.ContentHash)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, false, err
	}
	if err := r.Create(ctx, f); err != nil {
		return nil, false, err
	}
	return f, false, nil
}

func (r *fileRepo) SetStatus(ctx context.Context, id uuid.UUID, status constants.FileStatus) error {
	q := r.db.Rebind(`UPDATE receipt_files SET status = ? WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, q, string(status), id.String())
	if err != nil {
		r.logger.Error("failed to set file status", "file_id", id, "status", status, "error", err)
		return common.WrapError(err, "set file status")
	}
	return nil
}

func (r *fileRepo) scanFile(row *sql.Row) (*entity.ReceiptFile, error) {
	var (
		f          entity.ReceiptFile
		id, status string
		uploadedAt string
	)
	err := row.Scan(&id, &f.SourcePath, &f.Filename, &f.FileExt, &f.FileSize,
		&f.ContentHash, &status, &uploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "scan receipt file")
	}
	if f.ID, err = uuid.Parse(id); err != nil {
		return nil, common.WrapError(err, "parse file id")
	}
	f.Status = constants.FileStatus(status)
	if f.UploadedAt, err = time.Parse(time.RFC3339, uploadedAt); err != nil {
		return nil, common.WrapError(err, "parse uploaded_at")
	}
	return &f, nil
}

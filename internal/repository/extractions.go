package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/receipts-extractor/constants"
	"github.com/joseph-ayodele/receipts-extractor/internal/common"
	"github.com/joseph-ayodele/receipts-extractor/internal/entity"
	"github.com/joseph-ayodele/receipts-extractor/internal/extract"
)

type ExtractionRepository interface {
	// Save persists one cascade outcome for a file, including the source
	// text. Failed-tagged results are saved too; they are data, not errors.
	Save(ctx context.Context, fileID uuid.UUID, res extract.ExtractionResult) (uuid.UUID, error)
	GetLatestByFileID(ctx context.Context, fileID uuid.UUID) (*entity.Extraction, error)
	List(ctx context.Context) ([]*entity.Extraction, error)
}

type extractionRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewExtractionRepository(db *DB, logger *slog.Logger) ExtractionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &extractionRepo{db: db, logger: logger}
}

func (r *extractionRepo) Save(ctx context.Context, fileID uuid.UUID, res extract.ExtractionResult) (uuid.UUID, error) {
	id := uuid.New()
	now := time.Now().UTC()

	q := r.db.Rebind(`INSERT INTO extractions
		(id, file_id, method, merchant_name, total_amount, tax_amount, subtotal,
		 purchased_at, payment_method, source_origin, source_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, q,
		id.String(), fileID.String(), res.Method.String(),
		nullString(res.Fields.MerchantName),
		nullDecimal(res.Fields.TotalAmount),
		nullDecimal(res.Fields.TaxAmount),
		nullDecimal(res.Fields.Subtotal),
		nullTime(res.Fields.PurchasedAt),
		nullString(res.Fields.PaymentMethod),
		string(res.Source.Origin), res.Source.Content,
		now.Format(time.RFC3339))
	if err != nil {
		r.logger.Error("failed to save extraction", "file_id", fileID, "method", res.Method.String(), "error", err)
		return uuid.Nil, common.WrapError(err, "save extraction")
	}
	return id, nil
}

const extractionColumns = `id, file_id, method, merchant_name, total_amount, tax_amount,
	subtotal, purchased_at, payment_method, source_origin, source_text, created_at`

func (r *extractionRepo) GetLatestByFileID(ctx context.Context, fileID uuid.UUID) (*entity.Extraction, error) {
	q := r.db.Rebind(`SELECT ` + extractionColumns + ` FROM extractions
		WHERE file_id = ? ORDER BY created_at DESC LIMIT 1`)
	rows, err := r.db.QueryContext(ctx, q, fileID.String())
	if err != nil {
		return nil, common.WrapError(err, "query extraction")
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, common.WrapError(err, "query extraction")
		}
		return nil, common.ErrNotFound
	}
	return scanExtraction(rows)
}

func (r *extractionRepo) List(ctx context.Context) ([]*entity.Extraction, error) {
	q := `SELECT ` + extractionColumns + ` FROM extractions ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, common.WrapError(err, "list extractions")
	}
	defer rows.Close()

	var out []*entity.Extraction
	for rows.Next() {
		e, err := scanExtraction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanExtraction(rows *sql.Rows) (*entity.Extraction, error) {
	var (
		e                             entity.Extraction
		id, fileID, method            string
		merchant, total, tax, sub     sql.NullString
		purchasedAt, payment          sql.NullString
		origin, sourceText, createdAt string
	)
	err := rows.Scan(&id, &fileID, &method, &merchant, &total, &tax, &sub,
		&purchasedAt, &payment, &origin, &sourceText, &createdAt)
	if err != nil {
		return nil, common.WrapError(err, "scan extraction")
	}

	if e.ID, err = uuid.Parse(id); err != nil {
		return nil, common.WrapError(err, "parse extraction id")
	}
	if e.FileID, err = uuid.Parse(fileID); err != nil {
		return nil, common.WrapError(err, "parse extraction file id")
	}
	if e.Method, err = constants.ParseExtractionMethod(method); err != nil {
		return nil, common.WrapError(err, "parse extraction method")
	}

	e.Fields.MerchantName = fromNullString(merchant)
	if e.Fields.TotalAmount, err = fromNullDecimal(total); err != nil {
		return nil, err
	}
	if e.Fields.TaxAmount, err = fromNullDecimal(tax); err != nil {
		return nil, err
	}
	if e.Fields.Subtotal, err = fromNullDecimal(sub); err != nil {
		return nil, err
	}
	if purchasedAt.Valid {
		t, err := time.Parse(time.RFC3339, purchasedAt.String)
		if err != nil {
			return nil, common.WrapError(err, "parse purchased_at")
		}
		e.Fields.PurchasedAt = &t
	}
	e.Fields.PaymentMethod = fromNullString(payment)

	e.Origin = extract.TextOrigin(origin)
	e.RawText = sourceText
	if e.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, common.WrapError(err, "parse created_at")
	}
	return &e, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func fromNullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func fromNullDecimal(s sql.NullString) (*decimal.Decimal, error) {
	if !s.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return nil, common.WrapError(err, "parse stored amount")
	}
	return &d, nil
}

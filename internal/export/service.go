package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/receipts-extractor/internal/repository"
)

// Service is a tiny façade over repositories that produces XLSX bytes for exports.
type Service struct {
	extractions repository.ExtractionRepository
	files       repository.FileRepository
	logger      *slog.Logger
}

func NewService(extractions repository.ExtractionRepository, files repository.FileRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{extractions: extractions, files: files, logger: logger}
}

// ExportExtractionsXLSX returns an XLSX workbook (as bytes) with one row per
// stored extraction. Failed-tagged rows are included; the Method column lets
// reviewers filter them out.
func (s *Service) ExportExtractionsXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	recs, err := s.extractions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("query extractions: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Extractions"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Purchase Date",
		"Merchant",
		"Total",
		"Tax",
		"Subtotal",
		"Payment Method",
		"Extraction Method",
		"Text Origin",
		"File Path",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, e := range recs {
		filePath := ""
		if fileRow, err := s.files.GetByID(ctx, e.FileID); err == nil && fileRow != nil {
			filePath = fileRow.SourcePath
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		if e.Fields.PurchasedAt != nil {
			write(1, e.Fields.PurchasedAt.Format("2006-01-02"))
		} else {
			write(1, "")
		}
		write(2, deref(e.Fields.MerchantName))
		write(3, amount(e.Fields.TotalAmount))
		write(4, amount(e.Fields.TaxAmount))
		write(5, amount(e.Fields.Subtotal))
		write(6, deref(e.Fields.PaymentMethod))
		write(7, e.Method.String())
		write(8, string(e.Origin))
		write(9, filePath)

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 14) // date
	_ = f.SetColWidth(sheet, "B", "B", 28) // merchant
	_ = f.SetColWidth(sheet, "C", "E", 12) // amounts
	_ = f.SetColWidth(sheet, "F", "F", 16) // payment
	_ = f.SetColWidth(sheet, "G", "G", 22) // method
	_ = f.SetColWidth(sheet, "I", "I", 60) // path

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func amount(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipts-extractor/constants"
)

// ReceiptFile represents an ingested document for data transfer between layers.
type ReceiptFile struct {
	ID          uuid.UUID            `json:"id"`
	SourcePath  string               `json:"source_path"`
	Filename    string               `json:"filename"`
	FileExt     string               `json:"file_ext"`
	FileSize    int64                `json:"file_size"`
	ContentHash string               `json:"content_hash"` // sha256 hex
	Status      constants.FileStatus `json:"status"`
	UploadedAt  time.Time            `json:"uploaded_at"`
}

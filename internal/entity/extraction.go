package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipts-extractor/constants"
	"github.com/joseph-ayodele/receipts-extractor/internal/extract"
)

// Extraction is one persisted cascade outcome for a file: the extracted
// fields, the method tag, and the source text retained for audit.
type Extraction struct {
	ID        uuid.UUID                  `json:"id"`
	FileID    uuid.UUID                  `json:"file_id"`
	Method    constants.ExtractionMethod `json:"method"`
	Fields    extract.FieldCandidate     `json:"fields"`
	Origin    extract.TextOrigin         `json:"origin"`
	RawText   string                     `json:"raw_text"`
	CreatedAt time.Time                  `json:"created_at"`
}

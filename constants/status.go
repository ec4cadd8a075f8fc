package constants

// FileStatus is the canonical processing status for rows in receipt_files.
type FileStatus string

// Stable values (store these exact strings in DB).
const (
	FileStatusUploaded  FileStatus = "UPLOADED"  // validated and recorded, not yet extracted
	FileStatusExtracted FileStatus = "EXTRACTED" // cascade produced an accepted result
	FileStatusReview    FileStatus = "REVIEW"    // cascade exhausted; needs manual review
	FileStatusInvalid   FileStatus = "INVALID"   // failed structural validation
)

package validation

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/receipts-extractor/constants"
)

// Structural validation is a pre-condition gate: extraction is only invoked
// on documents that pass it. PDFs get byte-level checks; images and plain
// text only need to exist and be non-empty.

var pdfHeader = []byte("%PDF-")

// Result of one validation check.
type Result struct {
	Valid  bool
	Reason string
}

func ok() Result { return Result{Valid: true, Reason: "valid"} }

func fail(format string, args ...any) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// ValidateFile dispatches on extension.
func ValidateFile(path string) Result {
	switch constants.MapExtToFormat(filepath.Ext(path)) {
	case constants.PDF:
		return ValidatePDF(path)
	case constants.IMAGE, constants.TXT:
		return validateNonEmpty(path)
	default:
		return fail("unsupported file type: %s", filepath.Ext(path))
	}
}

// ValidatePDF checks that the file exists, is non-empty, carries the PDF
// magic header, and contains at least one page object. A missing %%EOF
// trailer is tolerated (truncated-but-parsable files are common in scans).
func ValidatePDF(path string) Result {
	st, err := os.Stat(path)
	if err != nil {
		return fail("file does not exist: %s", path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fail("file is not a PDF")
	}
	if st.Size() == 0 {
		return fail("file is empty")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return fail("read error: %v", err)
	}
	if !bytes.HasPrefix(b, pdfHeader) {
		return fail("invalid PDF format: missing %%PDF header")
	}
	if !bytes.Contains(b, []byte("/Page")) {
		return fail("PDF has no pages")
	}
	return ok()
}

func validateNonEmpty(path string) Result {
	st, err := os.Stat(path)
	if err != nil {
		return fail("file does not exist: %s", path)
	}
	if st.Size() == 0 {
		return fail("file is empty")
	}
	return ok()
}

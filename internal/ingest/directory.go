package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipts-extractor/constants"
	"github.com/joseph-ayodele/receipts-extractor/internal/entity"
	"github.com/joseph-ayodele/receipts-extractor/internal/repository"
	"github.com/joseph-ayodele/receipts-extractor/internal/validation"
)

// Ingestor walks a directory, validates candidate files, and records them,
// deduplicating by content hash. It does not extract anything; that is the
// processor's job.
type Ingestor struct {
	files  repository.FileRepository
	logger *slog.Logger
}

func NewIngestor(files repository.FileRepository, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{files: files, logger: logger}
}

// FileResult is the per-file outcome of an ingestion run.
type FileResult struct {
	Path         string
	FileID       uuid.UUID
	Deduplicated bool
	Skipped      bool
	Reason       string
}

// DirStats aggregates one run over a directory.
type DirStats struct {
	Scanned      int
	Ingested     int
	Deduplicated int
	Skipped      int
	Invalid      int
}

// Discover returns the supported files under root, sorted, skipping hidden
// files and directories.
func Discover(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(name))
		if _, allowed := constants.AllowedExtensions[ext]; !allowed {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// IngestDirectory discovers, validates, and records every supported file
// under root. Invalid files are recorded with status INVALID so reruns do not
// re-validate them; unreadable files are skipped with a reason.
func (in *Ingestor) IngestDirectory(ctx context.Context, root string) ([]FileResult, DirStats, error) {
	paths, err := Discover(root)
	if err != nil {
		return nil, DirStats{}, err
	}

	var (
		results []FileResult
		stats   DirStats
	)
	for _, path := range paths {
		if ctx.Err() != nil {
			return results, stats, ctx.Err()
		}
		stats.Scanned++

		res := in.ingestOne(ctx, path)
		results = append(results, res)
		switch {
		case res.Skipped:
			stats.Skipped++
		case res.Deduplicated:
			stats.Deduplicated++
		case res.Reason != "":
			stats.Invalid++
		default:
			stats.Ingested++
		}
	}

	in.logger.Info("ingest.dir.done",
		"root", root,
		"scanned", stats.Scanned,
		"ingested", stats.Ingested,
		"deduplicated", stats.Deduplicated,
		"invalid", stats.Invalid,
		"skipped", stats.Skipped)
	return results, stats, nil
}

func (in *Ingestor) ingestOne(ctx context.Context, path string) FileResult {
	hash, size, err := hashFile(path)
	if err != nil {
		in.logger.Warn("ingest.file.unreadable", "path", path, "error", err)
		return FileResult{Path: path, Skipped: true, Reason: err.Error()}
	}

	status := constants.FileStatusUploaded
	reason := ""
	if v := validation.ValidateFile(path); !v.Valid {
		in.logger.Warn("ingest.file.invalid", "path", path, "reason", v.Reason)
		status = constants.FileStatusInvalid
		reason = v.Reason
	}

	f := &entity.ReceiptFile{
		SourcePath:  path,
		Filename:    filepath.Base(path),
		FileExt:     constants.NormalizeExt(filepath.Ext(path)),
		FileSize:    size,
		ContentHash: hash,
		Status:      status,
	}
	stored, dedup, err := in.files.UpsertByHash(ctx, f)
	if err != nil {
		return FileResult{Path: path, Skipped: true, Reason: err.Error()}
	}
	if dedup {
		in.logger.Debug("ingest.file.deduplicated", "path", path, "file_id", stored.ID)
	} else {
		in.logger.Info("ingest.file.recorded", "path", path, "file_id", stored.ID, "status", string(status))
	}
	return FileResult{Path: path, FileID: stored.ID, Deduplicated: dedup, Reason: reason}
}

func hashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

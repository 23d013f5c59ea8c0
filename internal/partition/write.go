package partition

import (
	"fmt"
	"path/filepath"

	"github.com/harrison/trialsift/internal/filelock"
	"github.com/harrison/trialsift/internal/logger"
	"github.com/harrison/trialsift/internal/models"
)

// SavedFile is one file written by WriteGroup.
type SavedFile struct {
	Path    string
	Source  string // RelPath of the originating file
	Records int
}

// WriteSummary reports what WriteGroup wrote.
type WriteSummary struct {
	Dir   string
	Files []SavedFile
	Total int
}

// Namer maps a chunk's source file to its path relative to the output directory.
type Namer func(models.SourceFile) string

// SameName keeps the source file's relative path.
func SameName(sf models.SourceFile) string { return sf.RelPath }

// WriteGroup writes each non-empty chunk to outDir/<chunk source RelPath> as a
// pretty-printed JSON array.
func WriteGroup(outDir string, chunks []models.FileChunk, log logger.Logger) (*WriteSummary, error) {
	return WriteChunks(outDir, chunks, SameName, log)
}

// WriteChunks writes each non-empty chunk to outDir/name(chunk.Source). The
// directory is created and locked only when there is something to write.
func WriteChunks(outDir string, chunks []models.FileChunk, name Namer, log logger.Logger) (*WriteSummary, error) {
	log = logger.OrNoOp(log)
	summary := &WriteSummary{Dir: outDir}
	if models.CountRecords(chunks) == 0 {
		return summary, nil
	}

	lock, err := filelock.LockDir(outDir)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	for _, chunk := range chunks {
		if len(chunk.Records) == 0 {
			continue
		}
		dest := filepath.Join(outDir, name(chunk.Source))
		if err := writeChunk(dest, chunk.Values()); err != nil {
			return nil, err
		}
		summary.Files = append(summary.Files, SavedFile{
			Path:    dest,
			Source:  chunk.Source.RelPath,
			Records: len(chunk.Records),
		})
		summary.Total += len(chunk.Records)
		logger.Infof(log, "Saved %d items to %s", len(chunk.Records), dest)
	}
	return summary, nil
}

func writeChunk(dest string, values []models.Value) error {
	data, err := models.IndentArray(values)
	if err != nil {
		return fmt.Errorf("encode %s: %w", dest, err)
	}
	if err := filelock.AtomicWrite(dest, data); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}
